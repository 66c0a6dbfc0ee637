// Package render converts an identification result into the model the
// terminal view draws. Render is pure: the same result always produces the
// same DisplayModel.
package render

import (
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/quocvuong92/leafify/internal/api"
	"github.com/quocvuong92/leafify/internal/constants"
)

// MaxSuggestions is the number of suggestions shown
const MaxSuggestions = 3

// Tab names, in display order
const (
	TabMedicinalUses = "Medicinal Uses"
	TabHowToGrow     = "How to Grow"
	TabWarnings      = "Warnings"
	TabHomeRemedies  = "Home Remedies"
)

// SuggestionRow is one rendered suggestion
type SuggestionRow struct {
	PlantName      string
	Confidence     float64 // percent, one decimal
	ConfidenceText string  // Confidence formatted with exactly one decimal
	Fill           float64 // bar width in percent, clamped to [0, 100]
}

// Tab is one description slot
type Tab struct {
	Name     string
	Content  string
	Fallback bool // Content is the "Not available." placeholder
}

// DisplayModel is everything the results surface shows
type DisplayModel struct {
	Suggestions []SuggestionRow
	Tabs        []Tab
}

// TabNames returns the names of the tabs in order
func (m DisplayModel) TabNames() []string {
	names := make([]string, len(m.Tabs))
	for i, t := range m.Tabs {
		names[i] = t.Name
	}
	return names
}

// Tab returns the tab called name
func (m DisplayModel) Tab(name string) (Tab, bool) {
	for _, t := range m.Tabs {
		if t.Name == name {
			return t, true
		}
	}
	return Tab{}, false
}

var strict = bluemonday.StrictPolicy()

// Render builds the display model for result
func Render(result api.IdentificationResult) DisplayModel {
	n := len(result.Suggestions)
	if n > MaxSuggestions {
		n = MaxSuggestions
	}

	rows := make([]SuggestionRow, 0, n)
	for _, s := range result.Suggestions[:n] {
		pct := Confidence(s.Probability)
		rows = append(rows, SuggestionRow{
			PlantName:      StripMarkup(s.PlantName),
			Confidence:     pct,
			ConfidenceText: strconv.FormatFloat(pct, 'f', 1, 64),
			Fill:           math.Max(0, math.Min(100, pct)),
		})
	}

	d := result.Description
	tabs := []Tab{
		slot(TabMedicinalUses, d.MedicinalUses),
		slot(TabHowToGrow, d.HowToGrow),
		slot(TabWarnings, d.Warnings),
	}
	if remedies := StripMarkup(d.HomeRemedies); strings.TrimSpace(remedies) != "" {
		tabs = append(tabs, Tab{Name: TabHomeRemedies, Content: remedies})
	}

	return DisplayModel{Suggestions: rows, Tabs: tabs}
}

// Confidence converts a probability to a percentage rounded to one decimal
func Confidence(p float64) float64 {
	pct := math.Round(p*1000) / 10
	if pct == 0 {
		return 0 // drop the sign of -0
	}
	return pct
}

// StripMarkup removes HTML tags from server text, leaving plain text and
// markdown intact.
func StripMarkup(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

func slot(name, content string) Tab {
	content = StripMarkup(content)
	if strings.TrimSpace(content) == "" {
		return Tab{Name: name, Content: constants.DescriptionFallback, Fallback: true}
	}
	return Tab{Name: name, Content: content}
}
