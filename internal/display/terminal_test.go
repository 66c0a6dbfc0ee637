package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/quocvuong92/leafify/internal/api"
	"github.com/quocvuong92/leafify/internal/history"
	"github.com/quocvuong92/leafify/internal/render"
	"github.com/quocvuong92/leafify/internal/upload"
)

func TestTerminal_ShowResults(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, false)

	model := render.Render(api.IdentificationResult{
		Suggestions: []api.Suggestion{
			{PlantName: "Aloe Vera", Probability: 0.92},
			{PlantName: "Agave", Probability: 0.05},
		},
		Description: api.Description{MedicinalUses: "Soothes burns"},
	})
	term.ShowResults(model, render.TabMedicinalUses)

	out := buf.String()
	for _, want := range []string{"Aloe Vera", "92.0%", "Agave", "5.0%", "[1 Medicinal Uses]", "2 How to Grow", "Soothes burns"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("non-terminal output should not contain ANSI escapes")
	}

	buf.Reset()
	warnings, _ := model.Tab(render.TabWarnings)
	term.ShowTab(warnings)
	if out := buf.String(); !strings.Contains(out, "[3 Warnings]") || !strings.Contains(out, "Not available.") {
		t.Errorf("ShowTab output = %q", out)
	}
}

func TestTerminal_Messages(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, false)

	term.ShowPreview(upload.Encode("leaf.png", []byte("\x89PNG\r\n\x1a\n")))
	term.ShowPlaceholder("Error: no plant detected")
	term.Notify("Please select an image first!")
	term.ShowAnswer("Aloe Vera", "Is it toxic?", "Mildly, to pets.")

	out := buf.String()
	for _, want := range []string{
		"Selected leaf.png (image/png, 8 B)",
		"Error: no plant detected",
		"Please select an image first!",
		"Aloe Vera: Is it toxic?",
		"Mildly, to pets.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryTable(t *testing.T) {
	if got := HistoryTable(nil); got != "No identifications yet." {
		t.Errorf("HistoryTable(nil) = %q", got)
	}

	got := HistoryTable([]history.Entry{
		{PlantName: "Aloe Vera", ImageBase64: "data:image/jpeg;base64,AAAA", Date: "2025-03-01T12:00:00.000Z"},
		{PlantName: "Agave", ImageBase64: "", Date: "garbage"},
	})
	for _, want := range []string{"Aloe Vera", "image/jpeg, 3 B", "Agave", "garbage", "Plant", "Identified"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		fill   float64
		filled int
	}{
		{0, 0},
		{50, 10},
		{92, 18},
		{100, 20},
		{150, 20},
		{-5, 0},
	}

	for _, tt := range tests {
		bar := Bar(tt.fill)
		if n := strings.Count(bar, "█"); n != tt.filled {
			t.Errorf("Bar(%v) filled = %d, want %d", tt.fill, n, tt.filled)
		}
		if n := len([]rune(bar)); n != BarWidth {
			t.Errorf("Bar(%v) width = %d, want %d", tt.fill, n, BarWidth)
		}
	}
}

func TestImageSummary(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data:image/png;base64,AAAA", "image/png, 3 B"},
		{"data:image/png;base64,AA==", "image/png, 1 B"},
		{"data:image/png;base64,AAA=", "image/png, 2 B"},
		{"", "-"},
		{"not a data url", "-"},
	}
	for _, tt := range tests {
		if got := imageSummary(tt.in); got != tt.want {
			t.Errorf("imageSummary(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderMarkdown_WithoutRenderer(t *testing.T) {
	rendererMu.Lock()
	saved := renderer
	renderer = nil
	rendererMu.Unlock()
	defer func() {
		rendererMu.Lock()
		renderer = saved
		rendererMu.Unlock()
	}()

	if got := RenderMarkdown("**bold**"); got != "**bold**" {
		t.Errorf("RenderMarkdown() = %q, want input unchanged", got)
	}
}
