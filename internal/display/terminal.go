// Package display renders the identification client in a terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/quocvuong92/leafify/internal/constants"
	"github.com/quocvuong92/leafify/internal/history"
	"github.com/quocvuong92/leafify/internal/identify"
	"github.com/quocvuong92/leafify/internal/render"
	"github.com/quocvuong92/leafify/internal/upload"
)

// BarWidth is the number of cells in a confidence bar
const BarWidth = 20

// Ensure Terminal implements the orchestrator's view
var _ identify.View = (*Terminal)(nil)

// Terminal is a line-oriented view. Results, placeholder and history are
// printed as blocks; the loading indicator is a spinner on stderr.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	markdown bool
	color    bool
	spinner  *Spinner
	tabNames []string

	bold  func(a ...interface{}) string
	faint func(a ...interface{}) string
	red   func(a ...interface{}) string
	green func(a ...interface{}) string
}

// NewTerminal creates a view writing to out. With markdown set,
// description tabs and chat answers go through the markdown renderer.
func NewTerminal(out io.Writer, markdown bool) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	t := &Terminal{
		out:      out,
		markdown: markdown,
		color:    IsTerminal(out),
		spinner:  NewSpinner("Identifying..."),
	}
	t.bold = t.style(color.Bold)
	t.faint = t.style(color.Faint)
	t.red = t.style(color.FgRed)
	t.green = t.style(color.FgGreen)
	return t
}

func (t *Terminal) style(attr color.Attribute) func(a ...interface{}) string {
	c := color.New(attr)
	if !t.color {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// ShowPreview prints the selected file
func (t *Terminal) ShowPreview(img *upload.SelectedImage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s (%s, %s)\n", t.green("Selected"), img.Name, img.MIMEType, humanSize(len(img.Raw)))
}

// ShowLoading starts the progress indicator
func (t *Terminal) ShowLoading() {
	t.spinner.Start()
}

// HideLoading stops the progress indicator
func (t *Terminal) HideLoading() {
	t.spinner.Stop()
}

// ShowResults prints the suggestions and the active description tab
func (t *Terminal) ShowResults(model render.DisplayModel, activeTab string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tabNames = model.TabNames()
	fmt.Fprintln(t.out, t.bold("Suggestions"))
	fmt.Fprintln(t.out, t.suggestionTable(model.Suggestions))

	if tab, ok := model.Tab(activeTab); ok {
		t.writeTab(tab)
	}
}

// ShowTab prints one description tab
func (t *Terminal) ShowTab(tab render.Tab) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeTab(tab)
}

// ShowPlaceholder prints the placeholder message
func (t *Terminal) ShowPlaceholder(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.red(message))
}

// ShowHistory prints the history panel
func (t *Terminal) ShowHistory(entries []history.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.bold("History"))
	fmt.Fprintln(t.out, HistoryTable(entries))
}

// ShowAnswer prints the answer to a follow-up question
func (t *Terminal) ShowAnswer(plantName, question, answer string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s\n", t.bold(plantName+":"), t.faint(question))
	fmt.Fprintln(t.out, t.renderText(answer))
}

// Notify prints a notice
func (t *Terminal) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s\n", t.red("!"), message)
}

func (t *Terminal) writeTab(tab render.Tab) {
	fmt.Fprintln(t.out, t.tabBar(tab.Name))
	if tab.Fallback {
		fmt.Fprintln(t.out, t.faint(tab.Content))
		return
	}
	fmt.Fprintln(t.out, t.renderText(tab.Content))
}

func (t *Terminal) renderText(s string) string {
	if t.markdown {
		return RenderMarkdown(s)
	}
	return s
}

// tabBar shows every tab with the active one bracketed
func (t *Terminal) tabBar(active string) string {
	names := t.tabNames
	if len(names) == 0 {
		names = []string{active}
	}
	parts := make([]string, len(names))
	for i, n := range names {
		label := strconv.Itoa(i+1) + " " + n
		if n == active {
			parts[i] = t.bold("[" + label + "]")
		} else {
			parts[i] = t.faint(" " + label + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (t *Terminal) suggestionTable(rows []render.SuggestionRow) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.PlantName, r.ConfidenceText + "%", Bar(r.Fill)})
	}
	return renderTable(
		[]string{"Plant", "Confidence", ""},
		data,
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	)
}

// HistoryTable renders history entries, or the empty-history text
func HistoryTable(entries []history.Entry) string {
	if len(entries) == 0 {
		return constants.EmptyHistoryText
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		when := e.Date
		if ts := e.Time(); !ts.IsZero() {
			when = ts.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), e.PlantName, when, imageSummary(e.ImageBase64)})
	}
	return renderTable(
		[]string{"#", "Plant", "Identified", "Image"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

// Bar draws fill (0-100) as a fixed-width bar
func Bar(fill float64) string {
	n := int(fill/100*BarWidth + 0.5)
	if n < 0 {
		n = 0
	}
	if n > BarWidth {
		n = BarWidth
	}
	return strings.Repeat("█", n) + strings.Repeat("░", BarWidth-n)
}

// imageSummary describes a data URL by MIME type and decoded size
func imageSummary(dataURL string) string {
	meta, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(meta, "data:") {
		return "-"
	}
	mime := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	size := len(payload) / 4 * 3
	if strings.HasSuffix(payload, "==") {
		size -= 2
	} else if strings.HasSuffix(payload, "=") {
		size--
	}
	return mime + ", " + humanSize(size)
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
