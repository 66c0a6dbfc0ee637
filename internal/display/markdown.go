package display

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	rendererMu sync.Mutex
	renderer   *glamour.TermRenderer
)

// InitRenderer prepares the markdown renderer used for descriptions and
// chat answers.
func InitRenderer() error {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if renderer != nil {
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	renderer = r
	return nil
}

// RenderMarkdown renders md for the terminal, returning it unchanged when
// no renderer is available.
func RenderMarkdown(md string) string {
	rendererMu.Lock()
	r := renderer
	rendererMu.Unlock()
	if r == nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
