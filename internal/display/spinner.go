package display

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner is a progress indicator. It does nothing when the output is
// not a terminal.
type Spinner struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinner creates a spinner writing to stderr
func NewSpinner(message string) *Spinner {
	return newSpinner(os.Stderr, message)
}

func newSpinner(w io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{s: s, enabled: IsTerminal(w)}
}

// Start starts the spinner
func (sp *Spinner) Start() {
	if sp.enabled {
		sp.s.Start()
	}
}

// Stop stops the spinner and clears its line
func (sp *Spinner) Stop() {
	if sp.enabled {
		sp.s.Stop()
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
