package display

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// ShowError prints an error to stderr
func ShowError(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), msg)
}

// ShowWarning prints a warning to stderr
func ShowWarning(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.New(color.FgYellow).Sprint("Warning:"), msg)
}
