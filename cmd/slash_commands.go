package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/quocvuong92/leafify/internal/constants"
	"github.com/quocvuong92/leafify/internal/identify"
	"github.com/quocvuong92/leafify/internal/tabs"
)

// handleCommand processes slash commands in interactive mode.
// Returns true if the session should exit, false otherwise.
func (app *App) handleCommand(input string) bool {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/exit", "/quit", "/q":
		fmt.Fprintln(app.out, "Goodbye!")
		return true

	case "/help", "/h":
		app.showHelp()

	case "/select", "/s":
		if arg == "" {
			fmt.Fprintln(app.out, "Usage: /select <path>")
			return false
		}
		app.selectImage(splitPaths(arg))

	case "/identify", "/id":
		if arg != "" {
			if err := app.selectImage(splitPaths(arg)); err != nil {
				return false
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultAPITimeout)
		defer cancel()
		_ = app.orch.Identify(ctx)

	case "/tab", "/t":
		app.handleTabCommand(arg)

	case "/history":
		app.orch.ShowHistory()

	case "/chat":
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultChatTimeout)
		defer cancel()
		_ = app.orch.Chat(ctx, arg)

	case "/status":
		app.showStatus()

	default:
		fmt.Fprintf(app.out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(app.out, "Type /help for available commands")
	}

	return false
}

// splitPaths turns a command argument into file paths. An argument naming
// an existing file is one path even when it contains spaces; anything else
// is split with shell quoting rules, so "My Leaf.png" and My\ Leaf.png work.
func splitPaths(arg string) []string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil
	}
	if _, err := os.Stat(arg); err == nil {
		return []string{arg}
	}
	words, err := shellwords.Parse(arg)
	if err != nil || len(words) == 0 {
		return []string{arg}
	}
	return words
}

// selectImage reads paths in the background and waits for the preview.
// The orchestrator reports read failures through the view.
func (app *App) selectImage(paths []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultReadTimeout)
	defer cancel()

	done := make(chan error, 1)
	app.orch.SelectAsync(ctx, paths, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		return err
	case <-time.After(constants.DefaultReadTimeout + time.Second):
		fmt.Fprintln(app.out, "Timed out reading the image.")
		return context.DeadlineExceeded
	}
}

func (app *App) handleTabCommand(name string) {
	session := app.orch.Session()
	if name == "" {
		if session.Tabs == nil {
			fmt.Fprintln(app.out, "No results yet. Use /identify first.")
			return
		}
		fmt.Fprintf(app.out, "Current tab: %s\n", session.Tabs.Active())
		fmt.Fprintf(app.out, "Available: %s\n", strings.Join(session.Tabs.Names(), ", "))
		return
	}

	err := app.orch.SelectTab(name)
	switch {
	case err == nil:
	case errors.Is(err, identify.ErrNoResults):
		fmt.Fprintln(app.out, "No results yet. Use /identify first.")
	case errors.Is(err, tabs.ErrUnknownTab):
		fmt.Fprintf(app.out, "Unknown tab: %s\n", name)
		fmt.Fprintf(app.out, "Available: %s\n", strings.Join(session.Tabs.Names(), ", "))
	default:
		fmt.Fprintf(app.out, "Error: %v\n", err)
	}
}

func (app *App) showStatus() {
	session := app.orch.Session()
	fmt.Fprintln(app.out)
	if session.Selected != nil {
		fmt.Fprintf(app.out, "  %-12s %s (%s)\n", "Image:", session.Selected.Name, session.Selected.MIMEType)
	} else {
		fmt.Fprintf(app.out, "  %-12s %s\n", "Image:", "none")
	}
	fmt.Fprintf(app.out, "  %-12s %s\n", "State:", session.State)
	if session.LastPlant != "" {
		fmt.Fprintf(app.out, "  %-12s %s\n", "Plant:", session.LastPlant)
	}
	if session.Tabs != nil {
		fmt.Fprintf(app.out, "  %-12s %s\n", "Tab:", session.Tabs.Active())
	}
	if session.LastError != "" {
		fmt.Fprintf(app.out, "  %-12s %s\n", "Last error:", session.LastError)
	}
	fmt.Fprintln(app.out)
}

// showHelp displays the help message with all available commands.
func (app *App) showHelp() {
	fmt.Fprintln(app.out, "\nCommands:")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/select, /s <path>", "Select an image file")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/identify, /id [path]", "Identify the selected image")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/tab, /t <name|number>", "Switch description tab")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/tab", "Show current tab")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/history", "Show recent identifications")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/chat <question>", "Ask about the identified plant")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/status", "Show selection and state")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/help, /h", "Show this help")
	fmt.Fprintf(app.out, "  %-24s %s\n", "/exit, /quit, /q", "Exit interactive mode")
	fmt.Fprintln(app.out)
}
