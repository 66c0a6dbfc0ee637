package cmd

import (
	"fmt"
	"strings"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"
)

// InteractiveSession holds the state of one REPL run. Identification
// state itself lives in the orchestrator's session.
type InteractiveSession struct {
	app      *App
	exitFlag bool
}

// completer provides auto-completion suggestions for slash commands.
// It provides context-aware suggestions based on what the user is typing.
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	// /tab <name> - suggest the tabs of the current result
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "/tab ") || strings.HasPrefix(lower, "/t ") {
		return prompt.FilterHasPrefix(s.tabSuggestions(), w, true), startIndex, endIndex
	}

	suggestions := []prompt.Suggest{
		{Text: "/select", Description: "Select an image file"},
		{Text: "/identify", Description: "Identify the selected image"},
		{Text: "/tab", Description: "Switch description tab"},
		{Text: "/history", Description: "Show recent identifications"},
		{Text: "/chat", Description: "Ask about the identified plant"},
		{Text: "/status", Description: "Show the current selection and state"},
		{Text: "/help", Description: "Show all available commands"},
		{Text: "/exit", Description: "Exit interactive mode"},

		// Aliases
		{Text: "/s", Description: "Select (alias)"},
		{Text: "/id", Description: "Identify (alias)"},
		{Text: "/t", Description: "Tab (alias)"},
		{Text: "/q", Description: "Exit (alias)"},
		{Text: "/h", Description: "Help (alias)"},
	}

	return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
}

func (s *InteractiveSession) tabSuggestions() []prompt.Suggest {
	session := s.app.orch.Session()
	if session.Tabs == nil {
		return []prompt.Suggest{}
	}
	var suggestions []prompt.Suggest
	for _, name := range session.Tabs.Names() {
		desc := ""
		if session.Tabs.IsActive(name) {
			desc = "(current)"
		}
		// Multi-word names are completed by their first word
		suggestions = append(suggestions, prompt.Suggest{Text: strings.Fields(name)[0], Description: name + " " + desc})
	}
	return suggestions
}

// runInteractive starts the REPL. Input starting with "/" is a command;
// any other line is treated as a file path to select.
func (app *App) runInteractive() {
	fmt.Println("Leafify - Interactive Mode")
	fmt.Printf("Endpoint: %s\n", app.cfg.Endpoint)
	fmt.Printf("History store: %s\n", app.cfg.StoreKind)
	fmt.Println("Type /help for commands, Ctrl+C or Ctrl+D to quit")
	fmt.Println("Type a file path or /select <path> to choose a photo, then /identify")
	fmt.Println()

	app.orch.Start()

	session := &InteractiveSession{app: app}

	p := prompt.New(
		session.executor,
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("leafify> "),
		prompt.WithTitle("Leafify"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkGreen),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkGreen),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithMaxSuggestion(10),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Println("\nGoodbye!")
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Println("Goodbye!")
					session.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}

// executor handles the execution of each input line in the REPL
func (s *InteractiveSession) executor(input string) {
	if s.exitFlag {
		return
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	if strings.HasPrefix(input, "/") {
		if s.app.handleCommand(input) {
			s.exitFlag = true
		}
		return
	}

	// A bare line is a path, as if dropped onto the upload area
	s.app.selectImage(splitPaths(input))
}
