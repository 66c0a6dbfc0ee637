// Package cmd implements the CLI commands for Leafify.
//
// # Architecture
//
//   - root.go: App struct, cobra command setup, flags, and component wiring
//   - interactive.go: go-prompt REPL session and completion
//   - slash_commands.go: Slash command handlers (/select, /identify, /tab, /chat)
//
// # Key Components
//
// ## App
//
// The App struct holds configuration and the wired components: the history
// store, the history cache, and the identification orchestrator. setup()
// builds them from the validated config; wire() is shared with tests so
// they can substitute the HTTP endpoint and store.
//
// ## InteractiveSession
//
// Drives the REPL. Bare input lines are treated as image paths; slash
// commands go through handleCommand.
//
// # Usage
//
//	func main() {
//	    cmd.Execute()
//	}
package cmd
