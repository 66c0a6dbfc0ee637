package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/leafify/internal/api"
	"github.com/quocvuong92/leafify/internal/config"
	"github.com/quocvuong92/leafify/internal/constants"
	"github.com/quocvuong92/leafify/internal/display"
	"github.com/quocvuong92/leafify/internal/history"
	"github.com/quocvuong92/leafify/internal/identify"
	"github.com/quocvuong92/leafify/internal/logging"
	"github.com/quocvuong92/leafify/internal/storage"
	"github.com/quocvuong92/leafify/internal/upload"
)

// errReported marks a failure the view has already shown to the user
var errReported = errors.New("reported")

// App holds the application state
type App struct {
	cfg     *config.Config
	verbose bool
	out     io.Writer

	logger  *logging.Logger
	store   storage.Backend
	history *history.Cache
	orch    *identify.Orchestrator
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg: config.NewConfig(),
		out: os.Stdout,
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()
	rootCmd := newRootCmd(app)

	err := rootCmd.Execute()
	app.close()
	if err != nil {
		if !errors.Is(err, errReported) {
			display.ShowError(err.Error())
		}
		os.Exit(1)
	}
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leafify [image]",
		Short: "Identify plants from photos",
		Long: `Leafify sends a plant photo to an identification service, shows the top
suggestions with their confidence and a description, and keeps a short
history of past identifications.

Examples:
  leafify leaf.jpg                      # Identify one photo
  leafify -r leaf.jpg                   # Render descriptions as markdown
  leafify history                       # Show past identifications
  leafify chat "Is it safe for cats?"   # Ask about the last identified plant
  leafify -i                            # Interactive mode`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Interactive {
				app.runInteractive()
				return nil
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return app.identifyImage(cmd.Context(), args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug mode")
	flags.BoolVarP(&app.cfg.Render, "render", "r", false, "Render descriptions as markdown")
	flags.StringVar(&app.cfg.Endpoint, "endpoint", "", "Identification service URL (default: "+constants.DefaultEndpoint+")")
	flags.StringVar(&app.cfg.StoreKind, "store", "", "History store: file, sqlite, or memory (default: file)")
	flags.StringVar(&app.cfg.StorePath, "store-path", "", "History store location")
	rootCmd.Flags().BoolVarP(&app.cfg.Interactive, "interactive", "i", false, "Interactive mode")
	rootCmd.Flags().BoolVar(&app.cfg.AllowConcurrentIdentify, "allow-concurrent", false, "Allow a new identification while one is running")

	rootCmd.AddCommand(newIdentifyCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newChatCmd(app))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newIdentifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "identify <image> [image...]",
		Short: "Identify the plant in a photo",
		Long: `Identify the plant in a photo. When several files are given only the
first is sent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.identifyImage(cmd.Context(), args)
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent identifications",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.orch.ShowHistory()
		},
	}
}

func newChatCmd(app *App) *cobra.Command {
	var plant string
	cmd := &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask a question about an identified plant",
		Long: `Ask a question about a plant. Without --plant the most recent
identification from the history is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.chat(cmd.Context(), plant, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&plant, "plant", "p", "", "Plant to ask about")
	return cmd
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfigFile()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file written to %s\n", path)
			return nil
		},
	})
	return configCmd
}

// setup validates the configuration and wires the components
func (app *App) setup() error {
	if app.verbose {
		app.cfg.Debug = true
	}
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	logging.Configure(app.cfg.LogLevel, app.cfg.LogFormat)
	app.logger = logging.DefaultLogger

	if app.cfg.Render {
		if err := display.InitRenderer(); err != nil {
			display.ShowWarning("markdown rendering unavailable: " + err.Error())
		}
	}

	store, err := storage.Open(app.cfg.StoreKind, app.cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open %s store: %w", app.cfg.StoreKind, err)
	}
	app.logger.Debug("store opened", logging.Fields{"kind": app.cfg.StoreKind, "path": app.cfg.StorePath})

	app.wire(api.NewClient(app.cfg, api.WithLogger(app.logger)), store)
	return nil
}

// wire builds the orchestrator over client and store
func (app *App) wire(client api.Identifier, store storage.Backend) {
	if app.logger == nil {
		app.logger = logging.Nop()
	}
	app.store = store
	app.history = history.NewCache(store, history.WithLogger(app.logger))

	view := display.NewTerminal(app.out, app.cfg.Render)
	app.orch = identify.New(client, app.history, upload.NewHandler(app.logger), view, identify.Options{
		AllowOverlap: app.cfg.AllowConcurrentIdentify,
		Logger:       app.logger,
	})
}

func (app *App) close() {
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Warn("failed to close store", logging.Fields{"error": err.Error()})
		}
		app.store = nil
	}
}

// identifyImage selects paths and runs one identification
func (app *App) identifyImage(ctx context.Context, paths []string) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	readCtx, cancel := context.WithTimeout(ctx, constants.DefaultReadTimeout)
	err := app.orch.Select(readCtx, paths)
	cancel()
	if err != nil {
		return errReported
	}

	if err := app.orch.Identify(ctx); err != nil {
		return errReported
	}
	return nil
}

// chat asks a question about plant, or about the newest history entry
func (app *App) chat(ctx context.Context, plant, question string) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	if plant == "" {
		if entries := app.history.List(); len(entries) > 0 {
			plant = entries[0].PlantName
		}
	}
	if plant != "" {
		app.orch.Restore(plant)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultChatTimeout)
	defer cancel()
	if err := app.orch.Chat(ctx, question); err != nil {
		return errReported
	}
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
