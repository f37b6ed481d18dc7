// Package cli provides the command-line interface for the trading desk.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradedesk/internal/config"
	"tradedesk/internal/desk"
	"tradedesk/internal/logging"
	"tradedesk/internal/performance"
	"tradedesk/internal/quote"
	"tradedesk/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// skipInit marks commands that run without a config or store.
const skipInit = "skip-init"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Desk   *desk.Desk

	// owned is true when the store was opened by the command run and must
	// be closed when it finishes.
	owned bool
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{Logger: zerolog.Nop()})
}

// newRootCmd builds the command tree around app. When app.Desk is already
// set the config and store are not loaded.
func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tradedesk",
		Short: "Trading journal, watchlist and performance analytics",
		Long: `tradedesk keeps a personal trading journal and stock watchlist.

It records stock and option trades, tracks live quotes for a watchlist,
and breaks down performance by time of day, weekday, strategy, implied
volatility and more. The same data can be served over HTTP with 'serve'.

Use 'tradedesk seed' to load demo data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipInit] == "true" {
				return nil
			}
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradedesk)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("memory", false, "use a throwaway in-memory store")

	addCoreCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addAnalyticsCommands(rootCmd, app)
	addWatchlistCommands(rootCmd, app)
	addShareCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addServeCommand(rootCmd, app)

	return rootCmd
}

// init loads the config, sets up logging and opens the store.
func (a *App) init(cmd *cobra.Command) error {
	if a.Desk != nil {
		return nil
	}

	dir, _ := cmd.Flags().GetString("config")
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	if memory, _ := cmd.Flags().GetBool("memory"); memory {
		cfg.Store.Driver = config.DriverMemory
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Console = true
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})

	if !cfg.InMemory() {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug().Str("driver", cfg.Store.Driver).Str("path", cfg.Store.Path).Msg("Store opened")

	month, err := performance.ParseMonth(cfg.Analytics.HeatmapMonth)
	if err != nil {
		st.Close()
		return err
	}

	quotes := quote.NewClient(quote.Config{
		BaseURL:     cfg.Quote.BaseURL,
		Timeout:     cfg.Quote.Timeout,
		MaxAttempts: cfg.Quote.MaxAttempts,
		UserAgent:   cfg.Quote.UserAgent,
	}, logger)

	a.Config = cfg
	a.Logger = logger
	a.Store = st
	a.owned = true
	a.Desk = desk.New(st, quotes, desk.Options{
		HeatmapMonth: month,
		ShareBaseURL: cfg.Server.BaseURL,
	}, logger)
	return nil
}

func (a *App) close() error {
	if !a.owned || a.Store == nil {
		return nil
	}
	a.owned = false
	return a.Store.Close()
}

// commandTimeout bounds store and quote work for a single command.
const commandTimeout = 30 * time.Second

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), commandTimeout)
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipInit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("tradedesk v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Config == nil {
				return fmt.Errorf("no configuration loaded")
			}
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show configuration file path",
		Annotations: map[string]string{skipInit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": config.Path(dir)})
			}
			output.Println(config.Path(dir))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Config == nil {
				return fmt.Errorf("no configuration loaded")
			}
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Store")
	output.Printf("  Driver:          %s\n", cfg.Store.Driver)
	if !cfg.InMemory() {
		output.Printf("  Path:            %s\n", cfg.Store.Path)
	}
	output.Println()

	output.Bold("Quotes")
	output.Printf("  Base URL:        %s\n", cfg.Quote.BaseURL)
	output.Printf("  Timeout:         %s\n", cfg.Quote.Timeout)
	output.Printf("  Max Attempts:    %d\n", cfg.Quote.MaxAttempts)
	output.Println()

	output.Bold("Analytics")
	output.Printf("  Heatmap Month:   %s\n", cfg.Analytics.HeatmapMonth)
	output.Println()

	output.Bold("Server")
	output.Printf("  Listen:          %s\n", cfg.Server.Listen)
	output.Printf("  Share Base URL:  %s\n", cfg.Server.BaseURL)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %v\n", cfg.Logging.File)
	if cfg.Logging.File {
		output.Printf("  File Path:       %s\n", cfg.Logging.FilePath)
	}
}
