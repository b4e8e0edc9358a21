package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"github.com/taxilian/tsk/internal/config"
	"github.com/taxilian/tsk/internal/db"
	"github.com/taxilian/tsk/internal/display"
	"github.com/taxilian/tsk/internal/store"
)

// version is set via ldflags at build time, or read from module info
var version = "dev"

// clock is the time source for every command.
var clock = time.Now

// errReported means the command already printed its errors.
var errReported = errors.New("errors reported")

func init() {
	// Try to get version from build info if not set via ldflags
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	rootCmd.Version = version
}

var (
	flagSort       string
	flagColor      bool
	flagNoColor    bool
	flagTags       []string
	flagProject    string
	flagVerbose    bool
	flagConfigPath string
)

var rootCmd = &cobra.Command{
	Use:   "tsk",
	Short: "A fast, minimal terminal todo manager",
	Long: `Track tasks with casual deadlines from the terminal.

Store: ~/.tsk/todos.json (override with TSK_STORE or the config file)
Config: ~/.config/tsk/config.toml (override with TSK_CONFIG or --config)

Quick start:
  tsk add "Write report" -t "tomorrow 3pm" -p 1 +work
  tsk                 # open tasks
  tsk today
  tsk done 1
  tsk undo`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), flagVerbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.list(listOpen) })
	},
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfigPath != "" {
		cfg, err = config.LoadFrom(flagConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flagSort != "" {
		if err := config.ValidateSort(flagSort); err != nil {
			return nil, err
		}
		cfg.Display.Sort = flagSort
	}
	switch {
	case flagColor:
		cfg.Display.Color = config.ColorAlways
	case flagNoColor:
		cfg.Display.Color = config.ColorNever
	}
	return cfg, nil
}

// storePath picks the store location: TSK_STORE, then the config file,
// then ~/.tsk/<fallback>.
func storePath(cfg *config.Config, fallback string) (string, error) {
	if p := os.Getenv(store.EnvPath); p != "" {
		return p, nil
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	return store.DataPath(fallback)
}

// openBackend opens the configured backend. The returned close function is
// never nil.
func openBackend(cfg *config.Config) (store.Backend, func() error, error) {
	noop := func() error { return nil }

	if cfg.Store.Backend == config.BackendSQLite {
		path, err := storePath(cfg, "todos.db")
		if err != nil {
			return nil, noop, err
		}
		database, err := db.Open(path)
		if err != nil {
			return nil, noop, err
		}
		if err := database.Init(); err != nil {
			_ = database.Close()
			return nil, noop, fmt.Errorf("failed to initialize database: %w", err)
		}
		slog.Debug("opened sqlite store", "path", path)
		return database, database.Close, nil
	}

	path, err := storePath(cfg, store.StoreFile)
	if err != nil {
		return nil, noop, err
	}
	slog.Debug("using file store", "path", path)
	return store.NewFileBackend(path), noop, nil
}

// withApp builds the command context, runs fn and releases the backend.
func withApp(cmd *cobra.Command, fn func(*app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBackend(); err != nil {
			slog.Warn("failed to close store", "err", err)
		}
	}()

	view := display.NewConfig(cfg.ForceColor())
	view.TextWidth = cfg.Display.TextWidth
	a := &app{
		backend: backend,
		cfg:     cfg,
		view:    view,
		sort:    cfg.Display.Sort,
		filter:  store.Filter{Tags: flagTags, Project: flagProject},
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		now:     clock(),
	}
	return fn(a)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagSort, "by", "", "Sort by: priority, time, created")
	rootCmd.PersistentFlags().BoolVar(&flagColor, "color", false, "Force color output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable color output")
	rootCmd.PersistentFlags().StringArrayVarP(&flagTags, "tag", "T", nil, "Filter by tag (can be repeated)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "P", "", "Filter by project")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default ~/.config/tsk/config.toml)")
	rootCmd.MarkFlagsMutuallyExclusive("color", "no-color")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			display.PrintError(os.Stderr, err.Error(), display.NewConfig(nil))
		}
		os.Exit(1)
	}
}
