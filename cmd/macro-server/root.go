package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
	"github.com/rsned/crafting-macro-server/internal/crafting/db"
	"github.com/rsned/crafting-macro-server/internal/crafting/engine"
	"github.com/rsned/crafting-macro-server/internal/crafting/observability"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	dbPath     string
	verbose    bool

	cfg       *config.Config
	logger    *slog.Logger
	logOutput io.Writer
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(os.Stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "macro-server",
		Short: "Crafting macro optimizer",
		Long: `macro-server searches for crafting action sequences that finish a
recipe with the best quality, and renders them as in-game macros.

It serves the optimizer over HTTP (serve) or MCP on stdio (mcp), and
offers the same operations directly on the command line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd, logOutput)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "crafting.yaml", "Path to the YAML config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Path to SQLite database (overrides database.path)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newOptimizeCmd(a),
		newSimulateCmd(a),
		newSkillsCmd(a),
		newImportSkillsCmd(a),
		newResetSkillsCmd(a),
		newRunsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// load reads the configuration and sets up logging.
func (a *app) load(cmd *cobra.Command, logOutput io.Writer) error {
	// config init writes the file the other commands read.
	if cmd.Name() == "init" {
		a.cfg = config.DefaultConfig()
	} else {
		cfg, err := config.LoadWithDefaults(a.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.cfg = cfg
	}
	if a.dbPath != "" {
		a.cfg.Database.Path = a.dbPath
	}

	a.logOutput = logOutput
	a.logger = newLogger(logOutput, a.cfg.Logging, a.verbose)
	slog.SetDefault(a.logger)
	return nil
}

// newLogger builds the slog handler the config asks for.
func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openDB opens the configured database. The caller closes it.
func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	database, err := db.OpenAndInit(ctx, a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// openEngine opens the database, starts tracing and builds an engine. The
// returned func flushes spans and closes the database.
func (a *app) openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	database, err := a.openDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	// Spans go to the log output so they never mix with MCP traffic on stdout.
	tp, err := observability.InitTracing(ctx, a.cfg.Tracing, a.logOutput, observability.WithServiceVersion(version))
	if err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}

	closeAll := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownTracing(shutdownCtx, tp); err != nil {
			a.logger.Warn("failed to flush traces", "error", err)
		}
		_ = database.Close()
	}

	eng, err := engine.New(database, a.cfg,
		engine.WithLogger(a.logger),
		engine.WithTracer(tp.Tracer(engine.TracerName)))
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return eng, closeAll, nil
}
