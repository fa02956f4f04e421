// Lambda entry point serving the macro HTTP API behind a Function URL.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
	"github.com/rsned/crafting-macro-server/internal/crafting/db"
	"github.com/rsned/crafting-macro-server/internal/crafting/engine"
	"github.com/rsned/crafting-macro-server/internal/crafting/httpapi"
	"github.com/rsned/crafting-macro-server/internal/crafting/observability"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadWithDefaults(os.Getenv("CRAFTING_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// The function's filesystem is read-only outside /tmp.
	if os.Getenv("CRAFTING_DATABASE_PATH") == "" {
		cfg.Database.Path = db.MemoryPath
	}

	ctx := context.Background()
	database, err := db.OpenAndInit(ctx, cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// The function may be frozen between invocations, so spans are written
	// as they end rather than batched.
	tp, err := observability.InitTracing(ctx, cfg.Tracing, os.Stderr, observability.WithSyncExport())
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(database, cfg,
		engine.WithLogger(logger),
		engine.WithTracer(tp.Tracer(engine.TracerName)))
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}
	if _, err := eng.Catalog(ctx); err != nil {
		logger.Error("failed to load skills", "error", err)
		os.Exit(1)
	}

	h := newHandler(httpapi.NewServer(eng, cfg.Server, logger).Handler())
	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(func() {
		if err := observability.ShutdownTracing(context.Background(), tp); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
		_ = database.Close()
	}))
}
