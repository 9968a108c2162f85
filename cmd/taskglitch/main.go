package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/taskglitch/adapter/cli"
	"github.com/felixgeelhaar/taskglitch/adapter/cli/mcp"
	"github.com/felixgeelhaar/taskglitch/adapter/cli/task"
	"github.com/felixgeelhaar/taskglitch/internal/app"
	"github.com/felixgeelhaar/taskglitch/pkg/config"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	cli.SetLogger(logger)

	// Version and help still work when storage is unreachable in development.
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		if err := container.Start(ctx); err != nil {
			logger.Error("failed to load tasks", "error", err)
			os.Exit(1)
		}
		if err := container.PersistLoaded(ctx); err != nil {
			logger.Warn("failed to persist loaded tasks", "error", err)
		}

		cliApp = cli.NewApp(container.Store, container.ListTasksHandler, container.Health)
		cliApp.SetActivity(container.Activity)
	}

	cli.SetApp(cliApp)

	cli.AddCommand(task.Cmd)
	cli.AddCommand(mcp.Cmd)

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.ServiceVersion = cli.Version
	return observability.NewLogger(logCfg)
}
