// Package main provides the entry point for the contentpilot MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/contentpilot/internal/app"
	"github.com/raphaelgruber/contentpilot/internal/config"
	"github.com/raphaelgruber/contentpilot/internal/server"
	"github.com/raphaelgruber/contentpilot/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// stdout carries the protocol, logs go to stderr and the log file
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("contentpilot-mcp starting",
		"version", version,
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
		"store", cfg.Store,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing content store")
		_ = application.Close(context.Background())
	}()

	srv := server.New(version, logger)
	srv.Setup()

	deps := &tools.Dependencies{
		Sessions: application.Sessions,
		Library:  application.Library,
		Logger:   logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps, &cfg)

	logger.Info("server ready, awaiting connections")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
