package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/aas-risk-engine/internal/coefficient"
	"github.com/aas-risk-engine/internal/config"
	"github.com/aas-risk-engine/internal/mcp"
	"github.com/aas-risk-engine/internal/plugin"
	"github.com/aas-risk-engine/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	// Stdout carries the MCP stream, so all logging goes to stderr.
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	store, err := coefficient.NewStore(cfg.Engine.PresetDir, logger)
	if err != nil {
		logger.Fatalf("Failed to open coefficient store: %v", err)
	}
	engine := service.NewEngine(store, plugin.NewDefaultRegistry(logger), logger)

	server := mcp.NewServer(engine, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down MCP server")
		cancel()
	}()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatalf("MCP server failed: %v", err)
	}
	logger.Info("MCP server stopped")
}
