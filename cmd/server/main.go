package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/aas-risk-engine/internal/api"
	"github.com/aas-risk-engine/internal/cache"
	"github.com/aas-risk-engine/internal/coefficient"
	"github.com/aas-risk-engine/internal/config"
	"github.com/aas-risk-engine/internal/plugin"
	"github.com/aas-risk-engine/internal/scenario"
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

	logger := newLogger(cfg)

	store, err := coefficient.NewStore(cfg.Engine.PresetDir, logger)
	if err != nil {
		logger.Fatalf("Failed to open coefficient store: %v", err)
	}
	engine := service.NewEngine(store, plugin.NewDefaultRegistry(logger), logger)

	scenarios, err := newScenarioStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open scenario store: %v", err)
	}
	defer scenarios.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scenario.SeedReferences(ctx, scenarios); err != nil {
		logger.WithField("error", err.Error()).Warn("Failed to seed reference scenarios")
	}

	var results *cache.ResultCache
	if cfg.Cache.Enabled {
		results, err = cache.NewResultCache(cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("Result cache unavailable, continuing without it")
			results = nil
		} else {
			defer results.Close()
		}
	}

	server := api.NewServer(cfg, engine, scenarios, results, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"backend": cfg.Storage.Backend,
	}).Info("Starting risk engine server")

	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newScenarioStore(cfg *config.Config) (scenario.Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return scenario.NewPostgresStoreFromURL(cfg.Storage.PostgresURL)
	case "sqlite":
		return scenario.NewSQLiteStore(cfg.Storage.SQLitePath)
	default:
		return scenario.NewMemoryStore(), nil
	}
}
