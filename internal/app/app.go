// Package app wires configuration into the running services.
// It serves as dependency injection for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/contentpilot/internal/config"
	"github.com/raphaelgruber/contentpilot/internal/db"
	"github.com/raphaelgruber/contentpilot/internal/llm"
	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/prompt"
	"github.com/raphaelgruber/contentpilot/internal/service"
)

// App holds every long-lived dependency.
type App struct {
	Config       config.Config
	Logger       *slog.Logger
	Metrics      *metrics.Collector
	Adapter      llm.Adapter
	Orchestrator *service.Orchestrator
	Sessions     *service.SessionManager
	Library      *service.ContentLibrary
	Assistant    *service.Assistant

	db *db.Client
}

// New connects the configured model provider and content store.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mc := metrics.NewCollector()

	model, err := llm.NewModel(ctx, cfg, mc, logger)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	logger.Info("model initialized", "provider", cfg.LLMProvider, "model", model.Model())

	return NewWithAdapter(ctx, cfg, model, mc, logger)
}

// NewWithAdapter wires the services around an existing adapter.
func NewWithAdapter(ctx context.Context, cfg config.Config, adapter llm.Adapter, mc *metrics.Collector, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if mc == nil {
		mc = metrics.NewCollector()
	}

	overrides, err := prompt.LoadOverrides(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	composer, err := prompt.NewComposer(overrides)
	if err != nil {
		return nil, fmt.Errorf("build prompts: %w", err)
	}

	limits := service.DefaultLimits()
	if cfg.MaxImageBytes > 0 {
		limits.MaxImageBytes = cfg.MaxImageBytes
	}

	orch := service.NewOrchestrator(adapter, service.OrchestratorConfig{
		Composer: composer,
		Limits:   limits,
		Metrics:  mc,
		Logger:   logger,
	})
	sessions := service.NewSessionManager(orch, logger)

	a := &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      mc,
		Adapter:      adapter,
		Orchestrator: orch,
		Sessions:     sessions,
		Assistant:    service.NewAssistant(adapter, limits),
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Library = service.NewContentLibrary(store, sessions, logger)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (service.ContentStore, error) {
	switch a.Config.Store {
	case config.StoreSurrealDB:
		dbCfg := db.Config{
			URL:       a.Config.SurrealDBURL,
			Namespace: a.Config.SurrealDBNamespace,
			Database:  a.Config.SurrealDBDatabase,
			Username:  a.Config.SurrealDBUser,
			Password:  a.Config.SurrealDBPass,
			AuthLevel: a.Config.SurrealDBAuthLevel,
		}
		client, err := db.NewClient(ctx, dbCfg, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		a.db = client
		a.Logger.Info("content store ready", "store", config.StoreSurrealDB, "url", dbCfg.URL)
		return db.NewContentStore(client, a.Metrics), nil
	default:
		a.Logger.Info("content store ready", "store", config.StoreMemory)
		return service.NewMemoryContentStore(), nil
	}
}

// WipeData deletes all saved content. Use for testing only.
func (a *App) WipeData(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.WipeData(ctx)
}

// Close closes all connections.
func (a *App) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close(ctx)
	}
	return nil
}
