package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jonathan/presence-audit/internal/audit"
	"github.com/jonathan/presence-audit/internal/config"
	"github.com/jonathan/presence-audit/internal/currency"
	"github.com/jonathan/presence-audit/internal/db"
	"github.com/jonathan/presence-audit/internal/export"
	"github.com/jonathan/presence-audit/internal/llm"
	"github.com/jonathan/presence-audit/internal/logging"
	"github.com/jonathan/presence-audit/internal/preferences"
	"github.com/jonathan/presence-audit/internal/reports"
)

// app is everything a command needs, built from configuration.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *audit.Service
	prefs   preferences.Store
	closers []io.Closer
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires storage, the model client factory and the PDF renderer.
// Redis and Postgres are used when configured; otherwise state stays in memory.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	catalog := currency.Default()

	if cfg.Redis.Addr != "" {
		client := preferences.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		store := preferences.NewRedisStore(client, catalog, preferences.DefaultTTL)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		a.prefs = store
		a.closers = append(a.closers, client)
		logger.Info("preferences stored in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		a.prefs = preferences.NewMemoryStore(catalog)
	}

	var reportStore reports.Store
	if cfg.Database.URL != "" {
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, database)
		if err := database.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		reportStore = database
		logger.Info("reports archived in postgres")
	} else {
		reportStore = reports.NewMemoryStore(reports.DefaultCapacity)
	}

	renderer, err := export.NewRenderer(export.Engine(cfg.PDF.Engine), cfg.PDF.Timeout, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.service = audit.NewService(audit.Options{
		Factory:       llm.NewFactory(cfg.LLM(), logger),
		Preferences:   a.prefs,
		Reports:       reportStore,
		Catalog:       catalog,
		DefaultAPIKey: cfg.Gemini.APIKey,
		Provider:      cfg.Gemini.Provider,
		Generate:      cfg.GenerateOptions(),
		Pipeline:      cfg.Pipeline(),
		PhaseInterval: cfg.Progress.Interval,
		Renderer:      renderer,
		PDFOptions:    cfg.PDFOptions(),
		Logger:        logger,
	})
	return a, nil
}

// Close releases storage connections.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
