package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/davoram/hearth/internal/adapter/archset"
	"github.com/davoram/hearth/internal/adapter/extractor"
	"github.com/davoram/hearth/internal/adapter/stops"
	"github.com/davoram/hearth/internal/adapter/template"
	"github.com/davoram/hearth/internal/adapter/toolcall"
	"github.com/davoram/hearth/internal/app/services"
	"github.com/davoram/hearth/internal/config"
	"github.com/davoram/hearth/internal/logger"
)

// Application wires the adaptation pipeline to the HTTP surface: one
// architecture table, one cached extractor, one formatter and parser,
// all shared across requests.
type Application struct {
	configMu   sync.RWMutex
	config     *config.Config
	server     *http.Server
	logger     *logger.StyledLogger
	registry   *services.ModelRegistry
	completion *services.CompletionService
	extractor  *extractor.CachingExtractor
	errCh      chan error
}

// New creates a new application instance
func New(cfg *config.Config, log *logger.StyledLogger) (*Application, error) {
	archTable, err := archset.NewRegistryWithOverrides(cfg.Models.ArchOverridesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to build architecture table: %w", err)
	}

	registry := services.NewModelRegistry(log)
	detector := toolcall.NewDetector(archTable, log)

	cached := extractor.NewCaching(
		extractor.New(registry, detector, archTable, log),
	)
	registry.OnUnregister(cached.Invalidate)

	completion := services.NewCompletionService(
		registry,
		cached,
		template.NewFormatter(log),
		stops.NewOptimizer(archTable, log),
		toolcall.NewParser(log),
		cfg.Generation,
		log,
	)

	app := &Application{
		config:     cfg,
		logger:     log,
		registry:   registry,
		completion: completion,
		extractor:  cached,
		errCh:      make(chan error, 1),
	}

	app.server = &http.Server{
		Addr:         cfg.Server.GetAddress(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Handler:      nil, // Will be set in Start()
	}

	return app, nil
}

// Registry exposes the model registry so the loader can attach models.
func (a *Application) Registry() *services.ModelRegistry {
	return a.registry
}

// Start starts the application
func (a *Application) Start(ctx context.Context) error {
	go func() {
		select {
		case err := <-a.errCh:
			a.logger.Error("Server startup error", "error", err)
		case <-ctx.Done():
			return
		}
	}()

	a.startWebServer()

	a.logger.Info("Hearth started", "bind", a.server.Addr)
	return nil
}

// Stop stops the application
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.getConfig().Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	return nil
}

func (a *Application) getConfig() *config.Config {
	a.configMu.RLock()
	defer a.configMu.RUnlock()
	return a.config
}
