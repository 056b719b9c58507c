package app

import (
	"errors"
	"net/http"
)

const (
	ContentTypeJSON        = "application/json"
	ContentTypeEventStream = "text/event-stream"
	ContentTypeHeader      = "Content-Type"
)

func (a *Application) startWebServer() {
	cfg := a.getConfig()
	a.logger.Info("Starting WebServer...", "host", cfg.Server.Host, "port", cfg.Server.Port)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", a.chatCompletionsHandler)
	mux.HandleFunc("GET /v1/models", a.modelsHandler)
	mux.HandleFunc("GET /internal/health", a.healthHandler)
	mux.HandleFunc("GET /internal/version", a.versionHandler)

	a.server.Handler = mux

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", "error", err)
			a.errCh <- err
		}
	}()

	a.logger.Info("Started WebServer", "bind", a.server.Addr)
}
