// Package api exposes the navigation core over HTTP: sensor inlets,
// session control, route planning and a websocket event stream.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"campusnav/pkg/version"
)

// NewServer creates and configures the HTTP server. It accepts handlers
// for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, sessionH *SessionHandler, routeH *RouteHandler, cfgH *ConfigHandler, streamH *StreamHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// Session control and sensor inlets
	mux.HandleFunc("POST /api/session/origin", sessionH.HandleOrigin)
	mux.HandleFunc("POST /api/session/step", sessionH.HandleStep)
	mux.HandleFunc("POST /api/session/heading", sessionH.HandleHeading)
	mux.HandleFunc("POST /api/session/label", sessionH.HandleLabel)
	mux.HandleFunc("POST /api/session/clear", sessionH.HandleClear)
	mux.HandleFunc("GET /api/session/status", sessionH.HandleStatus)
	mux.HandleFunc("GET /api/session/last-origin", sessionH.HandleLastOrigin)

	// Routing
	mux.HandleFunc("POST /api/route", routeH.HandleRoute)
	mux.HandleFunc("GET /api/route/grid", routeH.HandleGrid)

	// Runtime-tunable settings
	mux.HandleFunc("/api/config", cfgH.HandleConfig)

	// Event stream
	mux.HandleFunc("GET /api/events", streamH.HandleEvents)

	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
