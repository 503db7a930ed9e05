// Wordlygate - Telegram gift-game gateway
// License: MIT
//
// Copyright (c) 2026 Wordlygate contributors

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wordlygate/pkg/channels"
	"wordlygate/pkg/config"
	"wordlygate/pkg/logger"
	"wordlygate/pkg/miniapp"
)

// Delivery is the slice of the Telegram channel the HTTP layer needs:
// health reporting plus, in webhook mode, the push-ingestion handler.
type Delivery interface {
	Mode() channels.Mode
	Status() channels.Status
	WebhookHandler() http.HandlerFunc
	HTTPPath() string
}

type Server struct {
	server   *http.Server
	config   *config.Config
	gateway  *miniapp.Gateway
	delivery Delivery
}

func NewServer(cfg *config.Config, gateway *miniapp.Gateway, delivery Delivery) *Server {
	return &Server{
		config:   cfg,
		gateway:  gateway,
		delivery: delivery,
	}
}

func (s *Server) Start() error {
	addr := s.config.ListenAddr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	logger.InfoCF("server", "Starting HTTP server", map[string]interface{}{
		"addr":           addr,
		logger.FieldMode: string(s.delivery.Mode()),
	})
	logger.InfoC("server", "Server ready for reverse proxying")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("server", "HTTP server failed", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		logger.InfoC("server", "Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler assembles the full route table. The webhook path is mounted
// only in webhook mode so a polling deployment exposes no push surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/auth", s.gateway.HandleAuth)
	mux.HandleFunc("/api/game-events", s.gateway.HandleGameEvent)
	if s.delivery.Mode() == channels.ModeWebhook {
		mux.HandleFunc(s.delivery.HTTPPath(), s.delivery.WebhookHandler())
	}
	mux.HandleFunc("/", s.handleRoot)
	return s.withCORS(mux)
}

// handleHealth always reports 200. A degraded webhook registration is
// visible in the delivery block, not in the status code; the process is
// alive and still serves pull-side traffic.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.delivery.Status()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"mode":      string(status.Mode),
		"delivery":  status,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Wordlygate",
		"status":  "running",
		"mode":    string(s.delivery.Mode()),
		"time":    time.Now().UTC().Format(time.RFC3339),
		"endpoints": []string{
			"/health",
			"/api/auth",
			"/api/game-events",
		},
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WarnCF("server", "Failed to write response", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
}
