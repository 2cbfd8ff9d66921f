package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/config"
	"github.com/d23ai/sahay-gateway/internal/logging"
)

// Pinger is the health probe for an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the operational HTTP surface: health, status, metrics and a
// classifier debug endpoint. User traffic does not flow through it.
type Server struct {
	cfg        *config.Config
	classifier *classify.Classifier
	redis      Pinger
	adapters   []channel.Adapter
	httpServer *http.Server
	startTime  time.Time
	logger     *slog.Logger
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Services  map[string]ServiceHealth `json:"services"`
	Timestamp string                   `json:"timestamp"`
}

// ServiceHealth represents a single dependency health status.
type ServiceHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// StatusResponse represents the full system status.
type StatusResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Uptime    string          `json:"uptime"`
	Channels  map[string]bool `json:"channels"`
	Timestamp string          `json:"timestamp"`
}

// ClassifyResponse represents the classifier debug output.
type ClassifyResponse struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities"`
	Language   string         `json:"language"`
}

// New creates the operational HTTP server.
func New(cfg *config.Config, classifier *classify.Classifier, redis Pinger, adapters []channel.Adapter) *Server {
	s := &Server{
		cfg:        cfg,
		classifier: classifier,
		redis:      redis,
		adapters:   adapters,
		startTime:  time.Now(),
		logger:     logging.WithComponent("server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/v1/status", s.statusHandler)
	mux.HandleFunc("/api/v1/classify", s.classifyHandler)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler reports dependency health. A degraded redis does not
// flip the overall status: the gateway keeps serving on the in-memory
// stores.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services := map[string]ServiceHealth{
		"http": {Healthy: true, Message: "HTTP server running"},
	}
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.redis.Ping(ctx); err != nil {
			services["redis"] = ServiceHealth{Healthy: false, Message: err.Error()}
		} else {
			services["redis"] = ServiceHealth{Healthy: true}
		}
	}

	writeJSON(w, HealthResponse{
		Status:    "healthy",
		Version:   "1.0.0",
		Uptime:    time.Since(s.startTime).String(),
		Services:  services,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// statusHandler reports which channels are live.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channels := make(map[string]bool, len(s.adapters))
	for _, a := range s.adapters {
		channels[a.Name()] = a.IsEnabled()
	}

	writeJSON(w, StatusResponse{
		Status:    "healthy",
		Version:   "1.0.0",
		Uptime:    time.Since(s.startTime).String(),
		Channels:  channels,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// classifyHandler runs the layered classifier on a text body. Debug
// only: it does not touch context, pending actions or handlers.
func (s *Server) classifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}

	result := s.classifier.Classify(r.Context(), req.Text, "")
	writeJSON(w, ClassifyResponse{
		Intent:     result.Intent,
		Confidence: result.Confidence,
		Entities:   result.Entities,
		Language:   result.Language,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
