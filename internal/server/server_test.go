package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/config"
)

type stubAdapter struct {
	name    string
	enabled bool
}

func (s *stubAdapter) Start(context.Context) error                  { return nil }
func (s *stubAdapter) Stop() error                                  { return nil }
func (s *stubAdapter) SendMessage(string, *channel.Response) error  { return nil }
func (s *stubAdapter) Incoming() <-chan *channel.Message            { return nil }
func (s *stubAdapter) Name() string                                 { return s.name }
func (s *stubAdapter) IsEnabled() bool                              { return s.enabled }

func testServer(t *testing.T, port int) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: port, Host: "localhost"},
	}
	classifier := classify.New(nil, "test", time.Second, 0)
	adapters := []channel.Adapter{
		&stubAdapter{name: "telegram", enabled: true},
		&stubAdapter{name: "webchat", enabled: false},
	}
	return New(cfg, classifier, nil, adapters)
}

func TestNew(t *testing.T) {
	if testServer(t, 18800) == nil {
		t.Fatal("Expected non-nil server")
	}
}

func TestHealthHandler(t *testing.T) {
	srv := testServer(t, 18800)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.healthHandler(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	var hr HealthResponse
	json.NewDecoder(resp.Body).Decode(&hr)
	if hr.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", hr.Status)
	}
}

func TestStatusHandler(t *testing.T) {
	srv := testServer(t, 18800)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.statusHandler(w, req)

	var sr StatusResponse
	json.NewDecoder(w.Result().Body).Decode(&sr)
	if !sr.Channels["telegram"] {
		t.Error("Expected telegram channel enabled")
	}
	if sr.Channels["webchat"] {
		t.Error("Expected webchat channel disabled")
	}
}

func TestClassifyHandler(t *testing.T) {
	srv := testServer(t, 18800)
	body := strings.NewReader(`{"text": "weather in Delhi"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", body)
	w := httptest.NewRecorder()
	srv.classifyHandler(w, req)

	var cr ClassifyResponse
	json.NewDecoder(w.Result().Body).Decode(&cr)
	if cr.Intent != "weather" {
		t.Errorf("Expected weather, got %s", cr.Intent)
	}
	if cr.Entities["city"] != "Delhi" {
		t.Errorf("Expected Delhi, got %v", cr.Entities["city"])
	}
}

func TestClassifyHandlerRejectsEmpty(t *testing.T) {
	srv := testServer(t, 18800)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.classifyHandler(w, req)
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Result().StatusCode)
	}
}

func TestShutdown(t *testing.T) {
	srv := testServer(t, 18801)
	go srv.Start()
	time.Sleep(100 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
