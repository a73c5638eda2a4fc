package main

import (
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/codec/codectest"
	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/infrastructure"
	"github.com/Bluenz7/pdfredactor/internal/lifecycle"
	"github.com/Bluenz7/pdfredactor/internal/store/memory"
)

func testInfra(t *testing.T) (*config.Config, *infrastructure.Infrastructure) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.MaxUploadSize = "1KB"
	cfg.CORS.Enabled = true
	cfg.CORS.Origins = []string{"https://app.example"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	cfg.Server.Port = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg, &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Codec:     codec.New(codectest.NewRenderer(color.White), codec.Config{Workers: 1}, logger),
		Store:     memory.New(),
	}
}

func TestHandler_Probes(t *testing.T) {
	cfg, infra := testInfra(t)
	handler := buildHandler(cfg, infra)

	tests := []struct {
		name   string
		path   string
		ready  bool
		status int
		body   string
	}{
		{"health", "/healthz", false, http.StatusOK, "OK"},
		{"not ready", "/readyz", false, http.StatusServiceUnavailable, "NOT READY"},
		{"ready", "/readyz", true, http.StatusOK, "READY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ready {
				infra.Lifecycle.WaitForStartup()
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestHandler_Middleware(t *testing.T) {
	cfg, infra := testInfra(t)
	handler := buildHandler(cfg, infra)

	t.Run("trailing slash redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents/", nil))
		if rec.Code != http.StatusMovedPermanently {
			t.Errorf("status = %d, want 301", rec.Code)
		}
	})

	t.Run("cors headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})

	t.Run("body limit", func(t *testing.T) {
		body := strings.NewReader(`{"pages":"` + strings.Repeat("1,", 2048) + `1","name":"x"}`)
		req := httptest.NewRequest("POST", "/api/documents/00000000-0000-0000-0000-000000000001/extract", body)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestServer_StartShutdown(t *testing.T) {
	cfg, infra := testInfra(t)
	srv := newServer(cfg, infra)

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	resp, err := http.Get("http://" + srv.http.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}
