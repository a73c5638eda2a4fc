package server_test

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/lifecycle"
	"github.com/Bluenz7/pdfredactor/internal/server"
)

func testConfig(t *testing.T, port int) *config.ServerConfig {
	t.Helper()
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: port}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	cfg.Port = port
	return cfg
}

func TestServer_ServesAndShutsDown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	lc := lifecycle.New()
	srv := server.New(testConfig(t, 0), handler, logger)
	if err := srv.Start(lc); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	client := &http.Client{Timeout: time.Second}
	if _, err := client.Get("http://" + srv.Addr() + "/"); err == nil {
		t.Error("server still accepting requests after shutdown")
	}
}

func TestServer_StartFailsWhenAddressInUse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lc := lifecycle.New()
	defer lc.Shutdown(time.Second)

	first := server.New(testConfig(t, 0), http.NotFoundHandler(), logger)
	if err := first.Start(lc); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, portStr, err := net.SplitHostPort(first.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	second := server.New(testConfig(t, port), http.NotFoundHandler(), logger)
	if err := second.Start(lc); err == nil {
		t.Error("expected error binding an address already in use")
	}
}
