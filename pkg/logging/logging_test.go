package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Bluenz7/pdfredactor/pkg/logging"
)

func TestConfig_Finalize(t *testing.T) {
	tests := []struct {
		name       string
		cfg        logging.Config
		env        map[string]string
		wantLevel  logging.Level
		wantFormat logging.Format
		wantSource bool
		wantErr    bool
	}{
		{name: "defaults", wantLevel: logging.LevelInfo, wantFormat: logging.FormatText},
		{
			name:       "env overrides",
			cfg:        logging.Config{Level: logging.LevelWarn},
			env:        map[string]string{"TEST_LOG_LEVEL": "DEBUG", "TEST_LOG_FORMAT": "json", "TEST_LOG_SOURCE": "true"},
			wantLevel:  logging.LevelDebug,
			wantFormat: logging.FormatJSON,
			wantSource: true,
		},
		{name: "invalid level", cfg: logging.Config{Level: "verbose"}, wantErr: true},
		{name: "invalid format", cfg: logging.Config{Format: "xml"}, wantErr: true},
	}

	env := &logging.Env{Level: "TEST_LOG_LEVEL", Format: "TEST_LOG_FORMAT", AddSource: "TEST_LOG_SOURCE"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := tt.cfg.Finalize(env)
			if tt.wantErr {
				if err == nil {
					t.Error("Finalize() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}

			if tt.cfg.Level != tt.wantLevel || tt.cfg.Format != tt.wantFormat || tt.cfg.AddSource != tt.wantSource {
				t.Errorf("got %+v", tt.cfg)
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	base := logging.Config{Level: logging.LevelInfo, Format: logging.FormatText}
	base.Merge(&logging.Config{Format: logging.FormatJSON})

	if base.Level != logging.LevelInfo || base.Format != logging.FormatJSON {
		t.Errorf("Merge result = %+v", base)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{Level: logging.LevelWarn, Format: logging.FormatJSON}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "system", "codec")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %s", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["system"] != "codec" {
		t.Errorf("record = %v", rec)
	}
}
