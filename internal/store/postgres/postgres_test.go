package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/database"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/storage"
	"github.com/Bluenz7/pdfredactor/internal/store/postgres"
	"github.com/Bluenz7/pdfredactor/internal/store/storetest"
	"github.com/Bluenz7/pdfredactor/migrations"
)

// Set PDFREDACTOR_TEST_DATABASE_URL to a disposable postgres database to run these tests.
const envTestDatabaseURL = "PDFREDACTOR_TEST_DATABASE_URL"

func TestStore_Contract(t *testing.T) {
	dsn := os.Getenv(envTestDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set", envTestDatabaseURL)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.DatabaseConfig{URL: dsn}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	migrationURL, err := cfg.MigrationURL()
	if err != nil {
		t.Fatalf("MigrationURL failed: %v", err)
	}
	if err := migrations.Up(migrationURL); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		t.Fatalf("database.New failed: %v", err)
	}
	t.Cleanup(func() { db.Connection().Close() })

	storetest.Run(t, func(t *testing.T) documents.Store {
		blobs, err := storage.New(&config.StorageConfig{BasePath: t.TempDir()}, logger)
		if err != nil {
			t.Fatalf("storage.New failed: %v", err)
		}

		s := postgres.New(db.Connection(), blobs, logger)
		if err := s.Clear(context.Background()); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		return s
	})
}
