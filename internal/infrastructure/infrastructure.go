// Package infrastructure assembles the core systems the service needs:
// lifecycle coordination, logging, the PDF codec and the document store
// selected by configuration together with whatever that backend depends on.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/database"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/lifecycle"
	"github.com/Bluenz7/pdfredactor/internal/storage"
	"github.com/Bluenz7/pdfredactor/internal/store/dynamo"
	"github.com/Bluenz7/pdfredactor/internal/store/memory"
	"github.com/Bluenz7/pdfredactor/internal/store/postgres"
	redisstore "github.com/Bluenz7/pdfredactor/internal/store/redis"
	"github.com/Bluenz7/pdfredactor/pkg/logging"
)

// Infrastructure holds the systems shared by every handler.
// Database and Storage are nil unless the postgres backend is selected.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Codec     codec.System
	Store     documents.Store
	Database  database.System
	Storage   storage.System

	closers []func() error
}

// New creates an Infrastructure from the application configuration. Remote
// store backends are contacted here so a bad address fails fast; database
// and storage systems are started separately by Start.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	logger := logging.New(&cfg.Logging)
	return NewWithLogger(ctx, cfg, logger)
}

// NewWithLogger is New with a caller-provided logger.
func NewWithLogger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	renderer := codec.NewMagickRenderer(cfg.Render.Magick(), logger)

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Codec:     codec.New(renderer, cfg.Render.Codec(), logger),
	}

	if err := infra.buildStore(ctx, cfg); err != nil {
		return nil, err
	}

	logger.Info("infrastructure initialized", "store", cfg.Store.Backend)
	return infra, nil
}

// Start starts backend systems and registers their shutdown with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}

	for _, closeFn := range i.closers {
		i.Lifecycle.OnShutdown(func() {
			<-i.Lifecycle.Context().Done()
			if err := closeFn(); err != nil {
				i.Logger.Error("store close failed", "error", err)
			}
		})
	}

	return nil
}

func (i *Infrastructure) buildStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		i.Store = memory.New()

	case config.BackendPostgres:
		db, err := database.New(&cfg.Database, i.Logger)
		if err != nil {
			return fmt.Errorf("database init failed: %w", err)
		}
		blobs, err := storage.New(&cfg.Storage, i.Logger)
		if err != nil {
			return fmt.Errorf("storage init failed: %w", err)
		}
		i.Database = db
		i.Storage = blobs
		i.Store = postgres.New(db.Connection(), blobs, i.Logger)

	case config.BackendRedis:
		client, err := redisstore.Open(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		i.closers = append(i.closers, client.Close)
		i.Store = redisstore.New(client, cfg.Redis.KeyPrefix, i.Logger)

	case config.BackendDynamo:
		client, err := dynamo.Open(ctx, &cfg.Dynamo)
		if err != nil {
			return fmt.Errorf("dynamodb init failed: %w", err)
		}
		i.Store = dynamo.New(client, cfg.Dynamo.Table, i.Logger)

	default:
		return fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}

	return nil
}
