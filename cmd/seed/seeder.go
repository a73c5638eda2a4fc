// Package main provides the seed command for populating the configured
// document store with sample or imported documents. Seeders run
// individually or together; a failed run removes what it created.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
)

// Seeder defines the interface for document seeders.
type Seeder interface {
	// Name returns the unique identifier for this seeder.
	Name() string

	// Description returns a human-readable description of what this seeder does.
	Description() string

	// Seed creates documents through env.Store and returns how many it created.
	Seed(ctx context.Context, env *Env) (int, error)
}

// Env carries the systems seeders build documents with.
type Env struct {
	Store  documents.Store
	Codec  codec.System
	Logger *slog.Logger
	Now    func() time.Time
}

var seeders = map[string]Seeder{}

// registerSeeder adds a seeder to the global registry.
// Seeders self-register via init() functions.
func registerSeeder(s Seeder) {
	seeders[s.Name()] = s
}

// getSeeder retrieves a seeder by name from the registry.
func getSeeder(name string) (Seeder, bool) {
	s, ok := seeders[name]
	return s, ok
}

// listSeeders returns all registered seeders sorted by name.
func listSeeders() []Seeder {
	result := make([]Seeder, 0, len(seeders))
	for _, s := range seeders {
		result = append(result, s)
	}
	slices.SortFunc(result, func(a, b Seeder) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return result
}

// runSeeders executes the named seeders in order. If any seeder fails,
// every document created during the run is deleted again.
func runSeeders(ctx context.Context, env *Env, names ...string) (int, error) {
	tracked := &trackingStore{Store: env.Store}
	scoped := *env
	scoped.Store = tracked

	total := 0
	for _, name := range names {
		seeder, ok := getSeeder(name)
		if !ok {
			tracked.rollback(ctx, env.Logger)
			return 0, fmt.Errorf("seeder not found: %s", name)
		}

		n, err := seeder.Seed(ctx, &scoped)
		if err != nil {
			tracked.rollback(ctx, env.Logger)
			return 0, fmt.Errorf("seed %s: %w", name, err)
		}
		total += n
	}
	return total, nil
}

// trackingStore records created ids so a failed run can be undone.
type trackingStore struct {
	documents.Store

	mu      sync.Mutex
	created []uuid.UUID
}

func (s *trackingStore) Create(ctx context.Context, doc documents.Document) error {
	if err := s.Store.Create(ctx, doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.created = append(s.created, doc.ID)
	s.mu.Unlock()
	return nil
}

func (s *trackingStore) rollback(ctx context.Context, logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.created {
		if err := s.Store.Delete(ctx, id); err != nil {
			logger.Warn("rollback delete failed", "id", id, "error", err)
		}
	}
	s.created = nil
}
