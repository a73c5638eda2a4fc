// Package redis implements documents.Store on redis. Each document is a JSON
// record under its own key; a set indexes the stored ids.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type store struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// Open connects to redis and verifies the connection.
func Open(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// New creates a redis-backed store with keys under prefix.
func New(client redis.UniversalClient, prefix string, logger *slog.Logger) documents.Store {
	return &store{
		client: client,
		prefix: prefix,
		logger: logger.With("system", "store", "backend", "redis"),
	}
}

func (s *store) Create(ctx context.Context, doc documents.Document) error {
	payload, err := encode(doc)
	if err != nil {
		return err
	}

	var created *redis.BoolCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, s.key(doc.ID), payload, 0)
		pipe.SAdd(ctx, s.indexKey(), doc.ID.String())
		return nil
	})
	if err != nil {
		return persistence("create", doc.ID, err)
	}
	if !created.Val() {
		return fmt.Errorf("%w: %s", documents.ErrDuplicate, doc.ID)
	}

	s.logger.Info("document created", "id", doc.ID, "name", doc.Name)
	return nil
}

func (s *store) Update(ctx context.Context, doc documents.Document) error {
	payload, err := encode(doc)
	if err != nil {
		return err
	}

	err = s.client.SetArgs(ctx, s.key(doc.ID), payload, redis.SetArgs{Mode: "XX"}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", documents.ErrNotFound, doc.ID)
	}
	if err != nil {
		return persistence("update", doc.ID, err)
	}

	s.logger.Info("document updated", "id", doc.ID)
	return nil
}

func (s *store) Fetch(ctx context.Context, id uuid.UUID) (documents.Document, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return documents.Document{}, fmt.Errorf("%w: %s", documents.ErrNotFound, id)
	}
	if err != nil {
		return documents.Document{}, persistence("fetch", id, err)
	}

	rec, err := decode(payload)
	if err != nil {
		return documents.Document{}, err
	}
	return rec.Document()
}

func (s *store) List(ctx context.Context) ([]documents.Document, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list index: %w", documents.ErrPersistence, err)
	}
	if len(ids) == 0 {
		return []documents.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":document:" + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", documents.ErrPersistence, err)
	}

	records := make([]documents.Record, 0, len(values))
	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		rec, err := decode([]byte(str))
		if err != nil {
			s.logger.Warn("skipping undecodable document record", "id", ids[i], "error", err)
			continue
		}
		records = append(records, rec)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			s.logger.Warn("stale index entries not removed", "count", len(stale), "error", err)
		}
	}

	return documents.MapRecords(records, s.logger), nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id.String())
		return nil
	})
	if err != nil {
		return persistence("delete", id, err)
	}
	if deleted.Val() == 0 {
		return fmt.Errorf("%w: %s", documents.ErrNotFound, id)
	}

	s.logger.Info("document deleted", "id", id)
	return nil
}

func (s *store) Clear(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("%w: list index: %w", documents.ErrPersistence, err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.prefix+":document:"+id)
	}
	keys = append(keys, s.indexKey())

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: clear documents: %w", documents.ErrPersistence, err)
	}

	s.logger.Info("documents cleared", "count", len(ids))
	return nil
}

func (s *store) key(id uuid.UUID) string {
	return s.prefix + ":document:" + id.String()
}

func (s *store) indexKey() string {
	return s.prefix + ":documents"
}

func encode(doc documents.Document) ([]byte, error) {
	payload, err := json.Marshal(documents.NewRecord(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", documents.ErrPersistence, doc.ID, err)
	}
	return payload, nil
}

func decode(payload []byte) (documents.Record, error) {
	var rec documents.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return rec, fmt.Errorf("%w: %w", documents.ErrMapping, err)
	}
	return rec, nil
}

func persistence(op string, id uuid.UUID, err error) error {
	return fmt.Errorf("%w: %s %s: %w", documents.ErrPersistence, op, id, err)
}
