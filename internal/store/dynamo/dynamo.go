// Package dynamo implements documents.Store on a DynamoDB table keyed by the
// string attribute "id". Items are limited to 400KB by DynamoDB, so large
// documents belong on another backend.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const (
	batchSize    = 25
	batchRetries = 3
	batchBackoff = 50 * time.Millisecond
)

type store struct {
	client Client
	table  string
	logger *slog.Logger
}

// New creates a DynamoDB-backed store on table.
func New(client Client, table string, logger *slog.Logger) documents.Store {
	return &store{
		client: client,
		table:  table,
		logger: logger.With("system", "store", "backend", "dynamodb"),
	}
}

func (s *store) Create(ctx context.Context, doc documents.Document) error {
	if err := s.put(ctx, doc, "attribute_not_exists(id)"); err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %s", documents.ErrDuplicate, doc.ID)
		}
		return persistence("create", doc.ID, err)
	}

	s.logger.Info("document created", "id", doc.ID, "name", doc.Name)
	return nil
}

func (s *store) Update(ctx context.Context, doc documents.Document) error {
	if err := s.put(ctx, doc, "attribute_exists(id)"); err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %s", documents.ErrNotFound, doc.ID)
		}
		return persistence("update", doc.ID, err)
	}

	s.logger.Info("document updated", "id", doc.ID)
	return nil
}

func (s *store) Fetch(ctx context.Context, id uuid.UUID) (documents.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return documents.Document{}, persistence("fetch", id, err)
	}
	if out.Item == nil {
		return documents.Document{}, fmt.Errorf("%w: %s", documents.ErrNotFound, id)
	}

	rec, err := decode(out.Item)
	if err != nil {
		return documents.Document{}, err
	}
	return rec.Document()
}

func (s *store) List(ctx context.Context) ([]documents.Document, error) {
	var records []documents.Record

	pages := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(true),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", documents.ErrPersistence, s.table, err)
		}
		for _, av := range page.Items {
			rec, err := decode(av)
			if err != nil {
				s.logger.Warn("skipping undecodable document item", "error", err)
				continue
			}
			records = append(records, rec)
		}
	}

	return documents.MapRecords(records, s.logger), nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %s", documents.ErrNotFound, id)
		}
		return persistence("delete", id, err)
	}

	s.logger.Info("document deleted", "id", id)
	return nil
}

func (s *store) Clear(ctx context.Context) error {
	var keys []map[string]types.AttributeValue

	pages := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		ProjectionExpression: aws.String(keyAttribute),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("%w: scan %s: %w", documents.ErrPersistence, s.table, err)
		}
		for _, av := range page.Items {
			if k, ok := av[keyAttribute]; ok {
				keys = append(keys, map[string]types.AttributeValue{keyAttribute: k})
			}
		}
	}

	for start := 0; start < len(keys); start += batchSize {
		end := min(start+batchSize, len(keys))
		if err := s.deleteBatch(ctx, keys[start:end]); err != nil {
			return fmt.Errorf("%w: clear %s: %w", documents.ErrPersistence, s.table, err)
		}
	}

	s.logger.Info("documents cleared", "count", len(keys))
	return nil
}

func (s *store) put(ctx context.Context, doc documents.Document, condition string) error {
	av, err := attributevalue.MarshalMap(toItem(doc))
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String(condition),
	})
	return err
}

func (s *store) deleteBatch(ctx context.Context, keys []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, len(keys))
	for i, k := range keys {
		requests[i] = types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: k}}
	}

	for attempt := 0; len(requests) > 0; attempt++ {
		if attempt == batchRetries {
			return fmt.Errorf("%d deletes unprocessed after %d attempts", len(requests), batchRetries)
		}
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return err
			}
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: requests},
		})
		if err != nil {
			return err
		}
		requests = out.UnprocessedItems[s.table]
	}
	return nil
}

func key(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttribute: &types.AttributeValueMemberS{Value: id.String()},
	}
}

func decode(av map[string]types.AttributeValue) (documents.Record, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return documents.Record{}, fmt.Errorf("%w: %w", documents.ErrMapping, err)
	}
	return it.record()
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// backoff waits batchBackoff doubled per prior retry, or until ctx is done.
func backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(batchBackoff << (attempt - 1))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func persistence(op string, id uuid.UUID, err error) error {
	return fmt.Errorf("%w: %s %s: %w", documents.ErrPersistence, op, id, err)
}
