package dynamo_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/store/dynamo"
	"github.com/Bluenz7/pdfredactor/internal/store/storetest"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const table = "documents"

// fakeClient is an in-memory table keyed by the "id" string attribute. It
// understands the attribute_exists/attribute_not_exists conditions and pages
// scans pageSize items at a time.
type fakeClient struct {
	mu          sync.Mutex
	items       map[string]map[string]types.AttributeValue
	pageSize    int
	fail        error
	unprocessed int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		items:    make(map[string]map[string]types.AttributeValue),
		pageSize: 2,
	}
}

func idOf(av map[string]types.AttributeValue) string {
	if s, ok := av["id"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func cloneItem(av map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(av))
	for k, v := range av {
		if b, ok := v.(*types.AttributeValueMemberB); ok {
			out[k] = &types.AttributeValueMemberB{Value: slices.Clone(b.Value)}
			continue
		}
		out[k] = v
	}
	return out
}

func (f *fakeClient) check(condition *string, exists bool) error {
	if condition == nil {
		return nil
	}
	switch aws.ToString(condition) {
	case "attribute_not_exists(id)":
		if exists {
			return &types.ConditionalCheckFailedException{Message: aws.String("exists")}
		}
	case "attribute_exists(id)":
		if !exists {
			return &types.ConditionalCheckFailedException{Message: aws.String("missing")}
		}
	}
	return nil
}

func (f *fakeClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}

	av, ok := f.items[idOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(av)}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}

	id := idOf(in.Item)
	_, exists := f.items[id]
	if err := f.check(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	f.items[id] = cloneItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}

	id := idOf(in.Key)
	_, exists := f.items[id]
	if err := f.check(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	delete(f.items, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}

	ids := make([]string, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := idOf(in.ExclusiveStartKey)
		start, _ = slices.BinarySearch(ids, after)
		if start < len(ids) && ids[start] == after {
			start++
		}
	}
	end := min(start+f.pageSize, len(ids))

	out := &dynamodb.ScanOutput{}
	for _, id := range ids[start:end] {
		av := cloneItem(f.items[id])
		if aws.ToString(in.ProjectionExpression) == "id" {
			av = map[string]types.AttributeValue{"id": av["id"]}
		}
		out.Items = append(out.Items, av)
	}
	if end < len(ids) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: ids[end-1]},
		}
	}
	return out, nil
}

func (f *fakeClient) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}

	out := &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for tbl, requests := range in.RequestItems {
		for _, req := range requests {
			if f.unprocessed > 0 {
				f.unprocessed--
				out.UnprocessedItems[tbl] = append(out.UnprocessedItems[tbl], req)
				continue
			}
			if req.DeleteRequest != nil {
				delete(f.items, idOf(req.DeleteRequest.Key))
			}
		}
	}
	return out, nil
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) documents.Store {
		return dynamo.New(newFakeClient(), table, logger())
	})
}

func TestStore_ListAcrossPages(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	s := dynamo.New(client, table, logger())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		if err := s.Create(ctx, storetest.Doc("doc", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 5 {
		t.Errorf("List returned %d docs, want 5", len(docs))
	}
}

func TestStore_MalformedItems(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	s := dynamo.New(client, table, logger())

	good := storetest.Doc("good", time.Now())
	if err := s.Create(ctx, good); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	noName := uuid.New()
	badTime := uuid.New()
	client.items[noName.String()] = map[string]types.AttributeValue{
		"id":        &types.AttributeValueMemberS{Value: noName.String()},
		"file_type": &types.AttributeValueMemberS{Value: "pdf"},
		"data":      &types.AttributeValueMemberB{Value: []byte("%PDF-")},
		"timestamp": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}
	client.items[badTime.String()] = map[string]types.AttributeValue{
		"id":        &types.AttributeValueMemberS{Value: badTime.String()},
		"name":      &types.AttributeValueMemberS{Value: "bad"},
		"file_type": &types.AttributeValueMemberS{Value: "pdf"},
		"data":      &types.AttributeValueMemberB{Value: []byte("%PDF-")},
		"timestamp": &types.AttributeValueMemberS{Value: "yesterday"},
	}
	client.items["not-a-uuid"] = map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "not-a-uuid"},
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != good.ID {
		t.Errorf("List = %d docs, want only the well-formed one", len(docs))
	}

	for _, id := range []uuid.UUID{noName, badTime} {
		if _, err := s.Fetch(ctx, id); !errors.Is(err, documents.ErrMapping) {
			t.Errorf("Fetch(%s) error = %v, want ErrMapping", id, err)
		}
	}
}

func TestStore_BackendFailure(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	client.fail = errors.New("throttled")
	s := dynamo.New(client, table, logger())
	doc := storetest.Doc("alpha", time.Now())

	ops := map[string]func() error{
		"create": func() error { return s.Create(ctx, doc) },
		"update": func() error { return s.Update(ctx, doc) },
		"fetch": func() error {
			_, err := s.Fetch(ctx, doc.ID)
			return err
		},
		"list": func() error {
			_, err := s.List(ctx)
			return err
		},
		"delete": func() error { return s.Delete(ctx, doc.ID) },
		"clear":  func() error { return s.Clear(ctx) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, documents.ErrPersistence) {
				t.Errorf("error = %v, want ErrPersistence", err)
			}
		})
	}
}

func TestStore_ClearRetriesUnprocessed(t *testing.T) {
	tests := []struct {
		name        string
		unprocessed int
		wantErr     bool
	}{
		{"retried until processed", 2, false},
		{"gives up after retries", 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client := newFakeClient()
			s := dynamo.New(client, table, logger())

			for range 3 {
				if err := s.Create(ctx, storetest.Doc("doc", time.Now())); err != nil {
					t.Fatalf("Create failed: %v", err)
				}
			}
			client.unprocessed = tt.unprocessed

			err := s.Clear(ctx)
			if tt.wantErr {
				if !errors.Is(err, documents.ErrPersistence) {
					t.Errorf("Clear error = %v, want ErrPersistence", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			if len(client.items) != 0 {
				t.Errorf("%d items remain after Clear", len(client.items))
			}
		})
	}
}

func TestStore_ClearStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newFakeClient()
	s := dynamo.New(client, table, logger())

	if err := s.Create(ctx, storetest.Doc("doc", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	client.unprocessed = 1000
	cancel()

	start := time.Now()
	err := s.Clear(ctx)
	if !errors.Is(err, context.Canceled) || !errors.Is(err, documents.ErrPersistence) {
		t.Errorf("Clear error = %v, want ErrPersistence wrapping context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Clear took %v after cancel", elapsed)
	}
	if len(client.items) != 1 {
		t.Errorf("%d items remain, want 1", len(client.items))
	}
}
