package mocks

import (
	"context"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, doc documents.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStore) Update(ctx context.Context, doc documents.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStore) Fetch(ctx context.Context, id uuid.UUID) (documents.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(documents.Document), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]documents.Document, error) {
	args := m.Called(ctx)
	return args.Get(0).([]documents.Document), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
