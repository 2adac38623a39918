package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of the Store interface for testing.
type MockStore struct {
	mock.Mock
}

// Init is the mock implementation of the Init method.
func (m *MockStore) Init(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0) //nolint:wrapcheck
}

// Upsert is the mock implementation of the Upsert method.
func (m *MockStore) Upsert(ctx context.Context, movie Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0) //nolint:wrapcheck
}

// ScanAll is the mock implementation of the ScanAll method.
func (m *MockStore) ScanAll(ctx context.Context) ([]Movie, error) {
	args := m.Called(ctx)
	movies, _ := args.Get(0).([]Movie)
	return movies, args.Error(1) //nolint:wrapcheck
}

// Close is the mock implementation of the Close method.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0) //nolint:wrapcheck
}
