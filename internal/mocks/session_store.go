package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/store"
)

// MockSessionStore implements store.SessionStore for testing.
type MockSessionStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, session *domain.Session) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	UpdateHashFn func(ctx context.Context, id uuid.UUID, hash string) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation
	Sessions map[uuid.UUID]*domain.Session
}

// NewMockSessionStore creates a new mock store with initialized defaults.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		Sessions: make(map[uuid.UUID]*domain.Session),
	}
}

// Create implements the SessionStore interface.
func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, session)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sessions[session.ID] = session
	return nil
}

// GetByID implements the SessionStore interface.
func (m *MockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.Sessions[id]
	if !exists {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

// UpdateHash implements the SessionStore interface.
func (m *MockSessionStore) UpdateHash(ctx context.Context, id uuid.UUID, hash string) error {
	if m.UpdateHashFn != nil {
		return m.UpdateHashFn(ctx, id, hash)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.Sessions[id]
	if !exists {
		return store.ErrSessionNotFound
	}
	session.Hash = hash
	return nil
}

// Delete implements the SessionStore interface.
func (m *MockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Sessions[id]; !exists {
		return store.ErrSessionNotFound
	}
	delete(m.Sessions, id)
	return nil
}

// WithTx implements the SessionStore interface. The mock has no real
// transactions, so it returns itself.
func (m *MockSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return m
}
