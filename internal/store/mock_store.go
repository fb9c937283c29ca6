// ABOUTME: In-memory mock implementation of the Store interface
// ABOUTME: Used by unit tests that don't need a real SQLite database

package store

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation for testing
type MockStore struct {
	mu     sync.RWMutex
	users  map[string]UserRecord
	events []AuditEvent

	// Error injection for failure-path tests
	SaveUserErr   error
	DeleteUserErr error
}

// NewMockStore creates an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{
		users: make(map[string]UserRecord),
	}
}

// GetUser retrieves a user record by chat identity
func (m *MockStore) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := record
	return &copied, nil
}

// SaveUser inserts or updates a user record
func (m *MockStore) SaveUser(ctx context.Context, record *UserRecord) error {
	if m.SaveUserErr != nil {
		return m.SaveUserErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[record.ID] = *record
	return nil
}

// DeleteUser removes a user record
func (m *MockStore) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserErr != nil {
		return m.DeleteUserErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// SaveAuditEvent records a provisioning action
func (m *MockStore) SaveAuditEvent(ctx context.Context, event *AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, *event)
	return nil
}

// ListAuditEvents returns the most recent audit events for a user, newest first
func (m *MockStore) ListAuditEvents(ctx context.Context, userID string, limit int) ([]*AuditEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []*AuditEvent
	for i := range m.events {
		if m.events[i].UserID == userID {
			copied := m.events[i]
			events = append(events, &copied)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Close is a no-op for the mock store
func (m *MockStore) Close() error {
	return nil
}
