// ABOUTME: Tests for the SQLite store implementation
// ABOUTME: Covers user record CRUD, upserts, and the audit trail

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSQLiteStore_SaveAndGetUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	record := &UserRecord{
		ID:        "@alice:example.org",
		Email:     "alice.smith@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.SaveUser(ctx, record))

	got, err := s.GetUser(ctx, "@alice:example.org")
	require.NoError(t, err)
	assert.Equal(t, "@alice:example.org", got.ID)
	assert.Equal(t, "alice.smith@example.com", got.Email)
	assert.True(t, got.CreatedAt.Equal(now), "CreatedAt = %v, want %v", got.CreatedAt, now)
}

func TestSQLiteStore_GetUser_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetUser(context.Background(), "@nobody:example.org")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SaveUser_Upsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Second)
	record := &UserRecord{
		ID:        "@bob:example.org",
		Email:     "bob.jones@example.com",
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, s.SaveUser(ctx, record))

	// Re-save with a different email
	record.Email = "robert.jones@example.com"
	record.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, s.SaveUser(ctx, record))

	got, err := s.GetUser(ctx, "@bob:example.org")
	require.NoError(t, err)
	assert.Equal(t, "robert.jones@example.com", got.Email)
	assert.True(t, got.CreatedAt.Equal(created), "upsert must preserve created_at")
	assert.True(t, got.UpdatedAt.Equal(created.Add(time.Hour)))
}

func TestSQLiteStore_DeleteUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.SaveUser(ctx, &UserRecord{
		ID: "@carol:example.org", Email: "carol@example.com", CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, s.DeleteUser(ctx, "@carol:example.org"))

	_, err := s.GetUser(ctx, "@carol:example.org")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DeleteUser_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.DeleteUser(context.Background(), "@nobody:example.org")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_AuditEvents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	events := []*AuditEvent{
		{ID: "evt-1", UserID: "@alice:example.org", Action: AuditActionAccountCreated,
			Email: "alice.smith@example.com", CreatedAt: base},
		{ID: "evt-2", UserID: "@alice:example.org", Action: AuditActionPasswordReset,
			Email: "alice.smith@example.com", CreatedAt: base.Add(time.Minute)},
		{ID: "evt-3", UserID: "@bob:example.org", Action: AuditActionAccountCreated,
			Email: "bob.jones@example.com", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		require.NoError(t, s.SaveAuditEvent(ctx, e))
	}

	got, err := s.ListAuditEvents(ctx, "@alice:example.org", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first
	assert.Equal(t, "evt-2", got[0].ID)
	assert.Equal(t, AuditActionPasswordReset, got[0].Action)
	assert.Equal(t, "evt-1", got[1].ID)
}

func TestSQLiteStore_AuditEvents_Limit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveAuditEvent(ctx, &AuditEvent{
			ID:        uuidLike(i),
			UserID:    "@dave:example.org",
			Action:    AuditActionPasswordReset,
			Email:     "dave@example.com",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.ListAuditEvents(ctx, "@dave:example.org", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSQLiteStore_AuditEvents_RejectsUnknownAction(t *testing.T) {
	s := setupTestStore(t)

	err := s.SaveAuditEvent(context.Background(), &AuditEvent{
		ID: "evt-x", UserID: "@eve:example.org", Action: "rm_rf",
		Email: "eve@example.com", CreatedAt: time.Now(),
	})
	assert.Error(t, err)
}

func uuidLike(i int) string {
	return string(rune('a'+i)) + "0000000-0000-0000-0000-000000000000"
}
