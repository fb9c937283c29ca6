// ABOUTME: Store interface and data types for mailbot persistence
// ABOUTME: Defines UserRecord, AuditEvent and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// UserRecord maps a chat identity to its provisioned email address.
// A record exists iff the directory currently confirms the address;
// divergence is reconciled lazily on the next lookup.
type UserRecord struct {
	ID        string // chat user ID, unique key
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuditAction constants for audit event actions
const (
	AuditActionAccountCreated = "account_created"
	AuditActionPasswordReset  = "password_reset"
	AuditActionRecordPruned   = "record_pruned"
)

// AuditEvent records a provisioning action taken on behalf of a user.
// Passwords are never recorded.
type AuditEvent struct {
	ID        string
	UserID    string
	Action    string // "account_created", "password_reset", "record_pruned"
	Email     string
	CreatedAt time.Time
}

// Store defines the interface for user record and audit persistence
type Store interface {
	// User records
	GetUser(ctx context.Context, id string) (*UserRecord, error)
	SaveUser(ctx context.Context, record *UserRecord) error
	DeleteUser(ctx context.Context, id string) error

	// Audit trail
	SaveAuditEvent(ctx context.Context, event *AuditEvent) error
	ListAuditEvents(ctx context.Context, userID string, limit int) ([]*AuditEvent, error)

	// Close releases any resources held by the store
	Close() error
}
