// Package store provides persistent storage for mailbot using SQLite.
//
// # Data Models
//
//   - UserRecord: chat identity to provisioned email mapping. The
//     conversation layer owns the lifecycle: created on successful
//     provisioning, deleted when the directory no longer confirms the
//     address (lazy reconciliation).
//   - AuditEvent: durable record of provisioning actions
//     (account_created, password_reset, record_pruned). Passwords are
//     never stored.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//
// The schema is created automatically on first open. No transactional
// guarantees beyond single-key atomicity are required or provided.
//
// # Error Handling
//
//   - ErrNotFound: requested entity does not exist
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore with t.TempDir()
// for integration tests against real SQLite.
package store
