// Package directory wraps the Mail-in-a-Box admin API.
//
// # Overview
//
// The directory is the authoritative view of which addresses exist. The
// bot never caches it: existence is checked live at every decision point
// that depends on it (entry lookup, collision check, stale-record
// reconciliation).
//
// # Operations
//
//   - Exists(ctx, email): GET /admin/mail/users?format=json, scoped to the
//     domain part of the address, exact match.
//   - CreateAccount(ctx, email, password): POST /admin/mail/users/add.
//   - SetPassword(ctx, email, password): POST /admin/mail/users/password.
//
// All calls carry HTTP basic credentials and a bounded per-request
// timeout. Mutation endpoints return the server's acknowledgment text,
// which the bot shows to the user verbatim.
//
// # Error Handling
//
// There is no retry or backoff. Any transport, status, or parse error is
// returned to the conversation layer, which treats it as fatal for the
// in-flight turn. Exists never maps a failure to "does not exist".
package directory
