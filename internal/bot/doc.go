// Package bot implements the conversation engine and message dispatcher.
//
// # Overview
//
// The bot walks team members through email-account lifecycle operations
// in multi-turn dialogues: create an account, reset a password, or show
// setup information. It is transport-agnostic: the Matrix bridge (or any
// other frontend) feeds it (identity, text, context) tuples and delivers
// the replies it returns.
//
// # Dispatch
//
// With no dialogue in flight, an inbound message is classified by keyword
// (Dispatcher). Greetings and info requests also match when the bot is
// mentioned in a shared room; account-changing intents only match in
// direct messages. An active session takes precedence: the pending
// question consumes the next message.
//
// # State Machine
//
// Create scenario:
//
//	AwaitingReady -> AwaitingFirstName -> AwaitingLastName
//	  -> AwaitingEmailConfirm -> terminal (provisioned)
//
// with two detours: AwaitingCollisionRetry when the proposed address is
// taken, and AwaitingRetryConfirm when the user rejects the proposal.
// Both loop back into name collection on "yes" and abandon otherwise.
//
// Reset scenario:
//
//	AwaitingResetConfirm -> terminal (password set)
//
// Every confirmation accepts three outcomes: affirmative, negative, or
// unrecognized. Unrecognized input re-asks the same question, bounded by
// a configurable retry cap after which the dialogue aborts gracefully. A
// decision point never silently proceeds on unrecognized input.
//
// # External Calls
//
// Directory existence checks, account creation, password resets, and
// record persistence all happen inline: the dialogue step that issued the
// call does not advance until it resolves. Provisioning errors are fatal
// for the turn - the user is pointed at a human contact and the dialogue
// terminates without retry. A persistence failure after a successful
// remote create is a known inconsistency window: the account exists
// remotely without a local record, and the next create attempt reconciles
// through the collision branch.
//
// # Sessions
//
// Dialogue state lives in an explicit per-identity session table with
// TTL-based expiry of abandoned conversations. Sessions are transient and
// do not survive a restart.
package bot
