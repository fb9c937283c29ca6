// ABOUTME: Conversation engine - the dialogue state machine for account lifecycle
// ABOUTME: Each transition is a function of (current state, input) issuing side effects inline

package bot

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/2389/mailbot/internal/store"
)

// Utterance patterns for yes/no branching. Anything that matches neither
// is "unrecognized" and repeats the question rather than defaulting to an
// action with side effects.
var (
	yesRe = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|yup|sure|ok|okay|y)\b`)
	noRe  = regexp.MustCompile(`(?i)^\s*(no|nope|nah|n)\b`)
)

// Directory is the engine's view of the mail-admin API.
type Directory interface {
	Exists(ctx context.Context, email string) (bool, error)
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SetPassword(ctx context.Context, email, password string) (string, error)
}

// Config carries the engine's tunables and domain settings.
type Config struct {
	// Domain is the admin/webmail host (e.g. box.example.com)
	Domain string
	// EmailDomain is the domain new addresses are created under
	EmailDomain string
	// AdminContact is the human to point users at when things go wrong
	AdminContact string

	MaxPromptRetries int
	PasswordLength   int
	SessionTTL       time.Duration
}

// Engine drives multi-turn dialogues. One session per chat identity at a
// time; the caller must deliver a user's messages sequentially, while
// distinct identities may be handled concurrently.
type Engine struct {
	store      store.Store
	directory  Directory
	dispatcher *Dispatcher
	sessions   *SessionRegistry
	msgs       catalog
	cfg        Config
	logger     *slog.Logger
}

// NewEngine creates a conversation engine.
func NewEngine(st store.Store, dir Directory, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPromptRetries <= 0 {
		cfg.MaxPromptRetries = 5
	}
	if cfg.PasswordLength <= 0 {
		cfg.PasswordLength = 12
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &Engine{
		store:      st,
		directory:  dir,
		dispatcher: NewDispatcher(),
		sessions:   NewSessionRegistry(cfg.SessionTTL),
		msgs: catalog{
			domain:       cfg.Domain,
			emailDomain:  cfg.EmailDomain,
			adminContact: cfg.AdminContact,
		},
		cfg:    cfg,
		logger: logger.With("component", "engine"),
	}
}

// Close stops the session registry's background cleanup.
func (e *Engine) Close() {
	e.sessions.Close()
}

// ActiveSessions reports the number of in-flight dialogues.
func (e *Engine) ActiveSessions() int {
	return e.sessions.Len()
}

// HandleMessage processes one inbound message from a chat identity and
// returns the replies to deliver. A pending question consumes the message
// before keyword routing applies.
func (e *Engine) HandleMessage(ctx context.Context, userID, text string, chatCtx ChatContext) []string {
	if sess := e.sessions.Get(userID); sess != nil {
		return e.advance(ctx, sess, text)
	}

	intent := e.dispatcher.Classify(text, chatCtx)
	e.logger.Debug("classified message", "user", userID, "intent", intent.String())

	switch intent {
	case IntentGreeting:
		return e.msgs.greeting()
	case IntentInfo:
		return e.msgs.info()
	case IntentCreate:
		return e.startCreate(ctx, userID)
	case IntentReset:
		return e.startReset(ctx, userID)
	default:
		return nil
	}
}

// startCreate is the create-scenario entry point. An identity that
// already has a confirmed address short-circuits without entering the
// state machine.
func (e *Engine) startCreate(ctx context.Context, userID string) []string {
	email, err := e.lookupEmail(ctx, userID)
	if err != nil {
		e.logger.Error("entry lookup failed", "user", userID, "error", err)
		return e.msgs.provisioningFailed()
	}

	if email != "" {
		return e.msgs.alreadyHaveAccount(email)
	}

	e.sessions.Put(&Session{UserID: userID, State: StateAwaitingReady})
	e.logger.Info("create dialogue started", "user", userID)
	return e.msgs.createIntro()
}

// startReset is the reset-scenario entry point. Without a confirmed
// address there is nothing to reset.
func (e *Engine) startReset(ctx context.Context, userID string) []string {
	email, err := e.lookupEmail(ctx, userID)
	if err != nil {
		e.logger.Error("entry lookup failed", "user", userID, "error", err)
		return e.msgs.provisioningFailed()
	}

	if email == "" {
		return e.msgs.noAccountYet()
	}

	e.sessions.Put(&Session{UserID: userID, State: StateAwaitingResetConfirm, Email: email})
	e.logger.Info("reset dialogue started", "user", userID)
	return e.msgs.resetIntro(email)
}

// advance feeds one answer into an in-flight dialogue.
func (e *Engine) advance(ctx context.Context, sess *Session, text string) []string {
	switch sess.State {
	case StateAwaitingReady:
		switch {
		case yesRe.MatchString(text):
			return e.enterNameCollection(sess, e.msgs.nameFormat())
		case noRe.MatchString(text):
			e.end(sess)
			return e.msgs.createDeclined()
		default:
			return e.repeat(sess, "Are you ready?")
		}

	case StateAwaitingFirstName:
		sess.FirstName = normalizeName(text)
		sess.State = StateAwaitingLastName
		sess.Retries = 0
		return e.msgs.askLastName()

	case StateAwaitingLastName:
		sess.LastName = normalizeName(text)
		sess.Candidate = candidateEmail(sess.FirstName, sess.LastName, e.cfg.EmailDomain)
		return e.checkCandidate(ctx, sess)

	case StateAwaitingCollisionRetry:
		if yesRe.MatchString(text) {
			return e.enterNameCollection(sess, e.msgs.nameFormatRetry())
		}
		e.end(sess)
		return e.msgs.abandoned()

	case StateAwaitingEmailConfirm:
		if yesRe.MatchString(text) {
			return e.provision(ctx, sess)
		}
		sess.State = StateAwaitingRetryConfirm
		sess.Retries = 0
		return e.msgs.retryOrAbandon()

	case StateAwaitingRetryConfirm:
		if yesRe.MatchString(text) {
			return e.enterNameCollection(sess, e.msgs.nameFormatRetry())
		}
		e.end(sess)
		return e.msgs.abandoned()

	case StateAwaitingResetConfirm:
		switch {
		case yesRe.MatchString(text):
			return e.reset(ctx, sess)
		case noRe.MatchString(text):
			e.end(sess)
			return e.msgs.resetDeclined()
		default:
			return e.repeat(sess, "Are you sure about this?")
		}

	default:
		e.logger.Error("session in unknown state", "user", sess.UserID, "state", int(sess.State))
		e.end(sess)
		return nil
	}
}

// enterNameCollection (re)starts name collection from scratch.
func (e *Engine) enterNameCollection(sess *Session, intro []string) []string {
	sess.State = StateAwaitingFirstName
	sess.FirstName = ""
	sess.LastName = ""
	sess.Candidate = ""
	sess.Retries = 0
	return intro
}

// checkCandidate runs the collision check on a freshly derived address.
func (e *Engine) checkCandidate(ctx context.Context, sess *Session) []string {
	exists, err := e.directory.Exists(ctx, sess.Candidate)
	if err != nil {
		e.logger.Error("collision check failed", "user", sess.UserID, "email", sess.Candidate, "error", err)
		e.end(sess)
		return e.msgs.provisioningFailed()
	}

	if exists {
		sess.State = StateAwaitingCollisionRetry
		sess.Retries = 0
		return e.msgs.addressTaken(sess.Candidate)
	}

	sess.State = StateAwaitingEmailConfirm
	sess.Retries = 0
	return e.msgs.confirmAddress(sess.Candidate)
}

// provision creates the account after final confirmation. Errors here are
// fatal for the turn: report, point at a human, terminate. A persistence
// failure after a successful remote create leaves the account live but
// unrecorded; the next lookup reconciles via the collision branch.
func (e *Engine) provision(ctx context.Context, sess *Session) []string {
	defer e.end(sess)

	password, err := GeneratePassword(e.cfg.PasswordLength)
	if err != nil {
		e.logger.Error("password generation failed", "user", sess.UserID, "error", err)
		return e.msgs.provisioningFailed()
	}

	serverMsg, err := e.directory.CreateAccount(ctx, sess.Candidate, password)
	if err != nil {
		e.logger.Error("account creation failed", "user", sess.UserID, "email", sess.Candidate, "error", err)
		return e.msgs.provisioningFailed()
	}

	now := time.Now()
	record := &store.UserRecord{
		ID:        sess.UserID,
		Email:     sess.Candidate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.SaveUser(ctx, record); err != nil {
		e.logger.Error("saving user record failed after remote create",
			"user", sess.UserID, "email", sess.Candidate, "error", err)
		return e.msgs.storageFailed()
	}

	e.audit(ctx, sess.UserID, store.AuditActionAccountCreated, sess.Candidate)
	e.logger.Info("account provisioned", "user", sess.UserID, "email", sess.Candidate)
	return e.msgs.accountCreated(serverMsg, sess.Candidate, password)
}

// reset sets a new password for the address on record.
func (e *Engine) reset(ctx context.Context, sess *Session) []string {
	defer e.end(sess)

	password, err := GeneratePassword(e.cfg.PasswordLength)
	if err != nil {
		e.logger.Error("password generation failed", "user", sess.UserID, "error", err)
		return e.msgs.provisioningFailed()
	}

	serverMsg, err := e.directory.SetPassword(ctx, sess.Email, password)
	if err != nil {
		e.logger.Error("password reset failed", "user", sess.UserID, "email", sess.Email, "error", err)
		return e.msgs.provisioningFailed()
	}

	e.audit(ctx, sess.UserID, store.AuditActionPasswordReset, sess.Email)
	e.logger.Info("password reset", "user", sess.UserID, "email", sess.Email)
	return e.msgs.passwordReset(serverMsg, password)
}

// repeat re-asks the current question on unrecognized input, bounded by
// the configured retry cap so a dialogue can't loop forever.
func (e *Engine) repeat(sess *Session, question string) []string {
	sess.Retries++
	if sess.Retries > e.cfg.MaxPromptRetries {
		e.logger.Info("dialogue aborted after repeated unrecognized input",
			"user", sess.UserID, "state", sess.State.String())
		e.end(sess)
		return e.msgs.givingUp()
	}
	return e.msgs.didNotGetThat(question)
}

// end terminates a dialogue.
func (e *Engine) end(sess *Session) {
	e.sessions.Delete(sess.UserID)
}

// lookupEmail maps a chat identity to its confirmed address. A stored
// record the directory no longer confirms is deleted (self-healing
// against external drift) and the identity is treated as having none.
func (e *Engine) lookupEmail(ctx context.Context, userID string) (string, error) {
	record, err := e.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	exists, err := e.directory.Exists(ctx, record.Email)
	if err != nil {
		return "", err
	}
	if exists {
		return record.Email, nil
	}

	if err := e.store.DeleteUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	e.audit(ctx, userID, store.AuditActionRecordPruned, record.Email)
	e.logger.Info("pruned stale user record", "user", userID, "email", record.Email)
	return "", nil
}

// audit records a provisioning action. Best effort: an audit failure never
// fails the dialogue.
func (e *Engine) audit(ctx context.Context, userID, action, email string) {
	event := &store.AuditEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := e.store.SaveAuditEvent(ctx, event); err != nil {
		e.logger.Error("failed to save audit event", "user", userID, "action", action, "error", err)
	}
}
