// ABOUTME: Matrix bridge for mailbot
// ABOUTME: Connects to the homeserver and feeds messages to the conversation engine

package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/2389/mailbot/internal/bot"
	"github.com/2389/mailbot/internal/config"
)

// networkTimeout is the timeout for Matrix API calls.
const networkTimeout = 10 * time.Second

// senderQueueSize bounds the per-sender inbound queue. A user typing
// faster than the dialogue can answer gets the overflow dropped.
const senderQueueSize = 16

// inbound is one message handed to a sender worker.
type inbound struct {
	roomID  id.RoomID
	text    string
	chatCtx bot.ChatContext
}

// Bridge connects Matrix to the conversation engine. Messages from the
// same sender are processed strictly in order; distinct senders proceed
// concurrently on their own worker goroutines.
type Bridge struct {
	cfg    *config.Config
	matrix *mautrix.Client
	engine *bot.Engine
	logger *slog.Logger

	// Per-sender ordered work queues
	mu      sync.Mutex
	workers map[id.UserID]chan inbound

	// Cached joined-member counts for DM detection
	roomMu    sync.Mutex
	roomSizes map[id.RoomID]int

	// ctx is the parent context for sender worker goroutines
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBridge creates a new Matrix bridge.
func NewBridge(cfg *config.Config, engine *bot.Engine, logger *slog.Logger) (*Bridge, error) {
	client, err := mautrix.NewClient(cfg.Matrix.Homeserver, id.UserID(cfg.Matrix.UserID), cfg.Matrix.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}

	return &Bridge{
		cfg:       cfg,
		matrix:    client,
		engine:    engine,
		logger:    logger,
		workers:   make(map[id.UserID]chan inbound),
		roomSizes: make(map[id.RoomID]int),
	}, nil
}

// Run starts the bridge and blocks until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Info("starting matrix bridge",
		"homeserver", b.cfg.Matrix.Homeserver,
		"user_id", b.cfg.Matrix.UserID,
	)

	b.ctx, b.cancel = context.WithCancel(ctx)
	defer b.cancel()

	syncer, ok := b.matrix.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", b.matrix.Syncer)
	}
	syncer.OnEventType(event.EventMessage, b.handleMessageEvent)
	syncer.OnEventType(event.StateMember, b.handleMemberEvent)

	b.logger.Info("connecting to matrix homeserver")

	syncErr := make(chan error, 1)
	go func() {
		syncErr <- b.matrix.SyncWithContext(b.ctx)
	}()

	b.logger.Info("matrix bridge running")

	select {
	case <-ctx.Done():
		b.logger.Info("shutting down matrix bridge")
		b.cancel()
		return nil
	case err := <-syncErr:
		return fmt.Errorf("matrix sync failed: %w", err)
	}
}

// handleMemberEvent invalidates the cached room size when membership changes.
func (b *Bridge) handleMemberEvent(ctx context.Context, evt *event.Event) {
	b.roomMu.Lock()
	delete(b.roomSizes, evt.RoomID)
	b.roomMu.Unlock()
}

// handleMessageEvent enqueues incoming Matrix messages for processing.
func (b *Bridge) handleMessageEvent(ctx context.Context, evt *event.Event) {
	// Ignore our own messages
	if evt.Sender == id.UserID(b.cfg.Matrix.UserID) {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}

	// Only handle text messages
	if content.MsgType != event.MsgText {
		return
	}

	if !b.isUserAllowed(evt.Sender) {
		b.logger.Debug("ignoring message from non-allowed user", "sender", evt.Sender.String())
		return
	}

	text := content.Body
	chatCtx, text, relevant := b.classifyContext(evt.RoomID, text)
	if !relevant {
		return
	}

	if strings.TrimSpace(text) == "" {
		return
	}

	b.logger.Info("received message",
		"room", evt.RoomID.String(),
		"sender", evt.Sender.String(),
		"content", truncate(text, 50),
	)

	b.enqueue(evt.Sender, inbound{roomID: evt.RoomID, text: text, chatCtx: chatCtx})
}

// classifyContext decides whether a message is a direct message, a
// mention of the bot in a shared room, or noise. Mentions have the bot's
// user ID stripped from the text before dispatch.
func (b *Bridge) classifyContext(roomID id.RoomID, text string) (bot.ChatContext, string, bool) {
	botID := b.cfg.Matrix.UserID

	if strings.Contains(text, botID) {
		stripped := strings.TrimSpace(strings.ReplaceAll(text, botID, ""))
		stripped = strings.TrimPrefix(stripped, ":")
		return bot.ContextMention, strings.TrimSpace(stripped), true
	}

	if b.roomSize(roomID) == 2 {
		return bot.ContextDirectMessage, text, true
	}

	// Unaddressed chatter in a shared room
	return bot.ContextMention, "", false
}

// roomSize returns the joined-member count for a room, cached until a
// membership event invalidates it.
func (b *Bridge) roomSize(roomID id.RoomID) int {
	b.roomMu.Lock()
	if size, ok := b.roomSizes[roomID]; ok {
		b.roomMu.Unlock()
		return size
	}
	b.roomMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()

	resp, err := b.matrix.JoinedMembers(ctx, roomID)
	if err != nil {
		b.logger.Warn("failed to fetch joined members", "room", roomID.String(), "error", err)
		return 0
	}

	size := len(resp.Joined)
	b.roomMu.Lock()
	b.roomSizes[roomID] = size
	b.roomMu.Unlock()
	return size
}

// isUserAllowed checks the sender against the allowed-users list.
func (b *Bridge) isUserAllowed(sender id.UserID) bool {
	if len(b.cfg.Matrix.AllowedUsers) == 0 {
		return true // Allow all if no filter
	}

	for _, allowed := range b.cfg.Matrix.AllowedUsers {
		if allowed == sender.String() {
			return true
		}
	}
	return false
}

// enqueue hands a message to the sender's worker, creating the worker on
// first contact. Per-sender ordering is what lets the engine process one
// question/answer pair at a time without locking.
func (b *Bridge) enqueue(sender id.UserID, msg inbound) {
	b.mu.Lock()
	queue, ok := b.workers[sender]
	if !ok {
		queue = make(chan inbound, senderQueueSize)
		b.workers[sender] = queue
		go b.senderWorker(sender, queue)
	}
	b.mu.Unlock()

	select {
	case queue <- msg:
	default:
		b.logger.Warn("sender queue full, dropping message", "sender", sender.String())
	}
}

// senderWorker processes one sender's messages strictly in order.
func (b *Bridge) senderWorker(sender id.UserID, queue <-chan inbound) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg := <-queue:
			replies := b.engine.HandleMessage(b.ctx, sender.String(), msg.text, msg.chatCtx)
			for _, reply := range replies {
				b.sendMessage(msg.roomID, reply)
			}
		}
	}
}

// sendMessage sends a markdown reply to a room, with an HTML formatted
// body rendered via goldmark.
func (b *Bridge) sendMessage(roomID id.RoomID, markdown string) {
	content := event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    markdown,
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &htmlBuf); err == nil {
		content.Format = event.FormatHTML
		content.FormattedBody = strings.TrimSpace(htmlBuf.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := b.matrix.SendMessageEvent(ctx, roomID, event.EventMessage, &content); err != nil {
		b.logger.Error("failed to send message", "room", roomID.String(), "error", err)
	}
}

// truncate shortens a string to the given max rune count, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
