// ABOUTME: Keyword-based intent classification for inbound messages
// ABOUTME: Pure routing table, scoped to message context (DM vs mention)

package bot

import "regexp"

// Intent is what an inbound message asks the bot to do.
type Intent int

const (
	IntentNone Intent = iota
	IntentGreeting
	IntentInfo
	IntentCreate
	IntentReset
)

// String returns a short name for logging.
func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentInfo:
		return "info"
	case IntentCreate:
		return "create"
	case IntentReset:
		return "reset"
	default:
		return "none"
	}
}

// ChatContext distinguishes how a message reached the bot.
type ChatContext int

const (
	// ContextDirectMessage is a one-on-one conversation with the bot.
	ContextDirectMessage ChatContext = iota
	// ContextMention is a message in a shared room addressing the bot.
	ContextMention
)

// rule maps a keyword pattern to an intent. Every rule matches in direct
// messages; canMention additionally allows matching on room mentions.
type rule struct {
	intent     Intent
	pattern    *regexp.Regexp
	canMention bool
}

// Dispatcher classifies inbound messages by keyword. Account-changing
// intents only match in direct messages; greetings and info also match
// when the bot is mentioned in a room.
type Dispatcher struct {
	rules []rule
}

// NewDispatcher builds the routing table. Rule order matters: the first
// matching rule wins, mirroring registration order.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		rules: []rule{
			{
				intent:     IntentGreeting,
				pattern:    regexp.MustCompile(`(?i)\b(hi|hallo|hello|hey|hoi|what|help)\b`),
				canMention: true,
			},
			{
				intent:     IntentInfo,
				pattern:    regexp.MustCompile(`(?i)\b(how|info|install|web)\b`),
				canMention: true,
			},
			{
				intent:  IntentCreate,
				pattern: regexp.MustCompile(`(?i)\b(create|add|new|neu)\b`),
			},
			{
				intent:  IntentReset,
				pattern: regexp.MustCompile(`(?i)\b(reset|password|change|forgot|forget)\b`),
			},
		},
	}
}

// Classify returns the intent of a message, or IntentNone if no keyword
// matches in the given context.
func (d *Dispatcher) Classify(text string, chatCtx ChatContext) Intent {
	for _, r := range d.rules {
		if chatCtx == ContextMention && !r.canMention {
			continue
		}
		if r.pattern.MatchString(text) {
			return r.intent
		}
	}
	return IntentNone
}
