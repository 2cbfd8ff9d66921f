package store

import (
	"context"
	"time"
)

// ContextEntry is the per-conversation short-TTL memory of the last
// resolved intent. Losing it degrades a follow-up to a fresh query but
// never corrupts correctness.
type ContextEntry struct {
	ConversationKey string         `json:"conversation_key"`
	LastIntent      string         `json:"last_intent"`
	LastEntities    map[string]any `json:"last_entities,omitempty"`
	LastQuery       string         `json:"last_query,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// PendingAction marks an outstanding multi-step request, typically a
// handler waiting for the user to share a location. ActionKind is an
// opaque tag such as "__weather__" or "__events_concert".
type PendingAction struct {
	ConversationKey string    `json:"conversation_key"`
	ActionKind      string    `json:"action_kind"`
	OriginalMessage string    `json:"original_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ContextStore is the conversation context cache. Reads after TTL expiry
// behave as a miss, not an error.
type ContextStore interface {
	// Put upserts the entry for its conversation key and resets the TTL.
	Put(ctx context.Context, entry ContextEntry) error

	// Get returns the non-expired entry for the key, or nil on a miss.
	Get(ctx context.Context, conversationKey string) (*ContextEntry, error)
}

// PendingStore is the pending-action store. Peek is split from Consume so
// the pre-routing step can look at "is there a pending flow" without
// removing an entry the current event may not satisfy.
type PendingStore interface {
	// Save upserts the pending action for the key and resets the TTL.
	Save(ctx context.Context, conversationKey, actionKind, originalMessage string) error

	// Peek returns the non-expired pending action without removing it,
	// or nil when none exists.
	Peek(ctx context.Context, conversationKey string) (*PendingAction, error)

	// Consume removes and returns the non-expired pending action, or nil
	// when none exists. A consumed entry is gone until the next Save.
	Consume(ctx context.Context, conversationKey string) (*PendingAction, error)
}

// Sweeper is implemented by stores that hold entries in process memory
// and need a periodic sweep for bounded memory. Expiry itself is lazy on
// read; the sweep is not part of the correctness contract.
type Sweeper interface {
	Sweep() int
}
