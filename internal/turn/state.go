package turn

import (
	"github.com/d23ai/sahay-gateway/internal/channel"
)

// State is the mutable record threaded through one turn's execution.
// It is created per inbound event and discarded when the turn completes.
type State struct {
	TurnID          string
	ConversationKey string
	Channel         string

	RawText     string
	MessageKind channel.Kind
	Location    *channel.Location
	MediaRef    string
	Language    string

	Intent           string
	IntentConfidence float64
	Entities         map[string]any

	ResponseText string
	ResponseKind channel.ResponseKind

	ShouldFallback bool
	Err            string
	ToolResult     any
}

// Update is a partial state update returned by a handler node.
// Zero-value fields leave the corresponding state field untouched,
// mirroring a dict-merge: a handler states only what it changed.
type Update struct {
	Intent         string
	Entities       map[string]any
	ResponseText   string
	ResponseKind   channel.ResponseKind
	ShouldFallback bool
	Err            string
	ToolResult     any
}

// Apply merges an update into the state.
func (s *State) Apply(u Update) {
	if u.Intent != "" {
		s.Intent = u.Intent
	}
	if u.Entities != nil {
		if s.Entities == nil {
			s.Entities = make(map[string]any, len(u.Entities))
		}
		for k, v := range u.Entities {
			s.Entities[k] = v
		}
	}
	if u.ResponseText != "" {
		s.ResponseText = u.ResponseText
	}
	if u.ResponseKind != "" {
		s.ResponseKind = u.ResponseKind
	}
	if u.ShouldFallback {
		s.ShouldFallback = true
	}
	if u.Err != "" {
		s.Err = u.Err
	}
	if u.ToolResult != nil {
		s.ToolResult = u.ToolResult
	}
}

// Entity returns a string entity, or "" when absent or not a string.
func (s *State) Entity(name string) string {
	if s.Entities == nil {
		return ""
	}
	if v, ok := s.Entities[name].(string); ok {
		return v
	}
	return ""
}

// Clone returns a copy of the state with its own entity map. Used when a
// nested sub-graph runs under a deadline and the original must stay
// untouched until the sub-graph finishes in time.
func (s *State) Clone() *State {
	c := *s
	if s.Entities != nil {
		c.Entities = make(map[string]any, len(s.Entities))
		for k, v := range s.Entities {
			c.Entities[k] = v
		}
	}
	return &c
}
