// Package handlers contains the per-capability node handlers wired into
// the routing graph. Every handler follows the same contract: read what
// it needs from the turn state, call its service, and return a partial
// update. A handler that cannot produce a usable answer sets
// ShouldFallback instead of returning an error.
package handlers

import (
	"fmt"

	"github.com/d23ai/sahay-gateway/internal/turn"
)

// failTurn marks the turn for the fallback node, keeping the cause for
// logs only.
func failTurn(msg string, err error) turn.Update {
	return turn.Update{
		ShouldFallback: true,
		Err:            fmt.Sprintf("%s: %v", msg, err),
	}
}
