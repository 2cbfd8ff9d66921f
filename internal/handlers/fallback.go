package handlers

import (
	"context"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

const fallbackText = `Sorry, I couldn't get that done right now. 🙏
Please try again in a bit, or type "help" to see everything I can do.`

// Fallback produces the fixed apology for a turn whose handler could not
// answer. It performs no external calls, so it cannot itself fail; the
// walk after fallback always terminates.
func Fallback() graph.HandlerFunc {
	log := logging.WithComponent("handler.fallback")
	return func(_ context.Context, state *turn.State) turn.Update {
		log.Info("turn fell back",
			"turn_id", state.TurnID,
			"intent", state.Intent,
			"cause", state.Err,
		)
		return turn.Update{ResponseText: fallbackText, ResponseKind: channel.ResponseText}
	}
}
