package handlers

import (
	"context"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// Info builds a handler for the single-lookup informational intents.
// The service is keyed by intent, so stock prices, cricket scores,
// events, e-challan, government jobs and schemes, metro tickets and
// reminders all share one handler shape.
func Info(svc InfoService, intent string, kind channel.ResponseKind) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		entities := make(map[string]any, len(state.Entities)+3)
		for k, v := range state.Entities {
			entities[k] = v
		}
		entities["raw_text"] = state.RawText
		if state.Location != nil {
			entities["lat"] = state.Location.Lat
			entities["lon"] = state.Location.Lon
		}

		answer, err := svc.Lookup(ctx, intent, entities)
		if err != nil {
			return failTurn(intent+" lookup", err)
		}
		return turn.Update{ResponseText: answer, ResponseKind: kind}
	}
}
