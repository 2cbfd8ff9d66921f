package handlers

import (
	"context"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// newsPageSize is how many headlines one turn returns. A "more"
// follow-up re-runs the cached query with the offset advanced by one
// page.
const newsPageSize = 5

// News returns a page of headlines. The next page offset is written
// back into the entities so the context cache carries it to a "more"
// follow-up.
func News(svc NewsService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		offset := entityInt(state, "result_offset")

		headlines, err := svc.Headlines(ctx, state.Entity("news_query"), offset)
		if err != nil {
			return failTurn("news lookup", err)
		}
		return turn.Update{
			ResponseText: headlines,
			ResponseKind: channel.ResponseText,
			Entities:     map[string]any{"result_offset": offset + newsPageSize},
		}
	}
}

// entityInt reads an integer entity, tolerating the float64 that JSON
// round-tripping through the context cache produces.
func entityInt(state *turn.State, name string) int {
	if state.Entities == nil {
		return 0
	}
	switch v := state.Entities[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
