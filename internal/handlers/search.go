package handlers

import (
	"context"
	"strings"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/store"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// Pending-action kinds for location-dependent search flows. Event kinds
// may carry a type suffix ("__events_concert"); routing matches on the
// "__events" prefix.
const (
	PendingSearch = "__search__"
	PendingFood   = "__food__"
	PendingEvents = "__events__"
)

// Search answers nearby-places queries for one action kind. The food,
// events and general search capabilities are the same flow with a
// different pending tag and default query.
func Search(svc SearchService, pending store.PendingStore, actionKind, defaultQuery string) graph.HandlerFunc {
	log := logging.WithComponent("handler.search")
	return func(ctx context.Context, state *turn.State) turn.Update {
		query := state.Entity("search_query")

		if state.MessageKind == channel.KindLocation && state.Location != nil {
			pa, err := pending.Consume(ctx, state.ConversationKey)
			if err != nil {
				log.Warn("pending consume failed", "error", err)
			}
			if query == "" && pa != nil {
				query = pa.OriginalMessage
			}
			if strings.TrimSpace(query) == "" {
				query = defaultQuery
			}
			results, err := svc.SearchNear(ctx, query, state.Location.Lat, state.Location.Lon)
			if err != nil {
				return failTurn("search near location", err)
			}
			return turn.Update{ResponseText: results, ResponseKind: channel.ResponseText}
		}

		if query == "" {
			query = strings.TrimSpace(state.RawText)
		}
		location := state.Entity("location")
		if location == "" {
			if err := pending.Save(ctx, state.ConversationKey, actionKind, query); err != nil {
				log.Warn("pending save failed", "error", err)
			}
			return turn.Update{
				ResponseText: "Please share your location so I can find places near you. 📍",
				ResponseKind: channel.ResponseLocationRequest,
			}
		}

		results, err := svc.Search(ctx, query, location)
		if err != nil {
			return failTurn("search in "+location, err)
		}
		return turn.Update{ResponseText: results, ResponseKind: channel.ResponseText}
	}
}
