package handlers

import (
	"context"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/store"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// PendingWeather tags a weather flow waiting for a shared location.
const PendingWeather = "__weather__"

// Weather answers current-conditions queries. With a city entity it
// answers directly; without one it asks for the user's location and
// parks the flow in the pending store until the location arrives.
func Weather(svc WeatherService, pending store.PendingStore) graph.HandlerFunc {
	log := logging.WithComponent("handler.weather")
	return func(ctx context.Context, state *turn.State) turn.Update {
		if state.MessageKind == channel.KindLocation && state.Location != nil {
			if _, err := pending.Consume(ctx, state.ConversationKey); err != nil {
				log.Warn("pending consume failed", "error", err)
			}
			report, err := svc.CurrentAt(ctx, state.Location.Lat, state.Location.Lon)
			if err != nil {
				return failTurn("weather by coordinates", err)
			}
			return turn.Update{ResponseText: report, ResponseKind: channel.ResponseText}
		}

		city := state.Entity("city")
		if city == "" {
			if err := pending.Save(ctx, state.ConversationKey, PendingWeather, state.RawText); err != nil {
				log.Warn("pending save failed", "error", err)
			}
			return turn.Update{
				ResponseText: "Sure! Please share your location and I'll check the weather there. 📍",
				ResponseKind: channel.ResponseLocationRequest,
			}
		}

		report, err := svc.Current(ctx, city)
		if err != nil {
			return failTurn("weather for "+city, err)
		}
		return turn.Update{ResponseText: report, ResponseKind: channel.ResponseText}
	}
}
