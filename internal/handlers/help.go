package handlers

import (
	"context"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

const helpText = `Namaste! Here is what I can do:

🌦 Weather - "weather in Delhi" or just share your location
📰 News - "latest news" or "sports news"
🚆 Trains - send a 10-digit PNR, "train 12301 status", or "train from Mumbai to Pune"
🍲 Food & places - "restaurants near me", "order biryani"
📈 Stocks - "Reliance share price"
🏏 Cricket - "live score"
🏛 Government - "sarkari naukri", "government schemes", "e-challan"
🔮 Astrology - "horoscope for Leo", "tarot reading", ask our astrologer anything

You can write in English, Hindi or your own language. Just type your question!`

// Help replies with the capability overview. No service call, never
// falls back.
func Help() graph.HandlerFunc {
	return func(_ context.Context, _ *turn.State) turn.Update {
		return turn.Update{ResponseText: helpText, ResponseKind: channel.ResponseText}
	}
}
