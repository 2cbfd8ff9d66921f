package handlers

import (
	"context"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// AstrologyGraph builds the nested graph for the astrology domain. It
// routes internally on the resolved intent; anything astrological the
// router cannot place goes to the open-ended astrologer node.
func AstrologyGraph(svc AstroService) (*graph.Graph, error) {
	return graph.New("astrology").
		AddNode("astro_router", nil).
		AddNode(classify.IntentHoroscope, Horoscope(svc)).
		AddNode(classify.IntentBirthChart, BirthChart(svc)).
		AddNode(classify.IntentTarotReading, Tarot(svc)).
		AddNode(classify.IntentAskAstrologer, AskAstrologer(svc)).
		AddNode(classify.IntentNumerology, Numerology(svc)).
		SetEntry("astro_router").
		AddConditionalEdge("astro_router", astroEdge,
			classify.IntentHoroscope, classify.IntentBirthChart,
			classify.IntentTarotReading, classify.IntentAskAstrologer,
			classify.IntentNumerology).
		AddEdge(classify.IntentHoroscope, graph.End).
		AddEdge(classify.IntentBirthChart, graph.End).
		AddEdge(classify.IntentTarotReading, graph.End).
		AddEdge(classify.IntentAskAstrologer, graph.End).
		AddEdge(classify.IntentNumerology, graph.End).
		Build()
}

func astroEdge(state *turn.State) string {
	switch state.Intent {
	case classify.IntentHoroscope, classify.IntentBirthChart,
		classify.IntentTarotReading, classify.IntentNumerology:
		return state.Intent
	}
	return classify.IntentAskAstrologer
}

// Horoscope answers daily/weekly horoscope requests for a zodiac sign.
func Horoscope(svc AstroService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		sign := state.Entity("astro_sign")
		if sign == "" {
			return turn.Update{
				ResponseText: "Which zodiac sign should I read? For example: \"horoscope for Leo\".",
				ResponseKind: channel.ResponseText,
			}
		}
		period := state.Entity("astro_period")
		if period == "" {
			period = "today"
		}
		reading, err := svc.Horoscope(ctx, sign, period)
		if err != nil {
			return failTurn("horoscope", err)
		}
		return turn.Update{ResponseText: reading, ResponseKind: channel.ResponseText}
	}
}

// BirthChart prepares a kundli-style reading from birth details.
func BirthChart(svc AstroService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		reading, err := svc.BirthChart(ctx, state.Entities)
		if err != nil {
			return failTurn("birth chart", err)
		}
		return turn.Update{ResponseText: reading, ResponseKind: channel.ResponseText}
	}
}

// Tarot draws and interprets cards for the user's question.
func Tarot(svc AstroService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		question := state.Entity("tarot_question")
		if question == "" {
			question = state.RawText
		}
		reading, err := svc.Tarot(ctx, question)
		if err != nil {
			return failTurn("tarot reading", err)
		}
		return turn.Update{ResponseText: reading, ResponseKind: channel.ResponseText}
	}
}

// AskAstrologer is the open-ended astrology question node.
func AskAstrologer(svc AstroService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		answer, err := svc.Ask(ctx, state.RawText)
		if err != nil {
			return failTurn("ask astrologer", err)
		}
		return turn.Update{ResponseText: answer, ResponseKind: channel.ResponseText}
	}
}

// Numerology computes a reading from a name or birth date.
func Numerology(svc AstroService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		name := state.Entity("name")
		if name == "" {
			name = state.RawText
		}
		reading, err := svc.Numerology(ctx, name)
		if err != nil {
			return failTurn("numerology", err)
		}
		return turn.Update{ResponseText: reading, ResponseKind: channel.ResponseText}
	}
}
