package handlers

import (
	"context"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// PNRStatus looks up a booking by its 10-digit PNR.
func PNRStatus(svc RailService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		pnr := state.Entity("pnr")
		if pnr == "" {
			return turn.Update{
				ResponseText: "Please send the 10-digit PNR number from your ticket.",
				ResponseKind: channel.ResponseText,
			}
		}
		status, err := svc.PNRStatus(ctx, pnr)
		if err != nil {
			return failTurn("pnr lookup", err)
		}
		return turn.Update{ResponseText: status, ResponseKind: channel.ResponseText}
	}
}

// TrainStatus looks up the live running status of a train.
func TrainStatus(svc RailService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		trainNumber := state.Entity("train_number")
		if trainNumber == "" {
			return turn.Update{
				ResponseText: "Please send the train number, e.g. \"train 12301 status\".",
				ResponseKind: channel.ResponseText,
			}
		}
		status, err := svc.TrainStatus(ctx, trainNumber, state.Entity("date"))
		if err != nil {
			return failTurn("train status lookup", err)
		}
		return turn.Update{ResponseText: status, ResponseKind: channel.ResponseText}
	}
}

// TrainJourney plans a route between two cities.
func TrainJourney(svc RailService) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		from := state.Entity("source_city")
		to := state.Entity("destination_city")
		if from == "" || to == "" {
			return turn.Update{
				ResponseText: "Tell me the route like \"train from Mumbai to Pune on 26 January\".",
				ResponseKind: channel.ResponseText,
			}
		}
		plan, err := svc.PlanJourney(ctx, from, to, state.Entity("journey_date"))
		if err != nil {
			return failTurn("journey planning", err)
		}
		return turn.Update{ResponseText: plan, ResponseKind: channel.ResponseText}
	}
}
