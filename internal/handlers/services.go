package handlers

import "context"

// Service interfaces are deliberately narrow: each handler names only
// the calls it makes, so tests swap in fakes without touching HTTP.
// Concrete implementations live in internal/tools.

// WeatherService answers current-conditions queries by city name or by
// shared coordinates.
type WeatherService interface {
	Current(ctx context.Context, city string) (string, error)
	CurrentAt(ctx context.Context, lat, lon float64) (string, error)
}

// SearchService answers nearby-places queries.
type SearchService interface {
	Search(ctx context.Context, query, location string) (string, error)
	SearchNear(ctx context.Context, query string, lat, lon float64) (string, error)
}

// NewsService returns a page of headlines. Offset supports "more"
// follow-ups re-running the same query further down the list.
type NewsService interface {
	Headlines(ctx context.Context, query string, offset int) (string, error)
}

// RailService covers the Indian Railways lookups.
type RailService interface {
	PNRStatus(ctx context.Context, pnr string) (string, error)
	TrainStatus(ctx context.Context, trainNumber, date string) (string, error)
	PlanJourney(ctx context.Context, from, to, date string) (string, error)
}

// AstroService covers the astrology capabilities. These are slow
// generative calls; the routing layer runs them under a time ceiling.
type AstroService interface {
	Horoscope(ctx context.Context, sign, period string) (string, error)
	BirthChart(ctx context.Context, entities map[string]any) (string, error)
	Tarot(ctx context.Context, question string) (string, error)
	Ask(ctx context.Context, question string) (string, error)
	Numerology(ctx context.Context, name string) (string, error)
}

// InfoService backs the single-call informational intents (stock price,
// cricket score, events, e-challan, government jobs and schemes, metro
// tickets, reminders). One lookup per turn, keyed by intent.
type InfoService interface {
	Lookup(ctx context.Context, intent string, entities map[string]any) (string, error)
}
