package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/d23ai/sahay-gateway/internal/config"
)

// ErrToolNotConfigured marks a tool whose API is not set up; the
// handler degrades to the fallback reply.
var ErrToolNotConfigured = errors.New("tool api not configured")

// RailAPI answers railway lookups against a configurable JSON API.
type RailAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRailAPI(cfg config.APIToolConfig) *RailAPI {
	return &RailAPI{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  newHTTPClient(),
	}
}

type pnrResponse struct {
	TrainName   string `json:"train_name"`
	TrainNumber string `json:"train_number"`
	DateOfJourney string `json:"doj"`
	Passengers  []struct {
		BookingStatus string `json:"booking_status"`
		CurrentStatus string `json:"current_status"`
	} `json:"passengers"`
}

type trainStatusResponse struct {
	TrainName  string `json:"train_name"`
	Position   string `json:"position"`
	DelayedMin int    `json:"delayed_minutes"`
}

type journeyResponse struct {
	Trains []struct {
		Number    string `json:"number"`
		Name      string `json:"name"`
		Departure string `json:"departure"`
		Arrival   string `json:"arrival"`
	} `json:"trains"`
}

// PNRStatus looks up a booking by PNR.
func (r *RailAPI) PNRStatus(ctx context.Context, pnr string) (string, error) {
	if r.baseURL == "" {
		return "", ErrToolNotConfigured
	}

	var res pnrResponse
	if err := getJSON(ctx, r.client, r.baseURL+"/pnr/"+url.PathEscape(pnr), r.query(nil), &res); err != nil {
		return "", fmt.Errorf("pnr status: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "PNR %s\n%s (%s), journey %s\n", pnr, res.TrainName, res.TrainNumber, res.DateOfJourney)
	for i, p := range res.Passengers {
		fmt.Fprintf(&sb, "Passenger %d: booked %s, current %s\n", i+1, p.BookingStatus, p.CurrentStatus)
	}
	return strings.TrimSpace(sb.String()), nil
}

// TrainStatus looks up the live running status of a train.
func (r *RailAPI) TrainStatus(ctx context.Context, trainNumber, date string) (string, error) {
	if r.baseURL == "" {
		return "", ErrToolNotConfigured
	}

	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var res trainStatusResponse
	if err := getJSON(ctx, r.client, r.baseURL+"/train/"+url.PathEscape(trainNumber), r.query(q), &res); err != nil {
		return "", fmt.Errorf("train status: %w", err)
	}

	if res.DelayedMin > 0 {
		return fmt.Sprintf("%s (%s): %s, running %d min late", res.TrainName, trainNumber, res.Position, res.DelayedMin), nil
	}
	return fmt.Sprintf("%s (%s): %s, on time", res.TrainName, trainNumber, res.Position), nil
}

// PlanJourney lists trains between two cities.
func (r *RailAPI) PlanJourney(ctx context.Context, from, to, date string) (string, error) {
	if r.baseURL == "" {
		return "", ErrToolNotConfigured
	}

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	if date != "" {
		q.Set("date", date)
	}
	var res journeyResponse
	if err := getJSON(ctx, r.client, r.baseURL+"/journey", r.query(q), &res); err != nil {
		return "", fmt.Errorf("journey plan: %w", err)
	}
	if len(res.Trains) == 0 {
		return fmt.Sprintf("No direct trains found from %s to %s.", from, to), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Trains from %s to %s:\n", from, to)
	for _, t := range res.Trains {
		fmt.Fprintf(&sb, "%s %s, dep %s, arr %s\n", t.Number, t.Name, t.Departure, t.Arrival)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (r *RailAPI) query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if r.apiKey != "" {
		q.Set("api_key", r.apiKey)
	}
	return q
}
