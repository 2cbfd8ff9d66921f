package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/d23ai/sahay-gateway/internal/config"
)

// PlacesAPI answers nearby-search queries against a configurable JSON
// places API.
type PlacesAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPlacesAPI(cfg config.APIToolConfig) *PlacesAPI {
	return &PlacesAPI{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  newHTTPClient(),
	}
}

type placesResponse struct {
	Results []struct {
		Name    string  `json:"name"`
		Rating  float64 `json:"rating"`
		Address string  `json:"address"`
		Open    bool    `json:"open_now"`
	} `json:"results"`
}

// Search finds places matching query in a named location.
func (p *PlacesAPI) Search(ctx context.Context, query, location string) (string, error) {
	q := url.Values{}
	q.Set("q", query+" in "+location)
	return p.run(ctx, q, query)
}

// SearchNear finds places matching query around coordinates.
func (p *PlacesAPI) SearchNear(ctx context.Context, query string, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	return p.run(ctx, q, query)
}

func (p *PlacesAPI) run(ctx context.Context, q url.Values, query string) (string, error) {
	if p.baseURL == "" {
		return "", ErrToolNotConfigured
	}
	if p.apiKey != "" {
		q.Set("api_key", p.apiKey)
	}

	var res placesResponse
	if err := getJSON(ctx, p.client, p.baseURL+"/search", q, &res); err != nil {
		return "", fmt.Errorf("places search: %w", err)
	}
	if len(res.Results) == 0 {
		return fmt.Sprintf("I couldn't find anything for %q nearby. Try a different search?", query), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's what I found for %q:\n", query)
	for i, r := range res.Results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, r.Name)
		if r.Rating > 0 {
			fmt.Fprintf(&sb, " ⭐ %.1f", r.Rating)
		}
		if r.Address != "" {
			fmt.Fprintf(&sb, ", %s", r.Address)
		}
		if r.Open {
			sb.WriteString(" (open now)")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
