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

// NewsAPI returns headline pages from a configurable JSON news API.
type NewsAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewNewsAPI(cfg config.APIToolConfig) *NewsAPI {
	return &NewsAPI{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  newHTTPClient(),
	}
}

type newsResponse struct {
	Articles []struct {
		Title  string `json:"title"`
		Source string `json:"source"`
	} `json:"articles"`
}

// Headlines returns up to five headlines starting at offset. An empty
// query means top stories.
func (n *NewsAPI) Headlines(ctx context.Context, query string, offset int) (string, error) {
	if n.baseURL == "" {
		return "", ErrToolNotConfigured
	}

	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", "5")
	if n.apiKey != "" {
		q.Set("api_key", n.apiKey)
	}

	var res newsResponse
	if err := getJSON(ctx, n.client, n.baseURL+"/headlines", q, &res); err != nil {
		return "", fmt.Errorf("news headlines: %w", err)
	}
	if len(res.Articles) == 0 {
		if offset > 0 {
			return "That's all the headlines I have for now.", nil
		}
		return "No headlines found right now. Try again in a bit.", nil
	}

	var sb strings.Builder
	sb.WriteString("📰 Headlines:\n")
	for i, a := range res.Articles {
		fmt.Fprintf(&sb, "%d. %s", offset+i+1, a.Title)
		if a.Source != "" {
			fmt.Fprintf(&sb, " (%s)", a.Source)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Reply \"more\" for the next page.")
	return sb.String(), nil
}
