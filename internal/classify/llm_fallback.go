package classify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/d23ai/sahay-gateway/internal/llm"
	"github.com/d23ai/sahay-gateway/internal/metrics"
)

const intentSystemPrompt = `You are an intent classifier for a multilingual assistant on a messaging channel.

Classify the user message into exactly one of these intents:
help, chat, weather, get_news, stock_price, cricket_score, local_search,
food_order, events, image, set_reminder, echallan, govt_jobs, govt_schemes,
pnr_status, train_status, train_journey, metro_ticket,
get_horoscope, birth_chart, tarot_reading, ask_astrologer, numerology

Extract entities relevant to the intent:
- weather: city name as "city"
- pnr_status: the 10-digit number as "pnr"
- train_status: train number as "train_number", optional "date"
- train_journey: "source_city", "destination_city", "journey_date"
- local_search: "search_query" and "location" ("near me" is NOT a location)
- get_news: "news_query"
- stock_price: company or ticker as "stock_name"
- set_reminder: "reminder_time" and "reminder_message"
- get_horoscope: zodiac sign as "astro_sign", period as "astro_period"
- tarot_reading: "tarot_question"

If unsure between intents, use chat.
Respond with a JSON object only: {"intent": ..., "confidence": 0.0-1.0, "entities": {...}}`

type llmClassification struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities"`
}

// chatFallback is what every LLM failure mode degrades to.
func chatFallback() Result {
	return Result{Intent: IntentChat, Confidence: 0.5, Entities: map[string]any{}}
}

// classifyWithLLM is the last classifier layer. It is bounded by its own
// timeout and fails closed to the chat intent rather than blocking or
// erroring the turn.
func (c *Classifier) classifyWithLLM(ctx context.Context, text string) Result {
	if c.llm == nil {
		metrics.ClassifierLayer.WithLabelValues("llm_skip").Inc()
		return chatFallback()
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.llm.Complete(callCtx, &llm.Request{
		Model:    c.model,
		System:   intentSystemPrompt,
		Prompt:   text,
		JSONOnly: true,
	})
	if err != nil {
		metrics.ClassifierLayer.WithLabelValues("llm_error").Inc()
		c.logger.Warn("llm classification failed", "error", err)
		return chatFallback()
	}

	parsed, ok := parseClassification(resp.Content)
	if !ok {
		metrics.ClassifierLayer.WithLabelValues("llm_error").Inc()
		c.logger.Warn("llm classification returned unparseable output", "content", truncate(resp.Content, 200))
		return chatFallback()
	}

	metrics.ClassifierLayer.WithLabelValues("llm").Inc()

	intent := strings.TrimSpace(parsed.Intent)
	if !KnownIntent(intent) {
		// Anything outside the enum is coerced, not rejected.
		intent = IntentChat
	}
	confidence := parsed.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}
	entities := parsed.Entities
	if entities == nil {
		entities = map[string]any{}
	}

	return Result{Intent: intent, Confidence: confidence, Entities: entities}
}

// parseClassification tolerates markdown code fences and leading prose
// around the JSON object.
func parseClassification(content string) (llmClassification, bool) {
	var parsed llmClassification

	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return llmClassification{}, false
	}
	if parsed.Intent == "" {
		return llmClassification{}, false
	}
	return parsed, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
