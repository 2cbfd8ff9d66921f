package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/llm"
)

const infoSystemPrompt = `You are a helpful assistant for users in India on a messaging channel.
Answer concisely (under 120 words) and in the user's language where possible.
When the request needs live data you do not have (exact prices, live scores),
say so and explain how the user can check, instead of inventing numbers.`

// infoPrompts shapes the lookup per intent.
var infoPrompts = map[string]string{
	classify.IntentStockPrice:   "The user asks about a stock: %v. Explain where it trades and how to check the live price; do not invent a number.",
	classify.IntentCricketScore: "The user asks about cricket: %v. Summarize how to follow the match; do not invent a live score.",
	classify.IntentEvents:       "Suggest kinds of events and how to find them for: %v.",
	classify.IntentEChallan:     "Explain step by step how to check and pay an e-challan online in India. Details: %v.",
	classify.IntentGovtJobs:     "List current categories of Indian government job openings and the official portals to apply, for: %v.",
	classify.IntentGovtSchemes:  "Describe Indian government welfare schemes relevant to: %v, with official portals.",
	classify.IntentMetroTicket:  "Explain how to book a metro ticket (apps, QR tickets, cards) for: %v.",
	classify.IntentReminder:     "Acknowledge this reminder request and restate time and message clearly: %v.",
	classify.IntentImage:        "Describe in one sentence the image you would generate for: %v.",
}

// LLMInfo backs the informational intents with the configured model.
// Pure-data intents get guidance answers rather than fabricated
// numbers; swapping in a live data API only means replacing this type.
type LLMInfo struct {
	client llm.Client
	model  string
}

func NewLLMInfo(client llm.Client, model string) *LLMInfo {
	return &LLMInfo{client: client, model: model}
}

func (i *LLMInfo) Lookup(ctx context.Context, intent string, entities map[string]any) (string, error) {
	if i.client == nil {
		return "", errors.New("info: no llm client configured")
	}

	tmpl, ok := infoPrompts[intent]
	if !ok {
		tmpl = "Answer this request: %v."
	}

	resp, err := i.client.Complete(ctx, &llm.Request{
		Model:  i.model,
		System: infoSystemPrompt,
		Prompt: fmt.Sprintf(tmpl, entities),
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
