package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/d23ai/sahay-gateway/internal/llm"
)

const astroSystemPrompt = `You are an experienced, warm Vedic astrologer on a messaging channel.
Give thoughtful readings grounded in Vedic astrology tradition.
Keep replies under 150 words and end on an encouraging note.
Never give medical, legal or financial instructions.`

// LLMAstro backs the astrology capabilities with the configured model.
// These are generative readings, not data lookups, so the LLM is the
// tool here.
type LLMAstro struct {
	client llm.Client
	model  string
}

func NewLLMAstro(client llm.Client, model string) *LLMAstro {
	return &LLMAstro{client: client, model: model}
}

func (a *LLMAstro) Horoscope(ctx context.Context, sign, period string) (string, error) {
	return a.complete(ctx, fmt.Sprintf("Give the %s horoscope for %s.", period, sign))
}

func (a *LLMAstro) BirthChart(ctx context.Context, entities map[string]any) (string, error) {
	prompt := "Prepare a short birth chart reading."
	if len(entities) > 0 {
		prompt = fmt.Sprintf("Prepare a short birth chart reading from these details: %v. If key details (birth date, time, place) are missing, ask for them.", entities)
	}
	return a.complete(ctx, prompt)
}

func (a *LLMAstro) Tarot(ctx context.Context, question string) (string, error) {
	return a.complete(ctx, fmt.Sprintf("Draw three tarot cards for this question and interpret them: %s", question))
}

func (a *LLMAstro) Ask(ctx context.Context, question string) (string, error) {
	return a.complete(ctx, question)
}

func (a *LLMAstro) Numerology(ctx context.Context, name string) (string, error) {
	return a.complete(ctx, fmt.Sprintf("Give a numerology reading for: %s", name))
}

func (a *LLMAstro) complete(ctx context.Context, prompt string) (string, error) {
	if a.client == nil {
		return "", errors.New("astrology: no llm client configured")
	}
	resp, err := a.client.Complete(ctx, &llm.Request{
		Model:  a.model,
		System: astroSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
