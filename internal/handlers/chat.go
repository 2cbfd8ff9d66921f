package handlers

import (
	"context"
	"errors"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/llm"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

const chatSystemPrompt = `You are Sahay, a friendly assistant on a messaging channel for users in India.
Reply briefly, warmly and in the same language the user wrote in.
If the user asks for something you cannot do, suggest typing "help".`

// Chat is the open-ended conversation handler and the default landing
// node for anything the classifier could not place.
func Chat(client llm.Client, model string) graph.HandlerFunc {
	return func(ctx context.Context, state *turn.State) turn.Update {
		if client == nil {
			return failTurn("chat", errors.New("no llm client configured"))
		}

		system := chatSystemPrompt
		if state.Language != "" && state.Language != "en" {
			system += "\nUser language hint: " + state.Language
		}

		resp, err := client.Complete(ctx, &llm.Request{
			Model:  model,
			System: system,
			Prompt: state.RawText,
		})
		if err != nil {
			return failTurn("chat completion", err)
		}
		return turn.Update{ResponseText: resp.Content, ResponseKind: channel.ResponseText}
	}
}
