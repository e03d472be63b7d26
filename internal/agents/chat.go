package agents

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/zerify"
	"github.com/zerify/zerify/internal/zerify/ports"
)

const followUpSystemPrompt = `You are a helpful intelligence analyst assistant. The user has just received the following "Actionable Intelligence Brief". Your role is to answer their follow-up questions about this specific brief. Be concise and refer only to the information contained within the brief provided below. Do not invent new information or access external tools.

---
**INTELLIGENCE BRIEF CONTEXT:**
%s
---
`

// chatSession wraps a genai chat seeded with a finished report.
type chatSession struct {
	gem  *Gemini
	chat *genai.Chat
}

// StartFollowUp opens a conversational session that answers questions
// about the given report.
func (g *Gemini) StartFollowUp(ctx context.Context, report string) (ports.Session, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("client init: %w", err)
	}

	chat, err := client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(fmt.Sprintf(followUpSystemPrompt, report), genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, classify(zerify.StageFinalSynthesis, err)
	}
	return &chatSession{gem: g, chat: chat}, nil
}

// Send streams the model's answer to one follow-up message.
func (s *chatSession) Send(ctx context.Context, message string) (iter.Seq2[string, error], error) {
	if err := s.gem.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return func(yield func(string, error) bool) {
		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
			if err != nil {
				yield("", classify(zerify.StageFinalSynthesis, err))
				return
			}
			if chunk := responseText(resp); chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}, nil
}
