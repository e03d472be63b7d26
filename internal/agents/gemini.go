// Package agents implements the analytical capabilities behind the
// verification pipeline on top of the Gemini API.
package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/zerify"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini backs all pipeline stages with the google.golang.org/genai SDK.
// A shared token-bucket limiter paces every model call so the stages never
// exceed the backend's rate limits, replacing fixed inter-stage sleeps.
type Gemini struct {
	apiKey  string
	model   string
	limiter *rate.Limiter

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGemini creates the agent bundle. requestsPerMinute bounds the call
// rate across all stages; zero disables pacing.
func NewGemini(apiKey, model string, requestsPerMinute int) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
	return &Gemini{apiKey: apiKey, model: model, limiter: limiter}
}

func (g *Gemini) ensureClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.initErr
}

// generate performs one paced, non-streaming model call.
func (g *Gemini) generate(ctx context.Context, stage zerify.StageName, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return nil, zerify.NewAgentError(stage, zerify.KindInternal, fmt.Errorf("client init: %w", err))
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, classify(stage, err)
	}
	return resp, nil
}

// classify attaches an ErrorKind at the agent boundary so the retry layer
// never inspects message text itself. Structured API errors take priority;
// the substring match is a fallback for wrapped transport errors.
func classify(stage zerify.StageName, err error) *zerify.AgentError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED":
			return zerify.NewAgentError(stage, zerify.KindRateLimited, err)
		case apiErr.Code >= 500:
			return zerify.NewAgentError(stage, zerify.KindUnavailable, err)
		case apiErr.Code == 400:
			return zerify.NewAgentError(stage, zerify.KindInvalidInput, err)
		}
		return zerify.NewAgentError(stage, zerify.KindInternal, err)
	}

	lower := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"rate limit", "quota", "too many requests", "429",
		"overloaded", "capacity", "timeout", "unavailable",
		"connection reset", "connection refused",
	} {
		if strings.Contains(lower, pattern) {
			return zerify.NewAgentError(stage, zerify.KindUnavailable, err)
		}
	}
	return zerify.NewAgentError(stage, zerify.KindInternal, err)
}

// responseText flattens the first candidate's text parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}

// truncate caps prompt payloads the way the analysis prompts expect.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}

// maxPromptText bounds how much article text is embedded in a prompt.
const maxPromptText = 15000
