package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/llmutil"
	"github.com/zerify/zerify/internal/zerify"
)

const sourceSystemPrompt = `You are a Source Intelligence Agent. Your goal is to assess the credibility of a web domain using Google Search and provide a structured JSON summary of your findings.
Your analysis must include:
  1. A 'source_validity' rating: 'High' (trust score 80-100), 'Medium' (40-79), 'Low' (0-39), or 'Unknown'.
  2. An 'evidence' array, containing at least 3 objects with 'description' and 'finding' ('Positive', 'Negative', 'Neutral'). Evidence should be specific (e.g., "Rated 'Mostly Factual' by Media Bias/Fact Check.").
  3. A 'trust_score', a numerical score from 0 to 100 representing the source's overall reliability.
  4. A 'source_validity_explanation', a brief, one-sentence justification for the trust score.`

// AnalyzeSource assesses the credibility of a domain using the
// search-grounded model. Search tools cannot be combined with a response
// schema, so the JSON arrives fenced and is parsed leniently.
func (g *Gemini) AnalyzeSource(ctx context.Context, domain string) (*zerify.SourceIntelligence, error) {
	const stage = zerify.StageSourceIntelligence

	prompt := fmt.Sprintf("Assess the credibility of the domain: %s.\nFocus on reputation for accuracy, potential biases, and fact-checking history.\n\nYour final output must be a single JSON object enclosed in a markdown code block (```json).", domain)

	resp, err := g.generate(ctx, stage, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(sourceSystemPrompt, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, err
	}

	jsonText, err := llmutil.ExtractJSON(responseText(resp))
	if err != nil {
		return nil, zerify.NewAgentError(stage, zerify.KindParse,
			fmt.Errorf("could not parse the source intelligence analysis: %w", err))
	}

	var out zerify.SourceIntelligence
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return nil, zerify.NewAgentError(stage, zerify.KindParse,
			fmt.Errorf("could not parse the source intelligence analysis: %w", err))
	}
	return &out, nil
}
