package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/zerify"
)

const textualSystemPrompt = `You are an expert Textual Analysis AI. Your purpose is to dissect and understand written content with high accuracy.
Perform these tasks:
  1. Summarize the text in 3-4 concise sentences.
  2. Extract up to 5 of the most prominent named entities (people, organizations, locations).
  3. Determine the overall sentiment (Positive, Negative, Neutral).
  4. List the top 5 most relevant keywords or topics.
Your output must conform to the provided JSON schema.`

var textualSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":   {Type: genai.TypeString},
		"entities":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"sentiment": {Type: genai.TypeString, Enum: []string{"Positive", "Negative", "Neutral"}},
		"keywords":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"summary", "entities", "sentiment", "keywords"},
}

// AnalyzeText summarizes the text and extracts entities, sentiment, and
// keywords.
func (g *Gemini) AnalyzeText(ctx context.Context, text string) (*zerify.TextualAnalysis, error) {
	const stage = zerify.StageTextualAnalysis

	prompt := fmt.Sprintf("Analyze the following text content. Your response must be a single, clean JSON object.\n\nText to analyze:\n---\n%s\n---",
		truncate(text, maxPromptText))

	resp, err := g.generate(ctx, stage, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(textualSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    textualSchema,
	})
	if err != nil {
		return nil, err
	}

	var out zerify.TextualAnalysis
	if err := json.Unmarshal([]byte(responseText(resp)), &out); err != nil {
		return nil, zerify.NewAgentError(stage, zerify.KindParse, err)
	}
	return &out, nil
}
