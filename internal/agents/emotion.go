package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/zerify"
)

const emotionSystemPrompt = `You are an Emotion Analysis AI specializing in detecting intent and manipulation.
Analyze the text to perform these tasks:
  1. Identify the dominant emotion ('Anger', 'Fear', 'Joy', 'Sadness', 'Surprise', 'Neutral', 'Mixed').
  2. Assess the level of emotional manipulation ('Low', 'Medium', 'High'). 'High' or 'Medium' should be used for content that seems designed to provoke a strong emotional reaction (e.g., outrage, fear, extreme excitement) rather than inform.
  3. Provide a brief, one-sentence 'explanation' for your assessment.
Your output must conform to the provided JSON schema.`

var emotionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"dominant_emotion":   {Type: genai.TypeString, Enum: []string{"Anger", "Fear", "Joy", "Sadness", "Surprise", "Neutral", "Mixed"}},
		"manipulation_level": {Type: genai.TypeString, Enum: []string{"Low", "Medium", "High"}},
		"explanation":        {Type: genai.TypeString},
	},
	Required: []string{"dominant_emotion", "manipulation_level", "explanation"},
}

// AnalyzeEmotion assesses the emotional tone of the text and whether it is
// designed to manipulate rather than inform.
func (g *Gemini) AnalyzeEmotion(ctx context.Context, text string) (*zerify.EmotionAnalysis, error) {
	const stage = zerify.StageEmotionAnalysis

	prompt := fmt.Sprintf("Analyze the emotional tone of the following text. Your response must be a single, clean JSON object.\n\nText to analyze:\n---\n%s\n---",
		truncate(text, maxPromptText))

	resp, err := g.generate(ctx, stage, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(emotionSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    emotionSchema,
	})
	if err != nil {
		return nil, err
	}

	var out zerify.EmotionAnalysis
	if err := json.Unmarshal([]byte(responseText(resp)), &out); err != nil {
		return nil, zerify.NewAgentError(stage, zerify.KindParse, err)
	}
	return &out, nil
}
