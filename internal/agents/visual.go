package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/zerify"
)

const imageSystemPrompt = `You are an expert digital forensics analyst specializing in image verification. Your task is to analyze an image and provide a structured JSON report.
The JSON object must contain a single key "visual_insights", which is an array containing a single object with these keys:
  - "image": A constant string set to "Uploaded Image".
  - "description": A detailed, one-paragraph description of the image's content, composition, and any notable actions.
  - "labels": An array of 5-7 strings describing primary objects or concepts.
  - "manipulation_flag": A string assessing the likelihood of digital manipulation ('Low', 'Medium', 'High') based on artifacts, shadows, and consistency.`

const framesSystemPrompt = `You are an expert digital forensics analyst specializing in video analysis. Your task is to analyze a sequence of frames and provide a structured JSON report summarizing the video's content.
The JSON object must contain a single key "visual_insights", which is an array containing a single object with these keys:
  - "image": A constant string set to "Video Clip".
  - "description": A detailed, one-paragraph description of the actions and events occurring across the frames.
  - "labels": An array of 5-7 strings describing primary objects or concepts present throughout the video.
  - "manipulation_flag": A string assessing the likelihood of digital manipulation ('Low', 'Medium', 'High') based on consistency between frames.`

var visualSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"visual_insights": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"image":             {Type: genai.TypeString},
					"description":       {Type: genai.TypeString},
					"labels":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"manipulation_flag": {Type: genai.TypeString, Enum: []string{"Low", "Medium", "High"}},
				},
				Required: []string{"image", "description", "labels", "manipulation_flag"},
			},
		},
	},
	Required: []string{"visual_insights"},
}

// AnalyzeVisual inspects an uploaded image or an extracted frame sequence
// for content and signs of manipulation. One asset means a single image;
// more than one means frames of the same clip.
func (g *Gemini) AnalyzeVisual(ctx context.Context, assets []zerify.MediaAsset) (*zerify.VisualAnalysis, error) {
	const stage = zerify.StageVisualAnalysis

	if len(assets) == 0 {
		return nil, zerify.NewAgentError(stage, zerify.KindInvalidInput,
			fmt.Errorf("no visual media supplied"))
	}

	var parts []*genai.Part
	for _, asset := range assets {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: asset.Data, MIMEType: asset.MIMEType},
		})
	}

	sysPrompt := imageSystemPrompt
	userPrompt := "Analyze the provided image and respond ONLY with the JSON object described in the system instruction."
	if len(assets) > 1 {
		sysPrompt = framesSystemPrompt
		userPrompt = "Analyze the following sequence of frames from a short video clip. Describe the primary action or event taking place, identify key objects, and assess if there is any sign of manipulation. Your response must be a single, clean JSON object."
	}
	parts = append(parts, genai.NewPartFromText(userPrompt))

	resp, err := g.generate(ctx, stage,
		[]*genai.Content{{Role: genai.RoleUser, Parts: parts}},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(sysPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    visualSchema,
		})
	if err != nil {
		return nil, err
	}

	var out zerify.VisualAnalysis
	if err := json.Unmarshal([]byte(responseText(resp)), &out); err != nil {
		return nil, zerify.NewAgentError(stage, zerify.KindParse, err)
	}
	if len(out.Insights) == 0 {
		return nil, zerify.NewAgentError(stage, zerify.KindParse,
			fmt.Errorf("model returned no visual insights"))
	}
	return &out, nil
}
