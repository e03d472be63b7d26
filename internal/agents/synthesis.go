package agents

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/zerify"
)

const synthesisSystemPrompt = `You are a senior intelligence analyst. Your task is to write a clear, concise, and actionable intelligence brief in Markdown format based on data from various analytical agents.

Structure your brief with these exact sections, using '##' for each heading:

## Executive Summary
A 2-3 sentence "so what" conclusion for a busy decision-maker. This is the most critical part.

## Key Findings
A bulleted list synthesizing the most important insights. Do not just list the inputs; connect them.

## Identified Risks
A bulleted list of potential risks, including both immediate and cascading (second-order) effects. For example, beyond just misinformation, consider potential economic disruption, reputational damage to involved entities, or erosion of public trust.

## Opportunities
A bulleted list of proactive solutions, mitigation strategies, and positive actions that could be taken in response to the findings. This should shift from just identifying a problem to suggesting a complete response plan (e.g., "Recommend issuing a policy clarification," "Advocate for independent fact-checking," "Engage corporate partners for support").

## Overall Confidence Score
A confidence rating (High, Medium, or Low) in this analysis, with a brief justification. Justify the score by referencing the completeness and reliability of the input data (e.g., 'Confidence is Medium because the source trust score is low.').

Do not include the '---' separator in your output.`

// Synthesize streams the final intelligence brief built from the collected
// stage results. Chunks arrive in generation order; the stream is finite
// and not restartable.
func (g *Gemini) Synthesize(ctx context.Context, results *zerify.Analysis) (iter.Seq2[string, error], error) {
	const stage = zerify.StageFinalSynthesis

	prompt := fmt.Sprintf(`Synthesize the findings from the structured data below into a final 'Actionable Intelligence Brief'.

Here is the data:
%s

---

Generate the brief based on the information you have. If a section of data is missing, note it where appropriate in your analysis. Your tone should be objective and analytical.`,
		formatAnalysis(results))

	return g.stream(ctx, stage, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(synthesisSystemPrompt, genai.RoleUser),
	})
}

// stream runs a paced streaming model call and adapts the SDK response
// iterator to plain text chunks.
func (g *Gemini) stream(ctx context.Context, stage zerify.StageName, contents []*genai.Content, cfg *genai.GenerateContentConfig) (iter.Seq2[string, error], error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return nil, zerify.NewAgentError(stage, zerify.KindInternal, fmt.Errorf("client init: %w", err))
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return func(yield func(string, error) bool) {
		for resp, err := range client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
			if err != nil {
				yield("", classify(stage, err))
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

// formatAnalysis renders the aggregate the way the synthesis prompt
// expects, omitting sections for stages that never produced a result.
func formatAnalysis(results *zerify.Analysis) string {
	var b strings.Builder

	if source := results.Source; source != nil {
		b.WriteString("\n**Source Credibility Assessment:**\n")
		fmt.Fprintf(&b, "- Validity: %s\n", source.Validity)
		fmt.Fprintf(&b, "- Trust Score: %d/100\n", source.TrustScore)
		fmt.Fprintf(&b, "- Justification: %s\n", source.Explanation)
		b.WriteString("- Supporting Evidence:\n")
		for _, item := range source.Evidence {
			fmt.Fprintf(&b, "    - [%s] %s\n", item.Finding, item.Description)
		}
	}

	if textual := results.Textual; textual != nil {
		b.WriteString("\n**Textual Analysis:**\n")
		fmt.Fprintf(&b, "- Summary: %s\n", textual.Summary)
		fmt.Fprintf(&b, "- Key Entities: %s\n", strings.Join(textual.Entities, ", "))
		fmt.Fprintf(&b, "- Sentiment: %s\n", textual.Sentiment)
		fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(textual.Keywords, ", "))
	}

	if visual := results.Visual; visual != nil && len(visual.Insights) > 0 {
		insight := visual.Insights[0]
		b.WriteString("\n**Visual Analysis:**\n")
		fmt.Fprintf(&b, "- Content Type: %s\n", insight.Source)
		fmt.Fprintf(&b, "- Description: %s\n", insight.Description)
		fmt.Fprintf(&b, "- Detected Labels: %s\n", strings.Join(insight.Labels, ", "))
		fmt.Fprintf(&b, "- Manipulation Flag: %s\n", insight.ManipulationFlag)
	}

	return b.String()
}
