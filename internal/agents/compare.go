package agents

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/zerify"
)

const comparisonSystemPrompt = `You are a senior intelligence analyst. Your task is to write a clear, concise comparative intelligence brief in Markdown format based on data from multiple reports.

Structure your brief with these exact sections, using '##' for each heading:

## Comparative Summary
A 2-3 sentence high-level synthesis of the reports. What is the main story when looking at them together?

## Key Similarities & Differences
A bulleted list highlighting the most important overlapping findings (similarities) and conflicting or unique findings (differences). Use subheadings '### Similarities' and '### Differences'.

## Evolving Trends
(If applicable, based on timestamps) A bulleted list identifying any trends or changes in the subject matter over time between the reports. If not applicable, state "No significant trends identified."

## Synthesized Conclusion
A final assessment that combines the insights from all sources into a unified conclusion. What is the overall takeaway for a decision-maker?`

// Compare streams a comparative brief across previously archived runs.
func (g *Gemini) Compare(ctx context.Context, entries []*zerify.HistoryEntry) (iter.Seq2[string, error], error) {
	prompt := fmt.Sprintf(`Analyze and compare the following intelligence reports. Synthesize the findings into a single, comprehensive 'Comparative Intelligence Brief'.

Here is the data:
%s

---

Generate the comparative brief based ONLY on the information provided. Your tone should be objective and analytical.`,
		formatEntries(entries))

	return g.stream(ctx, zerify.StageFinalSynthesis, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(comparisonSystemPrompt, genai.RoleUser),
	})
}

func formatEntries(entries []*zerify.HistoryEntry) string {
	var b strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&b, "\n--- REPORT %d ---\n", i+1)
		fmt.Fprintf(&b, "Source: %s\n", entry.Input)
		fmt.Fprintf(&b, "Analysis Date: %s\n", entry.Timestamp.UTC().Format("Mon, 02 Jan 2006 15:04:05 MST"))

		if entry.Results != nil {
			if source := entry.Results.Source; source != nil {
				b.WriteString("\n**Source Credibility Assessment:**\n")
				fmt.Fprintf(&b, "- Validity: %s\n", source.Validity)
				fmt.Fprintf(&b, "- Trust Score: %d/100\n", source.TrustScore)
				b.WriteString("- Supporting Evidence:\n")
				for _, item := range source.Evidence {
					fmt.Fprintf(&b, "    - [%s] %s\n", item.Finding, item.Description)
				}
			}
			if textual := entry.Results.Textual; textual != nil {
				b.WriteString("\n**Textual Analysis:**\n")
				fmt.Fprintf(&b, "- Summary: %s\n", textual.Summary)
				fmt.Fprintf(&b, "- Key Entities: %s\n", strings.Join(textual.Entities, ", "))
				fmt.Fprintf(&b, "- Sentiment: %s\n", textual.Sentiment)
			}
			if visual := entry.Results.Visual; visual != nil && len(visual.Insights) > 0 {
				b.WriteString("\n**Visual Analysis:**\n")
				fmt.Fprintf(&b, "- Manipulation Flag: %s\n", visual.Insights[0].ManipulationFlag)
			}
		}
		fmt.Fprintf(&b, "--- END REPORT %d ---\n", i+1)
	}
	return b.String()
}
