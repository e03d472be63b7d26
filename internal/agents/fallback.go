package agents

import "github.com/zerify/zerify/internal/zerify"

// Fallback results substitute for rate-limited stages once retries are
// exhausted. They are structurally valid, deterministic, and clearly
// labeled so downstream aggregation and scoring never special-case them.

// FallbackTextual returns a neutral placeholder textual analysis.
func FallbackTextual() *zerify.TextualAnalysis {
	return &zerify.TextualAnalysis{
		Summary:   "Textual analysis was unavailable because the analysis service was overloaded. The content could not be summarized.",
		Entities:  []string{},
		Sentiment: zerify.SentimentNeutral,
		Keywords:  []string{},
	}
}

// FallbackEmotion returns a neutral placeholder emotion analysis.
func FallbackEmotion() *zerify.EmotionAnalysis {
	return &zerify.EmotionAnalysis{
		DominantEmotion:   "Neutral",
		ManipulationLevel: zerify.LevelLow,
		Explanation:       "Emotion analysis was unavailable because the analysis service was overloaded; no manipulation assessment was made.",
	}
}

// FallbackSource returns an unknown-credibility placeholder with a neutral
// mid-range trust score so it neither raises nor suppresses the risk score
// unduly.
func FallbackSource(domain string) *zerify.SourceIntelligence {
	return &zerify.SourceIntelligence{
		Validity:   zerify.ValidityUnknown,
		TrustScore: 50,
		Evidence: []zerify.EvidenceItem{
			{
				Description: "Credibility check for " + domain + " could not be completed; the verification service was overloaded.",
				Finding:     zerify.FindingNeutral,
			},
		},
		Explanation: "Source credibility is unknown because the verification service was unavailable.",
	}
}
