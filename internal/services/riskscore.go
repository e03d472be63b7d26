package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/zerify/zerify/internal/zerify"
)

// RiskScore derives a 0-100 risk score with ranked factor descriptions
// from the collected stage results. Pure function; recomputed on demand.
//
// Available signals are combined with weights 0.6 (source credibility),
// 0.2 (emotional manipulation), and 0.2 (visual manipulation); when some
// signals are absent the accumulated score is divided by the sum of the
// weights actually applied, so missing signals do not depress the score.
// A negative textual sentiment then adds a flat +10, capped at 100. The
// sentiment adjustment contributes a factor string only when other factors
// already exist; a negative-sentiment-only input yields a bare score with
// no factor text. That asymmetry matches the established output contract.
func RiskScore(results *zerify.Analysis) zerify.RiskAssessment {
	if results == nil || results.Empty() {
		return zerify.RiskAssessment{Score: 0, Factors: []string{"Not enough data for risk assessment."}}
	}

	var score float64
	var factors []string
	var weightsApplied float64

	if source := results.Source; source != nil {
		riskFromSource := float64(100 - source.TrustScore)
		score += riskFromSource * 0.6
		weightsApplied += 0.6
		switch {
		case riskFromSource > 60:
			factors = append(factors, "Source credibility is low.")
		case riskFromSource > 20:
			factors = append(factors, "Source credibility is moderate.")
		default:
			factors = append(factors, "Source credibility is high.")
		}
	}

	if emotion := results.Emotion; emotion != nil && emotion.ManipulationLevel != "" {
		var riskFromEmotion float64
		switch emotion.ManipulationLevel {
		case zerify.LevelHigh:
			riskFromEmotion = 100
		case zerify.LevelMedium:
			riskFromEmotion = 60
		}
		score += riskFromEmotion * 0.2
		weightsApplied += 0.2
		if emotion.ManipulationLevel != zerify.LevelLow {
			factors = append(factors, fmt.Sprintf("Detected %s emotional manipulation.",
				strings.ToLower(string(emotion.ManipulationLevel))))
		}
	}

	if visual := results.Visual; visual != nil && len(visual.Insights) > 0 && visual.Insights[0].ManipulationFlag != "" {
		flag := visual.Insights[0].ManipulationFlag
		var riskFromVisual float64
		switch flag {
		case zerify.LevelHigh:
			riskFromVisual = 100
		case zerify.LevelMedium:
			riskFromVisual = 60
		}
		score += riskFromVisual * 0.2
		weightsApplied += 0.2
		if flag != zerify.LevelLow {
			factors = append(factors, fmt.Sprintf("Image manipulation risk is %s.",
				strings.ToLower(string(flag))))
		}
	}

	if weightsApplied > 0 && weightsApplied < 1 {
		score = score / weightsApplied
	}

	if results.Textual != nil && results.Textual.Sentiment == zerify.SentimentNegative {
		score = math.Min(100, score+10)
		if len(factors) > 0 {
			factors = append(factors, "Content has a negative sentiment.")
		}
	}

	finalScore := int(math.Round(math.Max(0, math.Min(100, score))))

	if len(factors) == 0 {
		factors = append(factors, "No significant risk factors detected.")
	}

	return zerify.RiskAssessment{Score: finalScore, Factors: factors}
}
