package zerify

// Sentiment is the overall tone reported by textual analysis.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Level is a three-step severity used for emotional manipulation and
// visual manipulation flags.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Validity rates a source's overall credibility.
type Validity string

const (
	ValidityHigh    Validity = "High"
	ValidityMedium  Validity = "Medium"
	ValidityLow     Validity = "Low"
	ValidityUnknown Validity = "Unknown"
)

// Finding classifies a single piece of source evidence.
type Finding string

const (
	FindingPositive Finding = "Positive"
	FindingNegative Finding = "Negative"
	FindingNeutral  Finding = "Neutral"
)

// IngestionResult is the output of the content-ingestion stage.
// Domain is empty when the input was direct text rather than a URL.
type IngestionResult struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
	Domain string   `json:"domain"`
}

// TextualAnalysis is the output of the textual-analysis stage.
type TextualAnalysis struct {
	Summary   string    `json:"summary"`
	Entities  []string  `json:"entities"`
	Sentiment Sentiment `json:"sentiment"`
	Keywords  []string  `json:"keywords"`
}

// EmotionAnalysis is the output of the emotion-analysis stage.
type EmotionAnalysis struct {
	DominantEmotion   string `json:"dominant_emotion"`
	ManipulationLevel Level  `json:"manipulation_level"`
	Explanation       string `json:"explanation"`
}

// VisualInsight describes one analyzed image or clip. Current model usage
// produces exactly one insight entry even for multi-frame input.
type VisualInsight struct {
	Source           string   `json:"image"`
	Description      string   `json:"description"`
	Labels           []string `json:"labels"`
	ManipulationFlag Level    `json:"manipulation_flag"`
}

// VisualAnalysis is the output of the visual-analysis stage.
type VisualAnalysis struct {
	Insights []VisualInsight `json:"visual_insights"`
}

// EvidenceItem is a single credibility finding about a source.
type EvidenceItem struct {
	Description string  `json:"description"`
	Finding     Finding `json:"finding"`
}

// SourceIntelligence is the output of the source-intelligence stage.
type SourceIntelligence struct {
	Validity    Validity       `json:"source_validity"`
	Evidence    []EvidenceItem `json:"evidence"`
	TrustScore  int            `json:"trust_score"`
	Explanation string         `json:"source_validity_explanation"`
}

// Analysis accumulates stage outputs over a run. Each field is written at
// most once, by its own stage, and never cleared while the run lives.
type Analysis struct {
	Ingestion *IngestionResult    `json:"ingestion,omitempty"`
	Textual   *TextualAnalysis    `json:"textual,omitempty"`
	Emotion   *EmotionAnalysis    `json:"emotion,omitempty"`
	Visual    *VisualAnalysis     `json:"visual,omitempty"`
	Source    *SourceIntelligence `json:"source,omitempty"`
}

// Empty reports whether no stage has produced a scoreable signal yet.
func (a *Analysis) Empty() bool {
	return a.Source == nil && a.Emotion == nil && a.Visual == nil && a.Textual == nil
}

// RiskAssessment is the derived 0-100 risk score with its contributing
// factors, recomputed on demand and never persisted on its own.
type RiskAssessment struct {
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}
