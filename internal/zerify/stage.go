package zerify

// StageName identifies one step of the verification pipeline.
type StageName string

const (
	StageContentIngestion   StageName = "Content Ingestion"
	StageTextualAnalysis    StageName = "Textual Analysis"
	StageEmotionAnalysis    StageName = "Emotion Analysis"
	StageVisualAnalysis     StageName = "Visual Analysis"
	StageSourceIntelligence StageName = "Source Intelligence"
	StageFinalSynthesis     StageName = "Final Synthesis"
)

// StageOrder is the fixed execution order of the pipeline. It never changes
// at runtime; every loop over stages iterates this slice.
var StageOrder = []StageName{
	StageContentIngestion,
	StageTextualAnalysis,
	StageEmotionAnalysis,
	StageVisualAnalysis,
	StageSourceIntelligence,
	StageFinalSynthesis,
}

// StageStatus is the lifecycle state of a single stage within a run.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageSkipped   StageStatus = "skipped"
	StageError     StageStatus = "error"
)

// Terminal reports whether the status is a final one for the run.
func (s StageStatus) Terminal() bool {
	return s == StageCompleted || s == StageSkipped || s == StageError
}

// StageRecord holds the status of one stage plus an optional
// human-readable progress note.
type StageRecord struct {
	Status  StageStatus `json:"status"`
	Details string      `json:"details,omitempty"`
}

// PipelineState maps every stage to its current record. Observers only ever
// see clones taken at transition time, never the orchestrator's live map.
type PipelineState map[StageName]StageRecord

// NewPipelineState returns a state with all six stages pending.
func NewPipelineState() PipelineState {
	state := make(PipelineState, len(StageOrder))
	for _, name := range StageOrder {
		state[name] = StageRecord{Status: StagePending}
	}
	return state
}

// Clone returns an independent copy of the state.
func (p PipelineState) Clone() PipelineState {
	out := make(PipelineState, len(p))
	for name, rec := range p {
		out[name] = rec
	}
	return out
}
