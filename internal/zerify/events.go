package zerify

// EventType discriminates pipeline progress events.
type EventType string

const (
	// EventStageUpdate is emitted synchronously after every stage status
	// transition, before the next stage begins.
	EventStageUpdate EventType = "stage_update"
	// EventReportChunk carries one chunk of the streamed synthesis report.
	EventReportChunk EventType = "report_chunk"
	// EventWarning is emitted before the run starts when the input's
	// domain already sits on the misinformation log.
	EventWarning EventType = "warning"
)

// PipelineEvent is a progress notification from a verification run. It is
// the only channel through which outside observers (UI, logging) learn
// pipeline progress.
type PipelineEvent struct {
	Type   EventType             `json:"type"`
	Stage  StageName             `json:"stage,omitempty"`
	Record StageRecord           `json:"record,omitempty"`
	State  PipelineState         `json:"state,omitempty"`
	Chunk  string                `json:"chunk,omitempty"`
	Flag   *MisinformationRecord `json:"flag,omitempty"`
}

// Observer receives pipeline events. Calls are made from the run's own
// goroutine in execution order; implementations must not block for long.
type Observer func(PipelineEvent)
