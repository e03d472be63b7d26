// Package ports declares the capability contracts the orchestration core
// consumes. Implementations live in internal/agents and internal/extract.
package ports

import (
	"context"
	"iter"

	"github.com/zerify/zerify/internal/zerify"
)

// Agents bundles the analytical capabilities backing the pipeline stages.
// Every operation is a single blocking call; streams yield text chunks in
// generation order and are not restartable.
type Agents interface {
	Ingest(ctx context.Context, url string) (*zerify.IngestionResult, error)
	AnalyzeText(ctx context.Context, text string) (*zerify.TextualAnalysis, error)
	AnalyzeEmotion(ctx context.Context, text string) (*zerify.EmotionAnalysis, error)
	AnalyzeVisual(ctx context.Context, assets []zerify.MediaAsset) (*zerify.VisualAnalysis, error)
	AnalyzeSource(ctx context.Context, domain string) (*zerify.SourceIntelligence, error)
	Synthesize(ctx context.Context, results *zerify.Analysis) (iter.Seq2[string, error], error)
	Compare(ctx context.Context, entries []*zerify.HistoryEntry) (iter.Seq2[string, error], error)
	StartFollowUp(ctx context.Context, report string) (Session, error)
}

// Session is a follow-up conversation seeded with a finished report.
type Session interface {
	Send(ctx context.Context, message string) (iter.Seq2[string, error], error)
}

// FrameExtractor reduces a video to a fixed-size, evenly spaced sequence
// of still frames.
type FrameExtractor interface {
	Frames(ctx context.Context, video *zerify.MediaAsset, count int) ([]zerify.MediaAsset, error)
}
