// Package services contains the verification pipeline orchestration:
// stage sequencing, retry policy, risk scoring, and history management.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zerify/zerify/internal/agents"
	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
	"github.com/zerify/zerify/internal/zerify/ports"
)

// DefaultFrameCount is how many stills are sampled from a video.
const DefaultFrameCount = 5

// Pipeline drives the six verification stages in fixed order, threading
// the result aggregate forward and publishing a state snapshot after
// every transition. A Pipeline executes one run at a time; a second Run
// while one is active is rejected with ErrRunActive.
type Pipeline struct {
	agents     ports.Agents
	extractor  ports.FrameExtractor
	history    repository.HistoryRepository
	misinfo    repository.MisinfoRepository
	policy     zerify.RetryPolicy
	frameCount int

	mu     sync.Mutex
	active bool
}

// NewPipeline wires the orchestrator. extractor may be nil when video
// input is not supported by the deployment.
func NewPipeline(agents ports.Agents, extractor ports.FrameExtractor, history repository.HistoryRepository, misinfo repository.MisinfoRepository) *Pipeline {
	return &Pipeline{
		agents:     agents,
		extractor:  extractor,
		history:    history,
		misinfo:    misinfo,
		policy:     zerify.DefaultRetryPolicy(),
		frameCount: DefaultFrameCount,
	}
}

// SetRetryPolicy overrides the retry policy for rate-limited stages.
func (p *Pipeline) SetRetryPolicy(policy zerify.RetryPolicy) { p.policy = policy }

// SetFrameCount overrides how many frames are sampled from videos.
func (p *Pipeline) SetFrameCount(n int) {
	if n > 0 {
		p.frameCount = n
	}
}

// RunResult is the terminal artifact of a successful run.
type RunResult struct {
	Report  string
	State   zerify.PipelineState
	Results *zerify.Analysis
	Risk    zerify.RiskAssessment
	Entry   *zerify.HistoryEntry
	Session ports.Session
}

// PipelineError carries the stage-specific, user-facing diagnostic for a
// failed run alongside the underlying cause.
type PipelineError struct {
	Stage   zerify.StageName // empty when no stage was attributable
	Message string
	Err     error
}

func (e *PipelineError) Error() string { return e.Message }
func (e *PipelineError) Unwrap() error { return e.Err }

// run is the per-execution state: the orchestrator owns it exclusively;
// observers only ever receive cloned snapshots.
type run struct {
	input   *zerify.RunInput
	state   zerify.PipelineState
	results *zerify.Analysis
	observe zerify.Observer
}

func (r *run) transition(stage zerify.StageName, status zerify.StageStatus, details string) {
	r.state[stage] = zerify.StageRecord{Status: status, Details: details}
	r.observe(zerify.PipelineEvent{
		Type:   zerify.EventStageUpdate,
		Stage:  stage,
		Record: r.state[stage],
		State:  r.state.Clone(),
	})
}

// Run executes a full verification run. The observer receives every stage
// transition and report chunk synchronously, in execution order; pass nil
// to discard progress.
func (p *Pipeline) Run(ctx context.Context, input *zerify.RunInput, observe zerify.Observer) (*RunResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return nil, zerify.ErrRunActive
	}
	p.active = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.active = false
		p.mu.Unlock()
	}()

	if observe == nil {
		observe = func(zerify.PipelineEvent) {}
	}
	r := &run{
		input:   input,
		state:   zerify.NewPipelineState(),
		results: &zerify.Analysis{},
		observe: observe,
	}

	p.warnIfFlagged(ctx, r)

	report, err := p.executeStages(ctx, r)
	if err != nil {
		return nil, p.fail(r, err)
	}

	entry := zerify.NewHistoryEntry(input.Describe(), report, r.state.Clone(), r.results)
	if err := p.history.Append(ctx, entry); err != nil {
		slog.Warn("failed to archive run", "id", entry.ID, "err", err)
	}

	session, err := p.agents.StartFollowUp(ctx, report)
	if err != nil {
		slog.Warn("failed to start follow-up session", "err", err)
		session = nil
	}

	return &RunResult{
		Report:  report,
		State:   r.state.Clone(),
		Results: r.results,
		Risk:    RiskScore(r.results),
		Entry:   entry,
		Session: session,
	}, nil
}

// warnIfFlagged emits a warning event when the input's domain is already
// on the misinformation log. Lookup failures are logged, never fatal.
func (p *Pipeline) warnIfFlagged(ctx context.Context, r *run) {
	domain := zerify.DomainOf(r.input.URL)
	if domain == "" {
		return
	}
	record, err := p.misinfo.GetByDomain(ctx, domain)
	if err != nil {
		slog.Warn("could not check misinformation log", "domain", domain, "err", err)
		return
	}
	if record != nil {
		r.observe(zerify.PipelineEvent{Type: zerify.EventWarning, Flag: record})
	}
}

// executeStages runs the six stages sequentially, returning the final
// report text. Any returned error is stage-fatal: execution halts and
// stages after the failing one remain pending.
func (p *Pipeline) executeStages(ctx context.Context, r *run) (string, error) {
	if err := p.runIngestion(ctx, r); err != nil {
		return "", err
	}
	if err := p.runTextual(ctx, r); err != nil {
		return "", err
	}
	if err := p.runEmotion(ctx, r); err != nil {
		return "", err
	}
	if err := p.runVisual(ctx, r); err != nil {
		return "", err
	}
	if err := p.runSource(ctx, r); err != nil {
		return "", err
	}
	return p.runSynthesis(ctx, r)
}

func (p *Pipeline) runIngestion(ctx context.Context, r *run) error {
	const stage = zerify.StageContentIngestion
	switch {
	case r.input.URL != "":
		r.transition(stage, zerify.StageRunning, "Ingesting content from URL...")
		result, err := p.agents.Ingest(ctx, r.input.URL)
		if err != nil {
			return err
		}
		r.results.Ingestion = result
		r.transition(stage, zerify.StageCompleted, "Text extracted")
	case r.input.Text != "":
		r.transition(stage, zerify.StageRunning, "Processing direct text...")
		r.results.Ingestion = &zerify.IngestionResult{
			Text:   r.input.Text,
			Images: []string{},
			Domain: "", // no domain for direct text
		}
		r.transition(stage, zerify.StageCompleted, "Text processed")
	default:
		r.transition(stage, zerify.StageSkipped, "No URL or text provided")
	}
	return nil
}

func (p *Pipeline) runTextual(ctx context.Context, r *run) error {
	const stage = zerify.StageTextualAnalysis
	if r.results.Ingestion == nil || r.results.Ingestion.Text == "" {
		r.transition(stage, zerify.StageSkipped, "No text to analyze")
		return nil
	}

	r.transition(stage, zerify.StageRunning, "Analyzing text...")
	text := r.results.Ingestion.Text
	result, err := Retry(ctx, p.policy,
		func(ctx context.Context) (*zerify.TextualAnalysis, error) {
			return p.agents.AnalyzeText(ctx, text)
		},
		agents.FallbackTextual,
	)
	if err != nil {
		return err
	}
	r.results.Textual = result
	r.transition(stage, zerify.StageCompleted, "Summary and entities extracted")
	return nil
}

func (p *Pipeline) runEmotion(ctx context.Context, r *run) error {
	const stage = zerify.StageEmotionAnalysis
	if r.results.Ingestion == nil || r.results.Ingestion.Text == "" {
		r.transition(stage, zerify.StageSkipped, "No text to analyze")
		return nil
	}

	r.transition(stage, zerify.StageRunning, "Analyzing emotional tone...")
	text := r.results.Ingestion.Text
	result, err := Retry(ctx, p.policy,
		func(ctx context.Context) (*zerify.EmotionAnalysis, error) {
			return p.agents.AnalyzeEmotion(ctx, text)
		},
		agents.FallbackEmotion,
	)
	if err != nil {
		return err
	}
	r.results.Emotion = result
	r.transition(stage, zerify.StageCompleted, fmt.Sprintf("Emotion: %s", result.DominantEmotion))
	return nil
}

func (p *Pipeline) runVisual(ctx context.Context, r *run) error {
	const stage = zerify.StageVisualAnalysis
	switch {
	case r.input.Image != nil:
		r.transition(stage, zerify.StageRunning, "Analyzing uploaded image...")
		result, err := p.agents.AnalyzeVisual(ctx, []zerify.MediaAsset{*r.input.Image})
		if err != nil {
			return err
		}
		r.results.Visual = result
		r.transition(stage, zerify.StageCompleted, "Image analysis complete")
	case r.input.Video != nil:
		if p.extractor == nil {
			return zerify.NewAgentError(stage, zerify.KindInvalidInput,
				errors.New("video analysis is not available: no frame extractor configured"))
		}
		r.transition(stage, zerify.StageRunning, "Extracting frames from video...")
		frames, err := p.extractor.Frames(ctx, r.input.Video, p.frameCount)
		if err != nil {
			return zerify.NewAgentError(stage, zerify.KindInvalidInput, err)
		}
		r.transition(stage, zerify.StageRunning, "Analyzing video frames...")
		result, err := p.agents.AnalyzeVisual(ctx, frames)
		if err != nil {
			return err
		}
		r.results.Visual = result
		r.transition(stage, zerify.StageCompleted, "Video analysis complete")
	default:
		r.transition(stage, zerify.StageSkipped, "No visual media uploaded")
	}
	return nil
}

func (p *Pipeline) runSource(ctx context.Context, r *run) error {
	const stage = zerify.StageSourceIntelligence
	if r.results.Ingestion == nil || r.results.Ingestion.Domain == "" {
		r.transition(stage, zerify.StageSkipped, "No domain to verify")
		return nil
	}

	r.transition(stage, zerify.StageRunning, "Verifying source credibility...")
	domain := r.results.Ingestion.Domain
	result, err := Retry(ctx, p.policy,
		func(ctx context.Context) (*zerify.SourceIntelligence, error) {
			return p.agents.AnalyzeSource(ctx, domain)
		},
		func() *zerify.SourceIntelligence { return agents.FallbackSource(domain) },
	)
	if err != nil {
		return err
	}
	r.results.Source = result
	r.transition(stage, zerify.StageCompleted, fmt.Sprintf("Credibility: %s", result.Validity))

	// Secondary write: log untrustworthy sources. Never fails the stage.
	if result.TrustScore < zerify.MisinformationThreshold {
		record := &zerify.MisinformationRecord{
			Domain:     domain,
			URL:        r.input.URL,
			TrustScore: result.TrustScore,
			Timestamp:  time.Now().UTC(),
		}
		if err := p.misinfo.Put(ctx, record); err != nil {
			slog.Warn("failed to save misinformation record", "domain", domain, "err", err)
		}
	}
	return nil
}

func (p *Pipeline) runSynthesis(ctx context.Context, r *run) (string, error) {
	const stage = zerify.StageFinalSynthesis
	if r.results.Textual == nil && r.results.Visual == nil {
		return "", zerify.ErrNoEvidence
	}

	r.transition(stage, zerify.StageRunning, "Generating final brief...")
	stream, err := p.agents.Synthesize(ctx, r.results)
	if err != nil {
		return "", err
	}

	var report string
	for chunk, err := range stream {
		if err != nil {
			return "", err
		}
		report += chunk
		r.observe(zerify.PipelineEvent{Type: zerify.EventReportChunk, Stage: stage, Chunk: chunk})
	}
	r.transition(stage, zerify.StageCompleted, "Brief generated successfully")
	return report, nil
}

// fail marks the failing stage, leaves later stages pending, and wraps
// the cause in a stage-specific user-facing diagnostic.
func (p *Pipeline) fail(r *run, cause error) error {
	failed := r.failingStage()
	if failed != "" && r.state[failed].Status == zerify.StageRunning {
		r.transition(failed, zerify.StageError, cause.Error())
	}
	return &PipelineError{
		Stage:   failed,
		Message: diagnose(failed, cause),
		Err:     cause,
	}
}

// failingStage returns the stage currently running, or one already marked
// error; empty when the failure happened outside any stage.
func (r *run) failingStage() zerify.StageName {
	for _, name := range zerify.StageOrder {
		if r.state[name].Status == zerify.StageRunning {
			return name
		}
	}
	for _, name := range zerify.StageOrder {
		if r.state[name].Status == zerify.StageError {
			return name
		}
	}
	return ""
}

// diagnose maps a failing stage to its user-facing message template, with
// the raw cause always appended for diagnostic transparency.
func diagnose(stage zerify.StageName, cause error) string {
	msg := cause.Error()
	switch stage {
	case zerify.StageContentIngestion:
		return fmt.Sprintf("Content Ingestion failed: %s. Please check if the URL is correct and publicly accessible.", msg)
	case zerify.StageTextualAnalysis:
		return fmt.Sprintf("Textual Analysis failed. The content from the source might be malformed or empty. Details: %s", msg)
	case zerify.StageEmotionAnalysis:
		return fmt.Sprintf("Emotion Analysis failed. The model could not determine the emotional tone of the content. Details: %s", msg)
	case zerify.StageVisualAnalysis:
		return fmt.Sprintf("Visual Analysis failed. The uploaded media might be corrupted or in an unsupported format. Details: %s", msg)
	case zerify.StageSourceIntelligence:
		return fmt.Sprintf("Source Intelligence failed. The model could not verify the source's credibility, which can happen with new or obscure domains. Details: %s", msg)
	case zerify.StageFinalSynthesis:
		return fmt.Sprintf("Final Synthesis failed. The model could not generate a brief from the collected data. Details: %s", msg)
	case "":
		return fmt.Sprintf("Pipeline failed: %s", msg)
	default:
		return fmt.Sprintf("An error occurred during the '%s' step. Details: %s", stage, msg)
	}
}
