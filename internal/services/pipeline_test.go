package services

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
	"github.com/zerify/zerify/internal/zerify/ports"
)

// fakeAgents implements ports.Agents with per-test overrides. Unset
// operations return benign defaults.
type fakeAgents struct {
	ingest       func(ctx context.Context, url string) (*zerify.IngestionResult, error)
	analyzeText  func(ctx context.Context, text string) (*zerify.TextualAnalysis, error)
	analyzeEmo   func(ctx context.Context, text string) (*zerify.EmotionAnalysis, error)
	analyzeVis   func(ctx context.Context, assets []zerify.MediaAsset) (*zerify.VisualAnalysis, error)
	analyzeSrc   func(ctx context.Context, domain string) (*zerify.SourceIntelligence, error)
	synthesize   func(ctx context.Context, results *zerify.Analysis) (iter.Seq2[string, error], error)
	startFollow  func(ctx context.Context, report string) (ports.Session, error)
}

func (f *fakeAgents) Ingest(ctx context.Context, url string) (*zerify.IngestionResult, error) {
	if f.ingest != nil {
		return f.ingest(ctx, url)
	}
	return &zerify.IngestionResult{Text: "article body", Domain: "example.com"}, nil
}

func (f *fakeAgents) AnalyzeText(ctx context.Context, text string) (*zerify.TextualAnalysis, error) {
	if f.analyzeText != nil {
		return f.analyzeText(ctx, text)
	}
	return &zerify.TextualAnalysis{Summary: "a summary", Sentiment: zerify.SentimentNeutral}, nil
}

func (f *fakeAgents) AnalyzeEmotion(ctx context.Context, text string) (*zerify.EmotionAnalysis, error) {
	if f.analyzeEmo != nil {
		return f.analyzeEmo(ctx, text)
	}
	return &zerify.EmotionAnalysis{DominantEmotion: "Calm", ManipulationLevel: zerify.LevelLow}, nil
}

func (f *fakeAgents) AnalyzeVisual(ctx context.Context, assets []zerify.MediaAsset) (*zerify.VisualAnalysis, error) {
	if f.analyzeVis != nil {
		return f.analyzeVis(ctx, assets)
	}
	return &zerify.VisualAnalysis{Insights: []zerify.VisualInsight{{Source: "Uploaded Image", ManipulationFlag: zerify.LevelLow}}}, nil
}

func (f *fakeAgents) AnalyzeSource(ctx context.Context, domain string) (*zerify.SourceIntelligence, error) {
	if f.analyzeSrc != nil {
		return f.analyzeSrc(ctx, domain)
	}
	return &zerify.SourceIntelligence{Validity: zerify.ValidityHigh, TrustScore: 90}, nil
}

func (f *fakeAgents) Synthesize(ctx context.Context, results *zerify.Analysis) (iter.Seq2[string, error], error) {
	if f.synthesize != nil {
		return f.synthesize(ctx, results)
	}
	return chunkStream("# Brief\n", "All clear."), nil
}

func (f *fakeAgents) Compare(ctx context.Context, entries []*zerify.HistoryEntry) (iter.Seq2[string, error], error) {
	return chunkStream("comparison"), nil
}

func (f *fakeAgents) StartFollowUp(ctx context.Context, report string) (ports.Session, error) {
	if f.startFollow != nil {
		return f.startFollow(ctx, report)
	}
	return fakeSession{}, nil
}

type fakeSession struct{}

func (fakeSession) Send(ctx context.Context, message string) (iter.Seq2[string, error], error) {
	return chunkStream("answer"), nil
}

func chunkStream(chunks ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func newTestPipeline(agents ports.Agents) (*Pipeline, repository.HistoryRepository, repository.MisinfoRepository) {
	history := repository.NewMemoryHistory()
	misinfo := repository.NewMemoryMisinfo()
	p := NewPipeline(agents, nil, history, misinfo)
	p.SetRetryPolicy(zerify.RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      4 * time.Millisecond,
		BackoffFactor: 2.0,
	})
	return p, history, misinfo
}

func collectEvents(events *[]zerify.PipelineEvent) zerify.Observer {
	return func(ev zerify.PipelineEvent) { *events = append(*events, ev) }
}

func TestRun_URLHappyPath(t *testing.T) {
	p, history, _ := newTestPipeline(&fakeAgents{})

	var events []zerify.PipelineEvent
	result, err := p.Run(context.Background(), &zerify.RunInput{URL: "https://www.example.com/story"}, collectEvents(&events))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantReport := "# Brief\nAll clear."
	if result.Report != wantReport {
		t.Errorf("Report = %q, want %q", result.Report, wantReport)
	}

	// Every stage but visual reached a completed state; visual skipped.
	wantStatus := map[zerify.StageName]zerify.StageStatus{
		zerify.StageContentIngestion:   zerify.StageCompleted,
		zerify.StageTextualAnalysis:    zerify.StageCompleted,
		zerify.StageEmotionAnalysis:    zerify.StageCompleted,
		zerify.StageVisualAnalysis:     zerify.StageSkipped,
		zerify.StageSourceIntelligence: zerify.StageCompleted,
		zerify.StageFinalSynthesis:     zerify.StageCompleted,
	}
	for stage, want := range wantStatus {
		if got := result.State[stage].Status; got != want {
			t.Errorf("stage %q status = %q, want %q", stage, got, want)
		}
	}

	if result.State[zerify.StageEmotionAnalysis].Details != "Emotion: Calm" {
		t.Errorf("emotion details = %q, want %q", result.State[zerify.StageEmotionAnalysis].Details, "Emotion: Calm")
	}
	if result.State[zerify.StageVisualAnalysis].Details != "No visual media uploaded" {
		t.Errorf("visual details = %q", result.State[zerify.StageVisualAnalysis].Details)
	}

	// Report chunks concatenate to the final report.
	var streamed strings.Builder
	for _, ev := range events {
		if ev.Type == zerify.EventReportChunk {
			streamed.WriteString(ev.Chunk)
		}
	}
	if streamed.String() != wantReport {
		t.Errorf("streamed chunks = %q, want %q", streamed.String(), wantReport)
	}

	// Exactly one history entry, recorded with the URL as input.
	entries, err := history.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(entries))
	}
	if entries[0].Input != "https://www.example.com/story" {
		t.Errorf("history input = %q", entries[0].Input)
	}
	if result.Session == nil {
		t.Error("expected a follow-up session on success")
	}
}

func TestRun_DirectTextSkipsSourceAndVisual(t *testing.T) {
	p, _, _ := newTestPipeline(&fakeAgents{})

	result, err := p.Run(context.Background(), &zerify.RunInput{Text: "a bare claim"}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := result.State[zerify.StageContentIngestion].Details; got != "Text processed" {
		t.Errorf("ingestion details = %q, want %q", got, "Text processed")
	}
	if got := result.State[zerify.StageSourceIntelligence]; got.Status != zerify.StageSkipped || got.Details != "No domain to verify" {
		t.Errorf("source record = %+v, want skipped/No domain to verify", got)
	}
	if got := result.State[zerify.StageVisualAnalysis].Status; got != zerify.StageSkipped {
		t.Errorf("visual status = %q, want skipped", got)
	}
	if result.Results.Source != nil {
		t.Error("direct text must not produce source intelligence")
	}
}

func TestRun_NoInput(t *testing.T) {
	p, _, _ := newTestPipeline(&fakeAgents{})
	_, err := p.Run(context.Background(), &zerify.RunInput{}, nil)
	if !errors.Is(err, zerify.ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
}

func TestRun_FatalErrorLeavesLaterStagesPending(t *testing.T) {
	cause := zerify.NewAgentError(zerify.StageVisualAnalysis, zerify.KindInternal, errors.New("model refused"))
	p, history, _ := newTestPipeline(&fakeAgents{
		analyzeVis: func(ctx context.Context, assets []zerify.MediaAsset) (*zerify.VisualAnalysis, error) {
			return nil, cause
		},
	})

	var events []zerify.PipelineEvent
	input := &zerify.RunInput{
		Text:  "claim text",
		Image: &zerify.MediaAsset{Name: "photo.jpg", MIMEType: "image/jpeg", Data: []byte{1}},
	}
	_, err := p.Run(context.Background(), input, collectEvents(&events))

	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PipelineError", err)
	}
	if perr.Stage != zerify.StageVisualAnalysis {
		t.Errorf("failed stage = %q, want visual analysis", perr.Stage)
	}
	if !strings.Contains(perr.Message, "corrupted or in an unsupported format") {
		t.Errorf("diagnostic = %q, want visual template", perr.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("PipelineError should wrap the original cause")
	}

	// The last emitted state: visual errored, later stages untouched.
	last := events[len(events)-1].State
	if got := last[zerify.StageVisualAnalysis].Status; got != zerify.StageError {
		t.Errorf("visual status = %q, want error", got)
	}
	for _, stage := range []zerify.StageName{zerify.StageSourceIntelligence, zerify.StageFinalSynthesis} {
		if got := last[stage].Status; got != zerify.StagePending {
			t.Errorf("stage %q status = %q, want pending after halt", stage, got)
		}
	}

	entries, _ := history.ListAll(context.Background())
	if len(entries) != 0 {
		t.Errorf("len(history) = %d, want 0 after failed run", len(entries))
	}
}

func TestRun_RateLimitedStageFallsBack(t *testing.T) {
	p, _, _ := newTestPipeline(&fakeAgents{
		analyzeText: func(ctx context.Context, text string) (*zerify.TextualAnalysis, error) {
			return nil, zerify.NewAgentError(zerify.StageTextualAnalysis, zerify.KindRateLimited, errors.New("429"))
		},
	})

	result, err := p.Run(context.Background(), &zerify.RunInput{Text: "claim"}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := result.State[zerify.StageTextualAnalysis].Status; got != zerify.StageCompleted {
		t.Errorf("textual status = %q, want completed via fallback", got)
	}
	if result.Results.Textual == nil || result.Results.Textual.Sentiment != zerify.SentimentNeutral {
		t.Errorf("fallback textual = %+v, want neutral placeholder", result.Results.Textual)
	}
}

func TestRun_LowTrustFlagsDomainAndWarnsNextRun(t *testing.T) {
	p, _, misinfo := newTestPipeline(&fakeAgents{
		analyzeSrc: func(ctx context.Context, domain string) (*zerify.SourceIntelligence, error) {
			return &zerify.SourceIntelligence{Validity: zerify.ValidityLow, TrustScore: 15}, nil
		},
	})

	url := "https://www.example.com/story"
	if _, err := p.Run(context.Background(), &zerify.RunInput{URL: url}, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	record, err := misinfo.GetByDomain(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if record == nil {
		t.Fatal("expected a misinformation record below the threshold")
	}
	if record.TrustScore != 15 {
		t.Errorf("TrustScore = %d, want 15", record.TrustScore)
	}

	var events []zerify.PipelineEvent
	if _, err := p.Run(context.Background(), &zerify.RunInput{URL: url}, collectEvents(&events)); err != nil {
		t.Fatalf("second run: %v", err)
	}
	var warned bool
	for _, ev := range events {
		if ev.Type == zerify.EventWarning {
			warned = true
			if ev.Flag.Domain != "example.com" {
				t.Errorf("warning domain = %q", ev.Flag.Domain)
			}
		}
	}
	if !warned {
		t.Error("expected a warning event for a previously flagged domain")
	}
}

func TestRun_SynthesisGateWithoutEvidence(t *testing.T) {
	// Ingestion succeeds but yields nothing usable: no text, no domain,
	// no media. Everything downstream skips and synthesis has no inputs.
	p, _, _ := newTestPipeline(&fakeAgents{
		ingest: func(ctx context.Context, url string) (*zerify.IngestionResult, error) {
			return &zerify.IngestionResult{}, nil
		},
	})

	_, err := p.Run(context.Background(), &zerify.RunInput{URL: "https://example.com/empty"}, nil)
	if !errors.Is(err, zerify.ErrNoEvidence) {
		t.Fatalf("err = %v, want ErrNoEvidence", err)
	}

	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PipelineError", err)
	}
	// The gate fires before synthesis starts, so no stage was running.
	if perr.Stage != "" {
		t.Errorf("failed stage = %q, want none", perr.Stage)
	}
}

func TestRun_SecondConcurrentRunRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	p, _, _ := newTestPipeline(&fakeAgents{
		analyzeText: func(ctx context.Context, text string) (*zerify.TextualAnalysis, error) {
			startedOnce.Do(func() { close(started) })
			<-release
			return &zerify.TextualAnalysis{Sentiment: zerify.SentimentNeutral}, nil
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.Run(context.Background(), &zerify.RunInput{Text: "claim"}, nil); err != nil {
			t.Errorf("first run failed: %v", err)
		}
	}()

	<-started
	_, err := p.Run(context.Background(), &zerify.RunInput{Text: "another"}, nil)
	if !errors.Is(err, zerify.ErrRunActive) {
		t.Errorf("concurrent run err = %v, want ErrRunActive", err)
	}
	close(release)
	wg.Wait()

	// Once the first run finishes the pipeline accepts work again.
	if _, err := p.Run(context.Background(), &zerify.RunInput{Text: "third"}, nil); err != nil {
		t.Errorf("run after completion failed: %v", err)
	}
}

func TestRun_StreamErrorFailsSynthesis(t *testing.T) {
	streamErr := zerify.NewAgentError(zerify.StageFinalSynthesis, zerify.KindInternal, errors.New("stream cut"))
	p, history, _ := newTestPipeline(&fakeAgents{
		synthesize: func(ctx context.Context, results *zerify.Analysis) (iter.Seq2[string, error], error) {
			return func(yield func(string, error) bool) {
				if !yield("partial ", nil) {
					return
				}
				yield("", streamErr)
			}, nil
		},
	})

	_, err := p.Run(context.Background(), &zerify.RunInput{Text: "claim"}, nil)
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PipelineError", err)
	}
	if perr.Stage != zerify.StageFinalSynthesis {
		t.Errorf("failed stage = %q, want final synthesis", perr.Stage)
	}
	if !strings.Contains(perr.Message, "could not generate a brief") {
		t.Errorf("diagnostic = %q, want synthesis template", perr.Message)
	}

	entries, _ := history.ListAll(context.Background())
	if len(entries) != 0 {
		t.Errorf("len(history) = %d, want 0 after mid-stream failure", len(entries))
	}
}
