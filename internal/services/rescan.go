package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
	"github.com/zerify/zerify/internal/zerify/ports"
)

// Rescanner periodically re-verifies every domain on the misinformation
// log so scores recover when a source cleans up, or stay flagged when it
// does not. Each sweep refreshes the stored trust score in place.
type Rescanner struct {
	agents  ports.Agents
	misinfo repository.MisinfoRepository
	policy  zerify.RetryPolicy
	cron    *cron.Cron
}

func NewRescanner(agents ports.Agents, misinfo repository.MisinfoRepository) *Rescanner {
	return &Rescanner{
		agents:  agents,
		misinfo: misinfo,
		policy:  zerify.DefaultRetryPolicy(),
		cron:    cron.New(),
	}
}

// Start schedules sweeps with the given cron expression and begins
// running them. It returns an error only for an invalid expression.
func (r *Rescanner) Start(ctx context.Context, spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		if err := r.Sweep(ctx); err != nil {
			slog.Error("watchlist rescan failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid rescan schedule %q: %w", spec, err)
	}
	r.cron.Start()
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (r *Rescanner) Stop() {
	<-r.cron.Stop().Done()
}

// Sweep re-verifies every flagged domain once. Individual domain failures
// are logged and skipped so one bad lookup cannot stall the sweep.
func (r *Rescanner) Sweep(ctx context.Context) error {
	records, err := r.misinfo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list flagged domains: %w", err)
	}
	for _, record := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.rescan(ctx, record); err != nil {
			slog.Warn("rescan failed", "domain", record.Domain, "err", err)
		}
	}
	return nil
}

func (r *Rescanner) rescan(ctx context.Context, record *zerify.MisinformationRecord) error {
	domain := record.Domain
	result, err := Retry(ctx, r.policy,
		func(ctx context.Context) (*zerify.SourceIntelligence, error) {
			return r.agents.AnalyzeSource(ctx, domain)
		},
		nil,
	)
	if err != nil {
		return err
	}
	updated := &zerify.MisinformationRecord{
		Domain:     domain,
		URL:        record.URL,
		TrustScore: result.TrustScore,
		Timestamp:  time.Now().UTC(),
	}
	slog.Info("rescored flagged domain", "domain", domain, "previous", record.TrustScore, "current", result.TrustScore)
	return r.misinfo.Put(ctx, updated)
}
