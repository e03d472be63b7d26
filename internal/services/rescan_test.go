package services

import (
	"context"
	"testing"
	"time"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
)

func TestSweep_UpdatesFlaggedDomains(t *testing.T) {
	ctx := context.Background()
	misinfo := repository.NewMemoryMisinfo()
	misinfo.Put(ctx, &zerify.MisinformationRecord{
		Domain:     "stale.example",
		URL:        "https://stale.example/story",
		TrustScore: 15,
		Timestamp:  time.Now().UTC().Add(-24 * time.Hour),
	})

	var checked []string
	agents := &fakeAgents{
		analyzeSrc: func(ctx context.Context, domain string) (*zerify.SourceIntelligence, error) {
			checked = append(checked, domain)
			return &zerify.SourceIntelligence{Validity: zerify.ValidityMedium, TrustScore: 55}, nil
		},
	}
	r := NewRescanner(agents, misinfo)
	r.policy = fastPolicy()

	if err := r.Sweep(ctx); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(checked) != 1 || checked[0] != "stale.example" {
		t.Fatalf("checked domains = %v, want [stale.example]", checked)
	}

	record, err := misinfo.GetByDomain(ctx, "stale.example")
	if err != nil {
		t.Fatal(err)
	}
	if record.TrustScore != 55 {
		t.Errorf("TrustScore = %d, want 55 after rescore", record.TrustScore)
	}
	if record.URL != "https://stale.example/story" {
		t.Errorf("URL = %q, want original preserved", record.URL)
	}
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	r := NewRescanner(&fakeAgents{}, repository.NewMemoryMisinfo())
	if err := r.Start(context.Background(), "not a cron spec"); err == nil {
		t.Fatal("Start should reject an invalid cron expression")
	}
}
