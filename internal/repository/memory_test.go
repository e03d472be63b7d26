package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zerify/zerify/internal/zerify"
)

func entryAt(id string, ts time.Time) *zerify.HistoryEntry {
	return &zerify.HistoryEntry{ID: id, Input: "https://example.com/" + id, Timestamp: ts}
}

func TestMemoryHistory_AppendGetClear(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistory()

	now := time.Now().UTC()
	if err := repo.Append(ctx, entryAt("a", now)); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("Get ID = %q, want %q", got.ID, "a")
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	entries, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("len after Clear = %d, want 0", len(entries))
	}
}

func TestMemoryHistory_ListAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistory()

	base := time.Now().UTC()
	repo.Append(ctx, entryAt("old", base.Add(-2*time.Hour)))
	repo.Append(ctx, entryAt("new", base))
	repo.Append(ctx, entryAt("mid", base.Add(-time.Hour)))

	entries, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{"new", "mid", "old"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(entries), len(wantOrder))
	}
	for i, want := range wantOrder {
		if entries[i].ID != want {
			t.Errorf("entries[%d].ID = %q, want %q", i, entries[i].ID, want)
		}
	}
}

func TestMemoryMisinfo_PutUpsertsByDomain(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMisinfo()

	first := &zerify.MisinformationRecord{Domain: "example.com", TrustScore: 20, Timestamp: time.Now().UTC()}
	if err := repo.Put(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := &zerify.MisinformationRecord{Domain: "example.com", TrustScore: 35, Timestamp: time.Now().UTC()}
	if err := repo.Put(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByDomain(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.TrustScore != 35 {
		t.Errorf("TrustScore = %d, want 35 after upsert", got.TrustScore)
	}

	records, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("len = %d, want 1 (same domain replaces)", len(records))
	}
}

func TestMemoryMisinfo_AbsentDomainIsNotAnError(t *testing.T) {
	repo := NewMemoryMisinfo()
	got, err := repo.GetByDomain(context.Background(), "never-flagged.org")
	if err != nil {
		t.Fatalf("GetByDomain returned error: %v", err)
	}
	if got != nil {
		t.Errorf("record = %+v, want nil for unflagged domain", got)
	}
}
