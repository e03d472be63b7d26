package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/zerify"
)

func TestCompare_RequiresTwoReports(t *testing.T) {
	svc := NewCompareService(&fakeAgents{}, repository.NewMemoryHistory())

	_, err := svc.Compare(context.Background(), []string{"only-one"})
	assert.ErrorIs(t, err, ErrTooFewReports)
}

func TestCompare_UnknownIDFails(t *testing.T) {
	history := repository.NewMemoryHistory()
	require.NoError(t, history.Append(context.Background(), entryFor("a")))
	svc := NewCompareService(&fakeAgents{}, history)

	_, err := svc.Compare(context.Background(), []string{"a", "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCompare_StreamsBrief(t *testing.T) {
	ctx := context.Background()
	history := repository.NewMemoryHistory()
	require.NoError(t, history.Append(ctx, entryFor("a")))
	require.NoError(t, history.Append(ctx, entryFor("b")))
	svc := NewCompareService(&fakeAgents{}, history)

	chunks, err := svc.Compare(ctx, []string{"a", "b"})
	require.NoError(t, err)

	var out string
	for chunk, err := range chunks {
		require.NoError(t, err)
		out += chunk
	}
	assert.Equal(t, "comparison", out)
}

func entryFor(id string) *zerify.HistoryEntry {
	return &zerify.HistoryEntry{ID: id, Input: "https://example.com/" + id, Report: "report " + id, Timestamp: time.Now().UTC()}
}
