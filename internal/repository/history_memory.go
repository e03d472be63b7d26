package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	memstore "github.com/zerify/zerify/internal/repository/memory"
	"github.com/zerify/zerify/internal/zerify"
)

// MemoryHistoryRepository is a thread-safe in-memory HistoryRepository.
type MemoryHistoryRepository struct {
	store *memstore.Store[*zerify.HistoryEntry]
}

// NewMemoryHistory creates an empty in-memory history repository.
func NewMemoryHistory() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		store: memstore.New(func(e *zerify.HistoryEntry) string { return e.ID }),
	}
}

func (r *MemoryHistoryRepository) Append(ctx context.Context, entry *zerify.HistoryEntry) error {
	return r.store.Set(ctx, entry)
}

func (r *MemoryHistoryRepository) Get(ctx context.Context, id string) (*zerify.HistoryEntry, error) {
	entry, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, err
}

// ListAll returns entries newest first.
func (r *MemoryHistoryRepository) ListAll(ctx context.Context) ([]*zerify.HistoryEntry, error) {
	entries, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func (r *MemoryHistoryRepository) Clear(ctx context.Context) error {
	return r.store.Reset(ctx)
}
