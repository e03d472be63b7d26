package repository

import (
	"context"
	"errors"
	"sort"

	memstore "github.com/zerify/zerify/internal/repository/memory"
	"github.com/zerify/zerify/internal/zerify"
)

// MemoryMisinfoRepository is a thread-safe in-memory MisinfoRepository.
type MemoryMisinfoRepository struct {
	store *memstore.Store[*zerify.MisinformationRecord]
}

// NewMemoryMisinfo creates an empty in-memory misinformation log.
func NewMemoryMisinfo() *MemoryMisinfoRepository {
	return &MemoryMisinfoRepository{
		store: memstore.New(func(r *zerify.MisinformationRecord) string { return r.Domain }),
	}
}

func (r *MemoryMisinfoRepository) Put(ctx context.Context, record *zerify.MisinformationRecord) error {
	return r.store.Set(ctx, record)
}

// GetByDomain returns (nil, nil) when the domain has never been flagged;
// callers treat absence as a normal condition, not an error.
func (r *MemoryMisinfoRepository) GetByDomain(ctx context.Context, domain string) (*zerify.MisinformationRecord, error) {
	record, err := r.store.Get(ctx, domain)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, nil
	}
	return record, err
}

// ListAll returns records most recently flagged first.
func (r *MemoryMisinfoRepository) ListAll(ctx context.Context) ([]*zerify.MisinformationRecord, error) {
	records, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}
