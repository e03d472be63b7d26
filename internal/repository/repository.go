// Package repository defines and implements persistence for run history
// and the misinformation log.
package repository

import (
	"context"
	"errors"

	"github.com/zerify/zerify/internal/zerify"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// HistoryRepository archives completed verification runs. Entries are
// append-only; the only deletion is a bulk clear.
type HistoryRepository interface {
	Append(ctx context.Context, entry *zerify.HistoryEntry) error
	ListAll(ctx context.Context) ([]*zerify.HistoryEntry, error)
	Get(ctx context.Context, id string) (*zerify.HistoryEntry, error)
	Clear(ctx context.Context) error
}

// MisinfoRepository stores misinformation records keyed by domain.
// Put upserts; a later run for the same domain replaces the record.
type MisinfoRepository interface {
	Put(ctx context.Context, record *zerify.MisinformationRecord) error
	GetByDomain(ctx context.Context, domain string) (*zerify.MisinformationRecord, error)
	ListAll(ctx context.Context) ([]*zerify.MisinformationRecord, error)
}
