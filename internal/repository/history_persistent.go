package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zerify/zerify/internal/db"
	"github.com/zerify/zerify/internal/zerify"
)

// PersistentHistoryRepository stores history entries in PostgreSQL.
type PersistentHistoryRepository struct {
	db *db.DB
}

// NewPersistentHistory creates a PostgreSQL-backed history repository.
func NewPersistentHistory(database *db.DB) *PersistentHistoryRepository {
	return &PersistentHistoryRepository{db: database}
}

func (r *PersistentHistoryRepository) Append(ctx context.Context, entry *zerify.HistoryEntry) error {
	stateJSON, err := json.Marshal(entry.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	resultsJSON, err := json.Marshal(entry.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = r.db.Pool.ExecContext(ctx, `
		INSERT INTO history (id, input, report, state, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Input, entry.Report, stateJSON, resultsJSON, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *PersistentHistoryRepository) Get(ctx context.Context, id string) (*zerify.HistoryEntry, error) {
	row := r.db.Pool.QueryRowContext(ctx, `
		SELECT id, input, report, state, results, created_at
		FROM history WHERE id = $1`, id)
	entry, err := scanHistoryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, err
}

func (r *PersistentHistoryRepository) ListAll(ctx context.Context) ([]*zerify.HistoryEntry, error) {
	rows, err := r.db.Pool.QueryContext(ctx, `
		SELECT id, input, report, state, results, created_at
		FROM history ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []*zerify.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *PersistentHistoryRepository) Clear(ctx context.Context) error {
	_, err := r.db.Pool.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryEntry(row rowScanner) (*zerify.HistoryEntry, error) {
	var entry zerify.HistoryEntry
	var stateJSON, resultsJSON []byte
	if err := row.Scan(&entry.ID, &entry.Input, &entry.Report, &stateJSON, &resultsJSON, &entry.Timestamp); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stateJSON, &entry.State); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if err := json.Unmarshal(resultsJSON, &entry.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &entry, nil
}
