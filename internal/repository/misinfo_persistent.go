package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zerify/zerify/internal/db"
	"github.com/zerify/zerify/internal/zerify"
)

// PersistentMisinfoRepository stores the misinformation log in PostgreSQL.
type PersistentMisinfoRepository struct {
	db *db.DB
}

// NewPersistentMisinfo creates a PostgreSQL-backed misinformation log.
func NewPersistentMisinfo(database *db.DB) *PersistentMisinfoRepository {
	return &PersistentMisinfoRepository{db: database}
}

func (r *PersistentMisinfoRepository) Put(ctx context.Context, record *zerify.MisinformationRecord) error {
	_, err := r.db.Pool.ExecContext(ctx, `
		INSERT INTO misinformation_log (domain, url, trust_score, flagged_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (domain) DO UPDATE
		SET url = EXCLUDED.url, trust_score = EXCLUDED.trust_score, flagged_at = EXCLUDED.flagged_at`,
		record.Domain, record.URL, record.TrustScore, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert misinformation record: %w", err)
	}
	return nil
}

func (r *PersistentMisinfoRepository) GetByDomain(ctx context.Context, domain string) (*zerify.MisinformationRecord, error) {
	var record zerify.MisinformationRecord
	err := r.db.Pool.QueryRowContext(ctx, `
		SELECT domain, url, trust_score, flagged_at
		FROM misinformation_log WHERE domain = $1`, domain).
		Scan(&record.Domain, &record.URL, &record.TrustScore, &record.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get misinformation record: %w", err)
	}
	return &record, nil
}

func (r *PersistentMisinfoRepository) ListAll(ctx context.Context) ([]*zerify.MisinformationRecord, error) {
	rows, err := r.db.Pool.QueryContext(ctx, `
		SELECT domain, url, trust_score, flagged_at
		FROM misinformation_log ORDER BY flagged_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list misinformation records: %w", err)
	}
	defer rows.Close()

	var records []*zerify.MisinformationRecord
	for rows.Next() {
		var record zerify.MisinformationRecord
		if err := rows.Scan(&record.Domain, &record.URL, &record.TrustScore, &record.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
