// Package reportstore persists benchmark grid reports to PostgreSQL as
// labeled JSONB snapshots that can be read back later.
package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rsavio/attrfilter/internal/report"
	"github.com/rsavio/attrfilter/pkg/postgres"
)

// Store persists benchmark runs in PostgreSQL.
//
// It requires a `filtering_reports` table:
//
//	CREATE TABLE filtering_reports (
//	    id         BIGSERIAL PRIMARY KEY,
//	    label      TEXT NOT NULL,
//	    data       JSONB NOT NULL,
//	    recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a new report persistence store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "reportstore"),
	}
}

// Save persists one run's full grid of list reports under label, the run
// identifier a caller uses to distinguish benchmark invocations later.
func (s *Store) Save(ctx context.Context, label string, reports []report.ListReport) error {
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("marshaling reports: %w", err)
	}

	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO filtering_reports (label, data, recorded_at) VALUES ($1, $2, $3)`,
		label, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	s.logger.Info("report saved", "label", label, "num_cells", len(reports))
	return nil
}

// Latest loads the most recently saved report under label.
// Returns nil, nil if no report has been saved under that label yet.
func (s *Store) Latest(ctx context.Context, label string) ([]report.ListReport, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM filtering_reports WHERE label = $1 ORDER BY recorded_at DESC LIMIT 1`,
		label,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest report: %w", err)
	}

	var reports []report.ListReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}
	return reports, nil
}

// History returns the last N reports saved under label, newest first.
func (s *Store) History(ctx context.Context, label string, limit int) ([][]report.ListReport, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM filtering_reports WHERE label = $1 ORDER BY recorded_at DESC LIMIT $2`,
		label, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing report history: %w", err)
	}
	defer rows.Close()

	var history [][]report.ListReport
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		var reports []report.ListReport
		if err := json.Unmarshal(data, &reports); err != nil {
			s.logger.Warn("skipping corrupt report", "error", err)
			continue
		}
		history = append(history, reports)
	}

	return history, rows.Err()
}
