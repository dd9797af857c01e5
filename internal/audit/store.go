// Package audit records completed index builds in Postgres so operators can
// see which corpus range produced the live index and how long builds take.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/factive/claimsearch/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS index_builds (
    id             BIGSERIAL PRIMARY KEY,
    corpus_dir     TEXT        NOT NULL,
    start_file     INTEGER     NOT NULL,
    end_file       INTEGER     NOT NULL,
    words          INTEGER     NOT NULL,
    documents      INTEGER     NOT NULL,
    name_leaf_files INTEGER    NOT NULL,
    doc_leaf_files INTEGER     NOT NULL,
    duration_ms    BIGINT      NOT NULL,
    completed_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// BuildRecord is one row of the index_builds table.
type BuildRecord struct {
	CorpusDir     string
	StartFile     int
	EndFile       int
	Words         int
	Documents     int
	NameLeafFiles int
	DocLeafFiles  int
	Duration      time.Duration
}

// Store persists build records.
type Store struct {
	client *postgres.Client
}

// NewStore creates a Store over an open Postgres client.
func NewStore(client *postgres.Client) *Store {
	return &Store{client: client}
}

// EnsureSchema creates the index_builds table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating index_builds table: %w", err)
	}
	return nil
}

// RecordBuild inserts one completed build and returns its row id.
func (s *Store) RecordBuild(ctx context.Context, rec BuildRecord) (int64, error) {
	var id int64
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO index_builds
				(corpus_dir, start_file, end_file, words, documents,
				 name_leaf_files, doc_leaf_files, duration_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			rec.CorpusDir, rec.StartFile, rec.EndFile, rec.Words,
			rec.Documents, rec.NameLeafFiles, rec.DocLeafFiles,
			rec.Duration.Milliseconds(),
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("recording index build: %w", err)
	}
	return id, nil
}

// LastBuild returns the most recent build record, or (nil, nil) when none
// exists.
func (s *Store) LastBuild(ctx context.Context) (*BuildRecord, error) {
	row := s.client.DB.QueryRowContext(ctx, `
		SELECT corpus_dir, start_file, end_file, words, documents,
		       name_leaf_files, doc_leaf_files, duration_ms
		FROM index_builds
		ORDER BY completed_at DESC
		LIMIT 1`)
	var rec BuildRecord
	var durationMs int64
	err := row.Scan(&rec.CorpusDir, &rec.StartFile, &rec.EndFile, &rec.Words,
		&rec.Documents, &rec.NameLeafFiles, &rec.DocLeafFiles, &durationMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last build: %w", err)
	}
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	return &rec, nil
}
