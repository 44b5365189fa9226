// Package store persists review reports and collaborator call records in
// sqlite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/lrrit/llm"
	"github.com/c360studio/lrrit/review"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id             TEXT PRIMARY KEY,
	document_id    TEXT NOT NULL,
	document_title TEXT NOT NULL DEFAULT '',
	source         TEXT NOT NULL DEFAULT '',
	generated_at   TIMESTAMP NOT NULL,
	summary        TEXT NOT NULL DEFAULT '',
	payload        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_document ON reports(document_id);
CREATE INDEX IF NOT EXISTS idx_reports_generated ON reports(generated_at DESC);

CREATE TABLE IF NOT EXISTS collaborator_calls (
	request_id   TEXT PRIMARY KEY,
	capability   TEXT NOT NULL,
	model        TEXT NOT NULL DEFAULT '',
	provider     TEXT NOT NULL DEFAULT '',
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP NOT NULL,
	retries      INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_calls_started ON collaborator_calls(started_at DESC);
`

// Store is a sqlite-backed report and call-record store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport persists a report. Saving an existing id replaces it.
func (s *Store) SaveReport(ctx context.Context, report *review.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("report with id is required")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports
			(id, document_id, document_title, source, generated_at, summary, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.DocumentID, report.DocumentTitle, report.Source,
		report.GeneratedAt.UTC(), report.Summary, string(payload))
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// GetReport fetches a report by id.
func (s *Store) GetReport(ctx context.Context, id string) (*review.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	var report review.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// ReportSummary is a listing row without the full result payload.
type ReportSummary struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	DocumentTitle string    `json:"document_title,omitempty"`
	Source        string    `json:"source,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
	Summary       string    `json:"summary"`
}

// ListReports returns the most recent reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, document_title, source, generated_at, summary
		FROM reports ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var r ReportSummary
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.DocumentTitle,
			&r.Source, &r.GeneratedAt, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordCall implements llm.CallRecorder, persisting one collaborator call.
func (s *Store) RecordCall(ctx context.Context, record *llm.CallRecord) error {
	if record == nil || record.RequestID == "" {
		return fmt.Errorf("call record with request id is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO collaborator_calls
			(request_id, capability, model, provider,
			 prompt_tokens, completion_tokens, started_at, completed_at, retries, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RequestID, record.Capability, record.Model, record.Provider,
		record.Usage.PromptTokens, record.Usage.CompletionTokens,
		record.StartedAt.UTC(), record.CompletedAt.UTC(), record.Retries, record.Error)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

// ListCalls returns recent collaborator calls, newest first.
func (s *Store) ListCalls(ctx context.Context, limit int) ([]llm.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, capability, model, provider,
		       prompt_tokens, completion_tokens, started_at, completed_at, retries, error
		FROM collaborator_calls ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var out []llm.CallRecord
	for rows.Next() {
		var r llm.CallRecord
		if err := rows.Scan(&r.RequestID, &r.Capability, &r.Model, &r.Provider,
			&r.Usage.PromptTokens, &r.Usage.CompletionTokens,
			&r.StartedAt, &r.CompletedAt, &r.Retries, &r.Error); err != nil {
			return nil, fmt.Errorf("scan call row: %w", err)
		}
		r.Usage.TotalTokens = r.Usage.PromptTokens + r.Usage.CompletionTokens
		out = append(out, r)
	}
	return out, rows.Err()
}
