package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threadintel/backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AnalysisRecord is the persisted form of one analysis. Payload holds the
// full ThreadAnalysis JSON; the indexed columns exist for listing and
// filtering without unmarshalling.
type AnalysisRecord struct {
	ID            string          `json:"id"`
	ThreadName    string          `json:"thread_name"`
	PriorityScore int             `json:"priority_score"`
	PriorityLevel string          `json:"priority_level"`
	Escalate      bool            `json:"escalate"`
	Method        string          `json:"method"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s *Store) UpsertAnalysis(ctx context.Context, id string, analysis models.ThreadAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO thread_analyses (id, thread_name, priority_score, priority_level, escalate, method, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			thread_name = EXCLUDED.thread_name,
			priority_score = EXCLUDED.priority_score,
			priority_level = EXCLUDED.priority_level,
			escalate = EXCLUDED.escalate,
			method = EXCLUDED.method,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at`,
		id, analysis.ThreadName, analysis.Priority.Score, analysis.Priority.Level,
		analysis.Triage.Escalate, analysis.Method, payload, time.Now().UTC())
	return err
}

// ListAnalyses returns the most recent records ordered by priority score,
// then recency.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, thread_name, priority_score, priority_level, escalate, method, payload, created_at
		FROM thread_analyses
		ORDER BY priority_score DESC, created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var r AnalysisRecord
		if err := rows.Scan(&r.ID, &r.ThreadName, &r.PriorityScore, &r.PriorityLevel, &r.Escalate, &r.Method, &r.Payload, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) GetAnalysis(ctx context.Context, id string) (AnalysisRecord, error) {
	var r AnalysisRecord
	err := s.Pool.QueryRow(ctx, `
		SELECT id, thread_name, priority_score, priority_level, escalate, method, payload, created_at
		FROM thread_analyses WHERE id = $1`, id).
		Scan(&r.ID, &r.ThreadName, &r.PriorityScore, &r.PriorityLevel, &r.Escalate, &r.Method, &r.Payload, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return AnalysisRecord{}, ErrNotFound
	}
	return r, err
}

// runHistoryLimit bounds the runs table; older rows are pruned on insert.
const runHistoryLimit = 50

func (s *Store) InsertRun(ctx context.Context, run models.Run) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO runs (id, started_at, finished_at, status, summary)
			VALUES ($1, $2, $3, $4, $5)`,
			run.ID, run.StartedAt, run.FinishedAt, run.Status, run.Summary)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			DELETE FROM runs WHERE id NOT IN (
				SELECT id FROM runs ORDER BY started_at DESC LIMIT $1)`,
			runHistoryLimit)
		return err
	})
}

func (s *Store) LatestRun(ctx context.Context) (models.Run, error) {
	var run models.Run
	err := s.Pool.QueryRow(ctx, `
		SELECT id, started_at, finished_at, status, summary
		FROM runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	return run, err
}
