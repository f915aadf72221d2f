package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"golang-mca-analytics/internal/matcher"
	"golang-mca-analytics/internal/normalizer"
	apperrors "golang-mca-analytics/pkg/errors"
	"golang-mca-analytics/pkg/logger"
)

// SQLiteRecorder persists audit events to a SQLite database
type SQLiteRecorder struct {
	db     *sql.DB
	logger logger.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the audit database and runs migrations
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeStoreUnavailable, dbPath, err)
	}

	// WAL mode so reporting queries can read while a run is writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, apperrors.StorageError(apperrors.CodeStoreUnavailable, dbPath,
			fmt.Errorf("set WAL mode: %w", err))
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: logger.WithComponent("recorder"),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, apperrors.StorageError(apperrors.CodeStoreUnavailable, dbPath, err)
	}

	r.logger.WithField("path", dbPath).Info("Audit database opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at       INTEGER NOT NULL,
			duration_ms      INTEGER NOT NULL,
			as_of            TEXT NOT NULL,
			deal_count       INTEGER NOT NULL,
			submission_count INTEGER NOT NULL,
			record_count     INTEGER NOT NULL,
			matched_count    INTEGER NOT NULL,
			correction_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS corrections (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     INTEGER NOT NULL REFERENCES runs(id),
			original   TEXT NOT NULL,
			normalized TEXT NOT NULL,
			reason     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_corrections_run ON corrections(run_id)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         INTEGER NOT NULL REFERENCES runs(id),
			submission     TEXT NOT NULL,
			record         TEXT NOT NULL,
			tier           TEXT NOT NULL,
			confidence     REAL NOT NULL,
			distance       INTEGER NOT NULL,
			funded_amount  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run summary row and returns its id for child rows
func (r *SQLiteRecorder) RecordRun(ctx context.Context, info RunInfo) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `INSERT INTO runs
		(started_at, duration_ms, as_of, deal_count, submission_count, record_count, matched_count, correction_count)
		VALUES (?,?,?,?,?,?,?,?)`,
		info.StartedAt.Unix(), info.Duration.Milliseconds(),
		info.AsOf.Format(time.RFC3339),
		info.DealCount, info.SubCount, info.RecordCount,
		info.MatchedCount, info.CorrectionCnt,
	)
	if err != nil {
		return 0, apperrors.StorageError(apperrors.CodeWriteFailed, "runs", err)
	}

	return res.LastInsertId()
}

// RecordCorrections writes all name corrections for a run in one transaction
func (r *SQLiteRecorder) RecordCorrections(ctx context.Context, runID int64, corrections []normalizer.Correction) error {
	if len(corrections) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeWriteFailed, "corrections", err)
	}

	for _, c := range corrections {
		if _, err := tx.ExecContext(ctx, `INSERT INTO corrections
			(run_id, original, normalized, reason) VALUES (?,?,?,?)`,
			runID, c.Original, c.Normalized, string(c.Reason),
		); err != nil {
			tx.Rollback()
			return apperrors.StorageError(apperrors.CodeWriteFailed, "corrections", err)
		}
	}

	return tx.Commit()
}

// RecordMatches writes all accepted matches for a run in one transaction
func (r *SQLiteRecorder) RecordMatches(ctx context.Context, runID int64, matches []matcher.Match) error {
	if len(matches) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeWriteFailed, "matches", err)
	}

	for _, m := range matches {
		if m.Record == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO matches
			(run_id, submission, record, tier, confidence, distance, funded_amount)
			VALUES (?,?,?,?,?,?,?)`,
			runID, m.Submission.Name, m.Record.DealName,
			m.Tier.String(), m.Confidence, m.Distance,
			m.Record.FundedAmount.String(),
		); err != nil {
			tx.Rollback()
			return apperrors.StorageError(apperrors.CodeWriteFailed, "matches", err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database
func (r *SQLiteRecorder) Close() error {
	r.logger.Info("Closing audit database")
	return r.db.Close()
}
