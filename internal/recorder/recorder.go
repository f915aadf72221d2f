// Package recorder persists an audit trail of analysis runs to SQLite.
//
// Each run writes one row to the runs table plus the corrections and matches
// produced during that run, so an operator can answer "why did this name map
// to that partner" weeks later without re-running the analysis.
package recorder

import (
	"context"
	"time"

	"golang-mca-analytics/internal/matcher"
	"golang-mca-analytics/internal/normalizer"
)

// RunInfo summarizes one analysis run for the audit trail
type RunInfo struct {
	StartedAt     time.Time
	Duration      time.Duration
	DealCount     int
	SubCount      int
	RecordCount   int
	MatchedCount  int
	CorrectionCnt int
	AsOf          time.Time
}

// Recorder receives audit events from an analysis run. Implementations must
// tolerate Close being called after a failed RecordRun.
type Recorder interface {
	RecordRun(ctx context.Context, info RunInfo) (runID int64, err error)
	RecordCorrections(ctx context.Context, runID int64, corrections []normalizer.Correction) error
	RecordMatches(ctx context.Context, runID int64, matches []matcher.Match) error
	Close() error
}

// Noop discards all audit events. Used when no audit database is configured.
type Noop struct{}

func (Noop) RecordRun(context.Context, RunInfo) (int64, error) { return 0, nil }

func (Noop) RecordCorrections(context.Context, int64, []normalizer.Correction) error { return nil }

func (Noop) RecordMatches(context.Context, int64, []matcher.Match) error { return nil }

func (Noop) Close() error { return nil }
