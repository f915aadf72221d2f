// Package analyzer orchestrates a full analysis run: name normalization,
// submission-to-funding matching, aggregation, projection, comparison, and
// partner scoring, producing a single Report.
package analyzer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/aggregator"
	"golang-mca-analytics/internal/comparison"
	"golang-mca-analytics/internal/matcher"
	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
	"golang-mca-analytics/internal/projection"
	"golang-mca-analytics/internal/recorder"
	"golang-mca-analytics/internal/scorer"
	apperrors "golang-mca-analytics/pkg/errors"
	"golang-mca-analytics/pkg/logger"
)

// Options controls a single analysis run. Now is the reference time for every
// time-dependent calculation; a zero Now is rejected so runs stay reproducible.
type Options struct {
	// MonthlyTarget drives the month-end projection
	MonthlyTarget decimal.Decimal

	// CurrentRange and ComparisonRange bound the period comparison. When
	// either is invalid the comparison section is omitted.
	CurrentRange    models.DateRange
	ComparisonRange models.DateRange
	ComparisonType  comparison.Type

	// Overrides carries manual match decisions
	Overrides *matcher.Overrides

	// MergeGroups folds multiple canonical partner names into one
	MergeGroups map[string][]string

	// Sort controls the ordering of partner and conversion tables
	Sort aggregator.SortOption

	// Now is the reference time for all derived and projected values
	Now time.Time
}

// Report is the complete output of one analysis run
type Report struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	AsOf        time.Time     `json:"asOf"`
	Duration    time.Duration `json:"duration"`

	Partners    []aggregator.PartnerMetrics    `json:"partners"`
	Summary     aggregator.OverallSummary      `json:"summary"`
	Conversions []aggregator.ConversionMetrics `json:"conversions"`

	MatchResult *matcher.Result         `json:"matchResult"`
	Corrections []normalizer.Correction `json:"corrections"`

	MTD        *projection.MTDMetrics `json:"mtd,omitempty"`
	Comparison *comparison.Result     `json:"comparison,omitempty"`

	Scores []scorer.QualityScore `json:"scores"`
	Alerts []scorer.Alert        `json:"alerts"`
}

// Analyzer wires the analysis pipeline together
type Analyzer struct {
	normalizer *normalizer.Normalizer
	engine     *matcher.Engine
	recorder   recorder.Recorder
	logger     logger.Logger
}

// New creates an Analyzer. A nil recorder disables the audit trail.
func New(norm *normalizer.Normalizer, matchConfig *matcher.Config, rec recorder.Recorder) (*Analyzer, error) {
	if norm == nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeMissingConfig, "analyzer.normalizer", nil, nil)
	}
	if matchConfig == nil {
		matchConfig = matcher.DefaultConfig()
	}
	if err := matchConfig.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "analyzer.matcher", matchConfig, err)
	}
	if rec == nil {
		rec = recorder.Noop{}
	}

	return &Analyzer{
		normalizer: norm,
		engine:     matcher.NewEngine(matchConfig),
		recorder:   rec,
		logger:     logger.WithComponent("analyzer"),
	}, nil
}

// Run executes the full pipeline over already-parsed inputs and returns the
// report. The reported corrections are everything the shared normalizer has
// accumulated since its last reset, which covers the parse phase. The recorder
// receives the run's audit trail; recorder failures are logged but never fail
// the run.
func (a *Analyzer) Run(ctx context.Context, deals []models.Deal, subs []models.Submission, records []models.FundingRecord, opts Options) (*Report, error) {
	if opts.Now.IsZero() {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "analyzer.now", opts.Now,
			nil).WithSuggestion("pass an explicit as-of time")
	}

	start := time.Now()
	if opts.MergeGroups != nil {
		deals, subs, records = a.applyMergeGroups(opts.MergeGroups, deals, subs, records)
	}

	a.logger.WithFields(logger.Fields{
		"deals":       len(deals),
		"submissions": len(subs),
		"records":     len(records),
		"as_of":       opts.Now.Format("2006-01-02"),
	}).Info("Starting analysis run")

	matchResult := a.engine.MatchAll(subs, records, opts.Overrides)
	enriched := matchResult.Enriched

	report := &Report{
		GeneratedAt: start,
		AsOf:        opts.Now,
		Partners:    aggregator.AggregatePartners(deals, opts.Sort),
		Summary:     aggregator.Summary(deals),
		Conversions: aggregator.AggregateConversion(enriched, opts.Sort),
		MatchResult: matchResult,
		Corrections: a.normalizer.Corrections(),
	}

	if opts.MonthlyTarget.IsPositive() {
		mtd := projection.ProjectMonthEnd(deals, opts.MonthlyTarget, opts.Now)
		report.MTD = &mtd
	}

	if opts.CurrentRange.IsValid() && opts.ComparisonRange.IsValid() {
		ctype := opts.ComparisonType
		if ctype == "" {
			ctype = comparison.Custom
		}
		report.Comparison = comparison.Compare(deals, opts.CurrentRange, opts.ComparisonRange, ctype, opts.Now)
	}

	trends := make(map[string][]aggregator.MonthPoint, len(report.Conversions))
	for _, c := range report.Conversions {
		trends[c.ISO] = aggregator.MonthlyTrend(enriched, c.ISO)
	}
	report.Scores = scorer.ScoreAll(report.Conversions, trends)
	report.Alerts = scorer.GenerateAlerts(report.Scores, report.Conversions)

	report.Duration = time.Since(start)

	a.audit(ctx, report, len(deals), len(records))

	a.logger.WithFields(logger.Fields{
		"partners":    len(report.Partners),
		"matched":     matchResult.Summary.Matched,
		"unmatched":   matchResult.Summary.Unmatched,
		"corrections": len(report.Corrections),
		"duration":    report.Duration.String(),
	}).Info("Analysis run complete")

	return report, nil
}

// applyMergeGroups re-normalizes the already-canonical partner and ISO names
// so merge groups fold them together. Inputs are copied, not mutated.
func (a *Analyzer) applyMergeGroups(groups map[string][]string, deals []models.Deal, subs []models.Submission, records []models.FundingRecord) ([]models.Deal, []models.Submission, []models.FundingRecord) {
	a.normalizer.SetMergeGroups(groups)

	deals = append([]models.Deal(nil), deals...)
	for i := range deals {
		deals[i].Partner = a.normalizer.Normalize(deals[i].Partner)
	}

	subs = append([]models.Submission(nil), subs...)
	for i := range subs {
		subs[i].ISO = a.normalizer.Normalize(subs[i].ISO)
	}

	records = append([]models.FundingRecord(nil), records...)
	for i := range records {
		records[i].Partner = a.normalizer.Normalize(records[i].Partner)
	}

	return deals, subs, records
}

func (a *Analyzer) audit(ctx context.Context, report *Report, dealCount, recordCount int) {
	info := recorder.RunInfo{
		StartedAt:     report.GeneratedAt,
		Duration:      report.Duration,
		AsOf:          report.AsOf,
		DealCount:     dealCount,
		SubCount:      report.MatchResult.Summary.TotalSubmissions,
		RecordCount:   recordCount,
		MatchedCount:  report.MatchResult.Summary.Matched,
		CorrectionCnt: len(report.Corrections),
	}

	runID, err := a.recorder.RecordRun(ctx, info)
	if err != nil {
		a.logger.WithField("error", err.Error()).Warn("Audit run record failed")
		return
	}

	if err := a.recorder.RecordCorrections(ctx, runID, report.Corrections); err != nil {
		a.logger.WithField("error", err.Error()).Warn("Audit corrections record failed")
	}
	if err := a.recorder.RecordMatches(ctx, runID, report.MatchResult.Matches); err != nil {
		a.logger.WithField("error", err.Error()).Warn("Audit matches record failed")
	}
}
