// Package comparison computes two arbitrary date ranges' metrics side by
// side, with percentage deltas and a momentum-weighted forecast for
// year-over-year and year-to-date views.
package comparison

import (
	"time"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/aggregator"
	"golang-mca-analytics/internal/models"
)

// Type identifies the kind of period comparison requested
type Type string

const (
	MonthOverMonth     Type = "month_over_month"
	QuarterOverQuarter Type = "quarter_over_quarter"
	YearOverYear       Type = "year_over_year"
	YearToDate         Type = "year_to_date"
	Custom             Type = "custom"
)

// forecastEligible reports whether this comparison type carries a forecast
func (t Type) forecastEligible() bool {
	return t == YearOverYear || t == YearToDate
}

// PeriodMetrics summarizes deal activity inside one date range
type PeriodMetrics struct {
	Range        models.DateRange `json:"range"`
	DealCount    int              `json:"dealCount"`
	TotalFunded  decimal.Decimal  `json:"totalFunded"`
	TotalFees    decimal.Decimal  `json:"totalFees"`
	AverageDeal  decimal.Decimal  `json:"averageDeal"`
	NewDeals     int              `json:"newDeals"`
	RenewalDeals int              `json:"renewalDeals"`
}

// Deltas holds percent changes from the comparison period to the current one.
// A change against a zero comparison value is defined as 0.
type Deltas struct {
	TotalFunded float64 `json:"totalFunded"`
	DealCount   float64 `json:"dealCount"`
	TotalFees   float64 `json:"totalFees"`
	AverageDeal float64 `json:"averageDeal"`
}

// Checkpoint is one weekly point on the forecast curve
type Checkpoint struct {
	Date      time.Time       `json:"date"`
	Projected decimal.Decimal `json:"projected"`
}

// Forecast projects the current period's full total from its own momentum
// and the comparison period's remaining shape
type Forecast struct {
	GrowthRate     float64         `json:"growthRate"`
	MomentumFactor float64         `json:"momentumFactor"`
	ActualToDate   decimal.Decimal `json:"actualToDate"`
	ProjectedTotal decimal.Decimal `json:"projectedTotal"`
	Checkpoints    []Checkpoint    `json:"checkpoints"`
}

// Result is the complete outcome of a period comparison
type Result struct {
	Type       Type          `json:"type"`
	Current    PeriodMetrics `json:"current"`
	Comparison PeriodMetrics `json:"comparison"`
	Deltas     Deltas        `json:"deltas"`
	Forecast   *Forecast     `json:"forecast,omitempty"`
}

// Compare computes both ranges' metrics and their deltas. Returns nil when
// either range is invalid: the caller renders an empty state rather than an
// error, since a half-configured comparison is a normal UI condition.
//
// A forecast is attached only for YearOverYear and YearToDate comparisons and
// only while now still falls inside the current range.
func Compare(deals []models.Deal, current, comparison models.DateRange, ctype Type, now time.Time) *Result {
	if !current.IsValid() || !comparison.IsValid() {
		return nil
	}

	result := &Result{
		Type:       ctype,
		Current:    periodMetrics(deals, current),
		Comparison: periodMetrics(deals, comparison),
	}
	result.Deltas = computeDeltas(result.Current, result.Comparison)

	if ctype.forecastEligible() && current.Contains(now) {
		result.Forecast = buildForecast(deals, current, comparison, result.Current, now)
	}

	return result
}

func periodMetrics(deals []models.Deal, r models.DateRange) PeriodMetrics {
	inRange := aggregator.FilterDealsByRange(deals, r)
	summary := aggregator.Summary(inRange)

	return PeriodMetrics{
		Range:        r,
		DealCount:    summary.DealCount,
		TotalFunded:  summary.TotalFunded,
		TotalFees:    summary.TotalFees,
		AverageDeal:  summary.AverageDeal,
		NewDeals:     summary.NewDeals,
		RenewalDeals: summary.RenewalDeals,
	}
}

func computeDeltas(current, comparison PeriodMetrics) Deltas {
	return Deltas{
		TotalFunded: percentChange(current.TotalFunded, comparison.TotalFunded),
		DealCount:   percentChangeInt(current.DealCount, comparison.DealCount),
		TotalFees:   percentChange(current.TotalFees, comparison.TotalFees),
		AverageDeal: percentChange(current.AverageDeal, comparison.AverageDeal),
	}
}

// buildForecast splits the current period's elapsed portion at its midpoint,
// derives a growth rate between the two halves' daily averages, and applies
// the resulting momentum factor to the comparison period's remaining
// sub-range total.
func buildForecast(deals []models.Deal, current, comparison models.DateRange, currentMetrics PeriodMetrics, now time.Time) *Forecast {
	elapsed := models.DateRange{Start: current.Start, End: now}
	elapsedDays := elapsed.Days()
	if elapsedDays < 2 {
		return nil
	}

	midpoint := current.Start.AddDate(0, 0, elapsedDays/2-1)
	firstHalf := models.DateRange{Start: current.Start, End: midpoint}
	secondHalf := models.DateRange{Start: midpoint.AddDate(0, 0, 1), End: now}

	firstDaily := dailyAverage(deals, firstHalf)
	secondDaily := dailyAverage(deals, secondHalf)

	growth := 0.0
	if !firstDaily.IsZero() {
		growth, _ = secondDaily.Sub(firstDaily).Div(firstDaily).Float64()
	}
	momentum := 1.0 + 0.3*growth

	// The comparison period's remainder starts at the same relative offset
	// from its own start as now sits from the current period's start.
	comparisonRemainder := models.DateRange{
		Start: comparison.Start.AddDate(0, 0, elapsedDays),
		End:   comparison.End,
	}

	actualToDate := totalFunded(deals, elapsed)
	projected := actualToDate
	if comparisonRemainder.IsValid() {
		remainderTotal := totalFunded(deals, comparisonRemainder)
		scaled := remainderTotal.Mul(decimal.NewFromFloat(momentum))
		projected = projected.Add(scaled)
	}

	return &Forecast{
		GrowthRate:     growth,
		MomentumFactor: momentum,
		ActualToDate:   actualToDate,
		ProjectedTotal: projected,
		Checkpoints:    weeklyCheckpoints(actualToDate, projected, now, current.End),
	}
}

// weeklyCheckpoints linearly interpolates the total from now to period end,
// one point per week plus the endpoint
func weeklyCheckpoints(actual, projected decimal.Decimal, now, end time.Time) []Checkpoint {
	remaining := models.DateRange{Start: now, End: end}
	totalDays := remaining.Days() - 1
	if totalDays <= 0 {
		return []Checkpoint{{Date: end, Projected: projected}}
	}

	delta := projected.Sub(actual)
	var checkpoints []Checkpoint

	for offset := 7; offset < totalDays; offset += 7 {
		fraction := decimal.NewFromInt(int64(offset)).Div(decimal.NewFromInt(int64(totalDays)))
		checkpoints = append(checkpoints, Checkpoint{
			Date:      now.AddDate(0, 0, offset),
			Projected: actual.Add(delta.Mul(fraction)),
		})
	}

	checkpoints = append(checkpoints, Checkpoint{Date: end, Projected: projected})
	return checkpoints
}

func dailyAverage(deals []models.Deal, r models.DateRange) decimal.Decimal {
	days := r.Days()
	if days == 0 {
		return decimal.Zero
	}
	return totalFunded(deals, r).Div(decimal.NewFromInt(int64(days)))
}

func totalFunded(deals []models.Deal, r models.DateRange) decimal.Decimal {
	total := decimal.Zero
	for _, deal := range deals {
		if r.Contains(deal.FundingDate) {
			total = total.Add(deal.FundedAmount)
		}
	}
	return total
}

// percentChange computes (current-comparison)/comparison as a percentage,
// 0 when the comparison value is zero
func percentChange(current, comparison decimal.Decimal) float64 {
	if comparison.IsZero() {
		return 0
	}
	change, _ := current.Sub(comparison).Div(comparison).Mul(decimal.NewFromInt(100)).Float64()
	return change
}

func percentChangeInt(current, comparison int) float64 {
	if comparison == 0 {
		return 0
	}
	return float64(current-comparison) / float64(comparison) * 100
}
