// Package projection extrapolates month-end funding totals from the
// partial-month business-day burn rate.
package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/aggregator"
	"golang-mca-analytics/internal/calendar"
	"golang-mca-analytics/internal/models"
)

// Status classifies actual pace against target pace
type Status string

const (
	StatusAhead   Status = "Ahead"
	StatusBehind  Status = "Behind"
	StatusOnTrack Status = "On Track"
)

// Confidence grades how much burn-rate history backs the projection
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Thresholds for status and confidence classification
const (
	burnRateTolerancePercent = 10.0
	paceTolerancePoints      = 5.0
	minBurnRateDays          = 3
	highConfidenceDays       = 10
	mediumConfidenceDays     = 5
)

// MTDMetrics is the month-to-date snapshot plus its month-end projection
type MTDMetrics struct {
	MTDFunded             decimal.Decimal `json:"mtdFunded"`
	DealCount             int             `json:"dealCount"`
	MonthlyTarget         decimal.Decimal `json:"monthlyTarget"`
	BusinessDaysElapsed   int             `json:"businessDaysElapsed"`
	BusinessDaysRemaining int             `json:"businessDaysRemaining"`
	BusinessDaysInMonth   int             `json:"businessDaysInMonth"`
	CalendarDaysElapsed   int             `json:"calendarDaysElapsed"`
	CalendarDaysInMonth   int             `json:"calendarDaysInMonth"`
	DailyBurnRate         decimal.Decimal `json:"dailyBurnRate"`
	TargetDailyRate       decimal.Decimal `json:"targetDailyRate"`
	BurnRateStatus        Status          `json:"burnRateStatus"`
	ProjectedMonthEnd     decimal.Decimal `json:"projectedMonthEnd"`
	Confidence            Confidence      `json:"confidence"`
	RequiredDailyPace     decimal.Decimal `json:"requiredDailyPace"`
	TargetProgressPercent float64         `json:"targetProgressPercent"`
	MonthProgressPercent  float64         `json:"monthProgressPercent"`
	PaceStatus            Status          `json:"paceStatus"`
}

// ProjectMonthEnd builds the MTD snapshot for the month containing now.
// Deals outside that month are ignored, so callers can pass the full ledger.
//
// The projection uses the business-day burn rate once at least 3 business
// days have elapsed; before that, too little signal exists and a linear
// calendar-day share of the monthly target stands in.
func ProjectMonthEnd(deals []models.Deal, target decimal.Decimal, now time.Time) MTDMetrics {
	monthRange := aggregator.MonthRange(now)
	mtdRange := models.DateRange{Start: monthRange.Start, End: now}

	m := MTDMetrics{
		MTDFunded:             decimal.Zero,
		MonthlyTarget:         target,
		DailyBurnRate:         decimal.Zero,
		TargetDailyRate:       decimal.Zero,
		ProjectedMonthEnd:     decimal.Zero,
		RequiredDailyPace:     decimal.Zero,
		BusinessDaysElapsed:   calendar.ElapsedBusinessDays(now),
		BusinessDaysRemaining: calendar.RemainingBusinessDays(now),
		BusinessDaysInMonth:   calendar.BusinessDaysInMonth(now.Year(), now.Month()),
		CalendarDaysElapsed:   now.Day(),
		CalendarDaysInMonth:   monthRange.Days(),
	}

	for _, deal := range deals {
		if mtdRange.Contains(deal.FundingDate) {
			m.MTDFunded = m.MTDFunded.Add(deal.FundedAmount)
			m.DealCount++
		}
	}

	if m.BusinessDaysElapsed > 0 {
		m.DailyBurnRate = m.MTDFunded.Div(decimal.NewFromInt(int64(m.BusinessDaysElapsed)))
	}
	if m.BusinessDaysInMonth > 0 {
		m.TargetDailyRate = target.Div(decimal.NewFromInt(int64(m.BusinessDaysInMonth)))
	}

	m.BurnRateStatus = burnRateStatus(m.DailyBurnRate, m.TargetDailyRate)
	m.ProjectedMonthEnd = projectTotal(m, target)
	m.Confidence = confidence(m.BusinessDaysElapsed)

	if m.BusinessDaysRemaining > 0 {
		m.RequiredDailyPace = target.Sub(m.MTDFunded).Div(decimal.NewFromInt(int64(m.BusinessDaysRemaining)))
		if m.RequiredDailyPace.IsNegative() {
			m.RequiredDailyPace = decimal.Zero
		}
	}

	if target.IsPositive() {
		m.TargetProgressPercent, _ = m.MTDFunded.Div(target).Mul(decimal.NewFromInt(100)).Float64()
	}
	if m.BusinessDaysInMonth > 0 {
		m.MonthProgressPercent = float64(m.BusinessDaysElapsed) / float64(m.BusinessDaysInMonth) * 100
	}
	m.PaceStatus = paceStatus(m.TargetProgressPercent, m.MonthProgressPercent)

	return m
}

// burnRateStatus compares the actual daily rate to target with a ±10% band
func burnRateStatus(actual, target decimal.Decimal) Status {
	if target.IsZero() {
		return StatusOnTrack
	}

	tolerance := decimal.NewFromFloat(burnRateTolerancePercent / 100.0)
	upper := target.Mul(decimal.NewFromInt(1).Add(tolerance))
	lower := target.Mul(decimal.NewFromInt(1).Sub(tolerance))

	switch {
	case actual.GreaterThan(upper):
		return StatusAhead
	case actual.LessThan(lower):
		return StatusBehind
	default:
		return StatusOnTrack
	}
}

// projectTotal extrapolates the month-end total. With under 3 business days
// of history the burn rate is noise, so a linear calendar-day share of the
// target substitutes.
func projectTotal(m MTDMetrics, target decimal.Decimal) decimal.Decimal {
	if m.BusinessDaysElapsed >= minBurnRateDays {
		return m.DailyBurnRate.Mul(decimal.NewFromInt(int64(m.BusinessDaysInMonth)))
	}

	if m.CalendarDaysInMonth == 0 {
		return decimal.Zero
	}
	fraction := decimal.NewFromInt(int64(m.CalendarDaysElapsed)).
		Div(decimal.NewFromInt(int64(m.CalendarDaysInMonth)))
	return target.Mul(fraction)
}

func confidence(businessDaysElapsed int) Confidence {
	switch {
	case businessDaysElapsed >= highConfidenceDays:
		return ConfidenceHigh
	case businessDaysElapsed >= mediumConfidenceDays:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// paceStatus compares target progress to month progress with a ±5 point band
func paceStatus(targetProgress, monthProgress float64) Status {
	diff := targetProgress - monthProgress
	switch {
	case diff > paceTolerancePoints:
		return StatusAhead
	case diff < -paceTolerancePoints:
		return StatusBehind
	default:
		return StatusOnTrack
	}
}
