package comparison

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/models"
)

func createPeriodDeal(amount, fee float64, fundingDate time.Time) models.Deal {
	return models.Deal{
		Name:          "Test Deal",
		Partner:       "AFN",
		FundedAmount:  decimal.NewFromFloat(amount),
		ManagementFee: decimal.NewFromFloat(fee),
		FundingDate:   fundingDate,
		DealType:      "New Deal",
	}
}

func monthRange(year int, month time.Month) models.DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return models.DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

func TestCompareDeltas(t *testing.T) {
	deals := []models.Deal{
		createPeriodDeal(100000, 4000, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
		createPeriodDeal(50000, 2000, time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)),
		createPeriodDeal(100000, 4000, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)),
	}
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	result := Compare(deals, monthRange(2025, 8), monthRange(2025, 7), MonthOverMonth, now)
	if result == nil {
		t.Fatal("expected a result for valid ranges")
	}

	if result.Current.DealCount != 2 || result.Comparison.DealCount != 1 {
		t.Errorf("expected 2 current / 1 comparison deals, got %d / %d",
			result.Current.DealCount, result.Comparison.DealCount)
	}
	if !result.Current.TotalFunded.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected current funded 150000, got %s", result.Current.TotalFunded)
	}

	if result.Deltas.TotalFunded != 50.0 {
		t.Errorf("expected funded delta 50, got %f", result.Deltas.TotalFunded)
	}
	if result.Deltas.DealCount != 100.0 {
		t.Errorf("expected deal count delta 100, got %f", result.Deltas.DealCount)
	}
	if result.Deltas.TotalFees != 50.0 {
		t.Errorf("expected fees delta 50, got %f", result.Deltas.TotalFees)
	}
	if result.Deltas.AverageDeal != -25.0 {
		t.Errorf("expected average deal delta -25, got %f", result.Deltas.AverageDeal)
	}

	// month-over-month never carries a forecast
	if result.Forecast != nil {
		t.Error("expected no forecast for month-over-month")
	}
}

func TestCompareInvalidRange(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	valid := monthRange(2025, 8)
	reversed := models.DateRange{
		Start: time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	if Compare(nil, reversed, valid, Custom, now) != nil {
		t.Error("expected nil result for invalid current range")
	}
	if Compare(nil, valid, reversed, Custom, now) != nil {
		t.Error("expected nil result for invalid comparison range")
	}
	if Compare(nil, valid, models.DateRange{}, Custom, now) != nil {
		t.Error("expected nil result for zero comparison range")
	}
}

func TestCompareZeroComparisonPeriod(t *testing.T) {
	deals := []models.Deal{
		createPeriodDeal(100000, 4000, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
	}
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	result := Compare(deals, monthRange(2025, 8), monthRange(2025, 7), MonthOverMonth, now)
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Deltas.TotalFunded != 0 || result.Deltas.DealCount != 0 {
		t.Errorf("expected zero deltas against empty comparison period, got %f / %f",
			result.Deltas.TotalFunded, result.Deltas.DealCount)
	}
}

func yearRange(year int) models.DateRange {
	return models.DateRange{
		Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestCompareForecastGating(t *testing.T) {
	deals := []models.Deal{
		createPeriodDeal(100000, 4000, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)),
		createPeriodDeal(100000, 4000, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)),
	}
	inside := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ctype    Type
		now      time.Time
		forecast bool
	}{
		{"year over year inside period", YearOverYear, inside, true},
		{"year to date inside period", YearToDate, inside, true},
		{"year over year after period", YearOverYear, after, false},
		{"custom inside period", Custom, inside, false},
		{"quarter over quarter inside period", QuarterOverQuarter, inside, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compare(deals, yearRange(2025), yearRange(2024), tt.ctype, tt.now)
			if result == nil {
				t.Fatal("expected a result")
			}
			if (result.Forecast != nil) != tt.forecast {
				t.Errorf("expected forecast=%v, got forecast=%v", tt.forecast, result.Forecast != nil)
			}
		})
	}
}

func TestCompareForecastTooEarly(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	result := Compare(nil, yearRange(2025), yearRange(2024), YearOverYear, now)
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Forecast != nil {
		t.Error("expected no forecast with under 2 elapsed days")
	}
}

func TestCompareForecastMomentum(t *testing.T) {
	// Now = April 10 2025: 100 elapsed days split into two 50-day halves.
	// First half funds 50K (1K/day), second half 100K (2K/day), so growth
	// is 100% and momentum 1.3. The 2024 remainder holds 200K.
	deals := []models.Deal{
		createPeriodDeal(50000, 2000, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)),
		createPeriodDeal(100000, 4000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		createPeriodDeal(200000, 8000, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)),
	}
	now := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	result := Compare(deals, yearRange(2025), yearRange(2024), YearOverYear, now)
	if result == nil || result.Forecast == nil {
		t.Fatal("expected a forecast")
	}

	f := result.Forecast
	if f.GrowthRate != 1.0 {
		t.Errorf("expected growth rate 1.0, got %f", f.GrowthRate)
	}
	if f.MomentumFactor != 1.3 {
		t.Errorf("expected momentum factor 1.3, got %f", f.MomentumFactor)
	}
	if !f.ActualToDate.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected actual to date 150000, got %s", f.ActualToDate)
	}
	// 150K actual + 200K remainder * 1.3
	if !f.ProjectedTotal.Equal(decimal.NewFromInt(410000)) {
		t.Errorf("expected projected total 410000, got %s", f.ProjectedTotal)
	}

	if len(f.Checkpoints) < 2 {
		t.Fatalf("expected weekly checkpoints, got %d", len(f.Checkpoints))
	}
	first := f.Checkpoints[0]
	if !first.Date.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("expected first checkpoint one week out, got %s", first.Date)
	}
	last := f.Checkpoints[len(f.Checkpoints)-1]
	if !last.Date.Equal(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected final checkpoint at period end, got %s", last.Date)
	}
	if !last.Projected.Equal(f.ProjectedTotal) {
		t.Errorf("expected final checkpoint at projected total, got %s", last.Projected)
	}

	// checkpoints ramp monotonically from actual toward projected
	prev := f.ActualToDate
	for _, cp := range f.Checkpoints {
		if cp.Projected.LessThan(prev) {
			t.Errorf("checkpoint at %s regressed: %s < %s", cp.Date, cp.Projected, prev)
		}
		prev = cp.Projected
	}
}
