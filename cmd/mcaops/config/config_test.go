package config

import (
	"testing"
	"time"

	"golang-mca-analytics/internal/aggregator"
	"golang-mca-analytics/internal/comparison"
	"golang-mca-analytics/internal/reporter"
)

func TestCreateSortOption(t *testing.T) {
	tests := []struct {
		field      string
		descending bool
		want       aggregator.SortField
	}{
		{"count", true, aggregator.SortByCount},
		{"fees", false, aggregator.SortByFees},
		{"name", false, aggregator.SortByName},
		{"conversion", true, aggregator.SortByConverted},
		{"converted", true, aggregator.SortByConverted},
		{"volume", true, aggregator.SortByVolume},
		{"bogus", true, aggregator.SortByVolume},
	}

	for _, tt := range tests {
		opt := CreateSortOption(tt.field, tt.descending)
		if opt.Field != tt.want {
			t.Errorf("CreateSortOption(%q) field = %s, want %s", tt.field, opt.Field, tt.want)
		}
		if opt.Descending != tt.descending {
			t.Errorf("CreateSortOption(%q) descending = %v, want %v", tt.field, opt.Descending, tt.descending)
		}
	}
}

func TestCreateComparisonRangesDerived(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("month over month", func(t *testing.T) {
		current, cmp := CreateComparisonRanges(comparison.MonthOverMonth, now, "", "", "", "")

		if !current.Start.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) ||
			!current.End.Equal(time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected current range: %s - %s", current.Start, current.End)
		}
		if !cmp.Start.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) ||
			!cmp.End.Equal(time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected comparison range: %s - %s", cmp.Start, cmp.End)
		}
	})

	t.Run("quarter over quarter", func(t *testing.T) {
		current, cmp := CreateComparisonRanges(comparison.QuarterOverQuarter, now, "", "", "", "")

		if !current.Start.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) ||
			!current.End.Equal(time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected current quarter: %s - %s", current.Start, current.End)
		}
		if !cmp.Start.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) ||
			!cmp.End.Equal(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected comparison quarter: %s - %s", cmp.Start, cmp.End)
		}
	})

	t.Run("year over year", func(t *testing.T) {
		current, cmp := CreateComparisonRanges(comparison.YearOverYear, now, "", "", "", "")

		if current.Start.Year() != 2025 || !current.End.Equal(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected current year: %s - %s", current.Start, current.End)
		}
		if cmp.Start.Year() != 2024 || !cmp.End.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected comparison year: %s - %s", cmp.Start, cmp.End)
		}
	})

	t.Run("year to date", func(t *testing.T) {
		current, cmp := CreateComparisonRanges(comparison.YearToDate, now, "", "", "", "")

		if !current.End.Equal(now) {
			t.Errorf("expected current range ending now, got %s", current.End)
		}
		// prior-year span covers the same elapsed portion
		if !cmp.End.Equal(now.AddDate(-1, 0, 0)) {
			t.Errorf("expected comparison range ending a year back, got %s", cmp.End)
		}
	})

	t.Run("custom without dates is invalid", func(t *testing.T) {
		current, cmp := CreateComparisonRanges(comparison.Custom, now, "", "", "", "")
		if current.IsValid() || cmp.IsValid() {
			t.Error("expected invalid zero ranges for custom without explicit dates")
		}
	})
}

func TestCreateComparisonRangesExplicit(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	current, cmp := CreateComparisonRanges(comparison.MonthOverMonth, now,
		"2025-06-01", "2025-06-30", "2025-05-01", "2025-05-31")

	if !current.Start.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected explicit current start honored, got %s", current.Start)
	}
	if !cmp.End.Equal(time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected explicit comparison end honored, got %s", cmp.End)
	}

	// a bad date string falls back to the derived range
	current, _ = CreateComparisonRanges(comparison.MonthOverMonth, now,
		"not-a-date", "2025-06-30", "", "")
	if !current.Start.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected derived range on a bad date, got %s", current.Start)
	}
}

func TestCreateReportConfig(t *testing.T) {
	console := CreateReportConfig("console")
	if console.Format != reporter.FormatConsole {
		t.Errorf("expected console format, got %s", console.Format)
	}
	if console.MaxListItems == 0 {
		t.Error("expected console lists capped")
	}

	jsonConfig := CreateReportConfig("json")
	if jsonConfig.Format != reporter.FormatJSON {
		t.Errorf("expected json format, got %s", jsonConfig.Format)
	}
	if jsonConfig.MaxListItems != 0 {
		t.Errorf("expected unlimited lists for json, got %d", jsonConfig.MaxListItems)
	}

	csvConfig := CreateReportConfig("csv")
	if csvConfig.Format != reporter.FormatCSV || !csvConfig.CSVHeaders {
		t.Errorf("unexpected csv config: %+v", csvConfig)
	}
}

func TestCreateParserConfigsValid(t *testing.T) {
	if err := CreateDealParserConfig().Validate(); err != nil {
		t.Errorf("deal parser config invalid: %v", err)
	}
	if err := CreateSubmissionParserConfig().Validate(); err != nil {
		t.Errorf("submission parser config invalid: %v", err)
	}
	if err := CreateFundingParserConfig().Validate(); err != nil {
		t.Errorf("funding parser config invalid: %v", err)
	}
	if err := CreateMatcherConfig().Validate(); err != nil {
		t.Errorf("matcher config invalid: %v", err)
	}
}
