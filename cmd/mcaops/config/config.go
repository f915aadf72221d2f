// Package config builds component configurations for the CLI, applying flag
// overrides on top of the library defaults.
package config

import (
	"time"

	"golang-mca-analytics/internal/aggregator"
	"golang-mca-analytics/internal/comparison"
	"golang-mca-analytics/internal/matcher"
	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/parsers"
	"golang-mca-analytics/internal/reporter"
)

// CreateDealParserConfig returns the deal ledger parser configuration
func CreateDealParserConfig() *parsers.DealParserConfig {
	return parsers.DefaultDealParserConfig()
}

// CreateSubmissionParserConfig returns the submission board parser configuration
func CreateSubmissionParserConfig() *parsers.SubmissionParserConfig {
	return parsers.DefaultSubmissionParserConfig()
}

// CreateFundingParserConfig returns the funding ledger parser configuration
func CreateFundingParserConfig() *parsers.FundingParserConfig {
	return parsers.DefaultFundingParserConfig()
}

// CreateMatcherConfig returns the matching engine configuration
func CreateMatcherConfig() *matcher.Config {
	return matcher.DefaultConfig()
}

// CreateSortOption maps a CLI sort field name onto a sort option
func CreateSortOption(field string, descending bool) aggregator.SortOption {
	opt := aggregator.DefaultSortOption()
	opt.Descending = descending

	switch field {
	case "count":
		opt.Field = aggregator.SortByCount
	case "fees":
		opt.Field = aggregator.SortByFees
	case "name":
		opt.Field = aggregator.SortByName
	case "conversion", "converted":
		opt.Field = aggregator.SortByConverted
	default:
		opt.Field = aggregator.SortByVolume
	}

	return opt
}

// CreateComparisonRanges derives the current and comparison date ranges for
// the requested comparison type. Explicit dates override the derived ranges;
// the custom type requires all four.
func CreateComparisonRanges(ctype comparison.Type, now time.Time, currentStart, currentEnd, compareStart, compareEnd string) (models.DateRange, models.DateRange) {
	current, cmp := derivedRanges(ctype, now)

	if r, ok := parseRange(currentStart, currentEnd); ok {
		current = r
	}
	if r, ok := parseRange(compareStart, compareEnd); ok {
		cmp = r
	}

	return current, cmp
}

func derivedRanges(ctype comparison.Type, now time.Time) (models.DateRange, models.DateRange) {
	year, month, _ := now.Date()
	loc := now.Location()

	switch ctype {
	case comparison.MonthOverMonth:
		currentStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return models.DateRange{Start: currentStart, End: currentStart.AddDate(0, 1, -1)},
			models.DateRange{Start: currentStart.AddDate(0, -1, 0), End: currentStart.AddDate(0, 0, -1)}

	case comparison.QuarterOverQuarter:
		quarterMonth := time.Month((int(month)-1)/3*3 + 1)
		currentStart := time.Date(year, quarterMonth, 1, 0, 0, 0, 0, loc)
		return models.DateRange{Start: currentStart, End: currentStart.AddDate(0, 3, -1)},
			models.DateRange{Start: currentStart.AddDate(0, -3, 0), End: currentStart.AddDate(0, 0, -1)}

	case comparison.YearOverYear:
		currentStart := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return models.DateRange{Start: currentStart, End: time.Date(year, time.December, 31, 0, 0, 0, 0, loc)},
			models.DateRange{Start: currentStart.AddDate(-1, 0, 0), End: time.Date(year-1, time.December, 31, 0, 0, 0, 0, loc)}

	case comparison.YearToDate:
		currentStart := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return models.DateRange{Start: currentStart, End: now},
			models.DateRange{Start: currentStart.AddDate(-1, 0, 0), End: now.AddDate(-1, 0, 0)}

	default:
		return models.DateRange{}, models.DateRange{}
	}
}

func parseRange(start, end string) (models.DateRange, bool) {
	if start == "" || end == "" {
		return models.DateRange{}, false
	}
	s, err1 := time.Parse("2006-01-02", start)
	e, err2 := time.Parse("2006-01-02", end)
	if err1 != nil || err2 != nil {
		return models.DateRange{}, false
	}
	return models.DateRange{Start: s, End: e}, true
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
		// JSON consumers get everything; filtering happens downstream
		config.MaxListItems = 0
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	}

	return config
}
