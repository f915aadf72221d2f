// Package reporter renders analysis reports for terminals, pipelines, and
// spreadsheets.
//
// Supported output formats:
//   - Console: human-readable sections for terminal display
//   - JSON: the full report structure for programmatic consumption
//   - CSV: flat per-partner rows for spreadsheet import
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang-mca-analytics/internal/analyzer"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	IncludePartners    bool `json:"include_partners"`
	IncludeConversions bool `json:"include_conversions"`
	IncludeMatching    bool `json:"include_matching"`
	IncludeCorrections bool `json:"include_corrections"`
	IncludeScores      bool `json:"include_scores"`
	IncludeAlerts      bool `json:"include_alerts"`

	// MaxListItems caps per-section console lists. Zero means unlimited.
	MaxListItems int `json:"max_list_items"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:             FormatConsole,
		IncludePartners:    true,
		IncludeConversions: true,
		IncludeMatching:    true,
		IncludeCorrections: true,
		IncludeScores:      true,
		IncludeAlerts:      true,
		MaxListItems:       25,
		CSVDelimiter:       ',',
		CSVHeaders:         true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxListItems < 0 {
		return fmt.Errorf("max list items cannot be negative, got %d", c.MaxListItems)
	}
	return nil
}

// Reporter renders analysis reports in the configured format
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a reporter with the specified configuration
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &Reporter{config: config}, nil
}

// Write renders the report to the provided writer
func (r *Reporter) Write(report *analyzer.Report, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	switch r.config.Format {
	case FormatConsole:
		return r.writeConsole(report, writer)
	case FormatJSON:
		return r.writeJSON(report, writer)
	case FormatCSV:
		return r.writeCSV(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", r.config.Format)
	}
}

func (r *Reporter) writeConsole(report *analyzer.Report, w io.Writer) error {
	fmt.Fprintf(w, "PARTNER ANALYTICS REPORT\n")
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "As Of:     %s\n\n", report.AsOf.Format("2006-01-02"))

	fmt.Fprintf(w, "=== SUMMARY ===\n")
	r.printSummary(report, w)
	fmt.Fprintf(w, "\n")

	if r.config.IncludePartners && len(report.Partners) > 0 {
		fmt.Fprintf(w, "=== PARTNERS ===\n")
		r.printPartners(report, w)
		fmt.Fprintf(w, "\n")
	}

	if r.config.IncludeConversions && len(report.Conversions) > 0 {
		fmt.Fprintf(w, "=== CONVERSION ===\n")
		r.printConversions(report, w)
		fmt.Fprintf(w, "\n")
	}

	if report.MTD != nil {
		fmt.Fprintf(w, "=== MONTH-TO-DATE PROJECTION ===\n")
		r.printMTD(report, w)
		fmt.Fprintf(w, "\n")
	}

	if report.Comparison != nil {
		fmt.Fprintf(w, "=== PERIOD COMPARISON ===\n")
		r.printComparison(report, w)
		fmt.Fprintf(w, "\n")
	}

	if r.config.IncludeScores && len(report.Scores) > 0 {
		fmt.Fprintf(w, "=== PARTNER SCORES ===\n")
		r.printScores(report, w)
		fmt.Fprintf(w, "\n")
	}

	if r.config.IncludeAlerts && len(report.Alerts) > 0 {
		fmt.Fprintf(w, "=== ALERTS ===\n")
		for _, alert := range report.Alerts {
			fmt.Fprintf(w, "  [%s] %s: %s\n", alert.Level, alert.ISO, alert.Message)
		}
		fmt.Fprintf(w, "\n")
	}

	if r.config.IncludeMatching && report.MatchResult != nil {
		fmt.Fprintf(w, "=== MATCHING ===\n")
		r.printMatching(report, w)
		fmt.Fprintf(w, "\n")
	}

	if r.config.IncludeCorrections && len(report.Corrections) > 0 {
		fmt.Fprintf(w, "=== NAME CORRECTIONS ===\n")
		r.printCorrections(report, w)
	}

	return nil
}

func (r *Reporter) printSummary(report *analyzer.Report, w io.Writer) {
	s := report.Summary
	fmt.Fprintf(w, "Deals:          %d\n", s.DealCount)
	fmt.Fprintf(w, "Total Funded:   %s\n", s.TotalFunded.StringFixed(2))
	fmt.Fprintf(w, "Total Fees:     %s\n", s.TotalFees.StringFixed(2))
	fmt.Fprintf(w, "Average Deal:   %s\n", s.AverageDeal.StringFixed(2))
	fmt.Fprintf(w, "Partners:       %d\n", s.PartnerCount)
	fmt.Fprintf(w, "New/Renewal:    %d / %d\n", s.NewDeals, s.RenewalDeals)
	if s.UnknownDeals > 0 {
		fmt.Fprintf(w, "Unattributed:   %d\n", s.UnknownDeals)
	}
}

func (r *Reporter) printPartners(report *analyzer.Report, w io.Writer) {
	for i, p := range report.Partners {
		fmt.Fprintf(w, "  %d. %s: %d deals, funded %s, fees %s (avg %.2f%%)\n",
			i+1, p.Partner, p.DealCount,
			p.TotalFunded.StringFixed(2), p.TotalFees.StringFixed(2),
			p.AverageFeePercent)

		if r.truncated(i, len(report.Partners), w) {
			break
		}
	}
}

func (r *Reporter) printConversions(report *analyzer.Report, w io.Writer) {
	for i, c := range report.Conversions {
		fmt.Fprintf(w, "  %d. %s: %d subs, %d offered, %d funded (%.1f%% overall)\n",
			i+1, c.ISO, c.TotalSubmissions, c.Offered, c.Funded, c.OverallConversionRate)

		if r.truncated(i, len(report.Conversions), w) {
			break
		}
	}
}

func (r *Reporter) printMTD(report *analyzer.Report, w io.Writer) {
	m := report.MTD
	fmt.Fprintf(w, "MTD Funded:        %s of %s target (%.1f%%)\n",
		m.MTDFunded.StringFixed(2), m.MonthlyTarget.StringFixed(2), m.TargetProgressPercent)
	fmt.Fprintf(w, "Business Days:     %d elapsed, %d remaining\n",
		m.BusinessDaysElapsed, m.BusinessDaysRemaining)
	fmt.Fprintf(w, "Daily Burn Rate:   %s (target %s, %s)\n",
		m.DailyBurnRate.StringFixed(2), m.TargetDailyRate.StringFixed(2), m.BurnRateStatus)
	fmt.Fprintf(w, "Projected:         %s (%s confidence)\n",
		m.ProjectedMonthEnd.StringFixed(2), m.Confidence)
	fmt.Fprintf(w, "Required Pace:     %s/day\n", m.RequiredDailyPace.StringFixed(2))
	fmt.Fprintf(w, "Pace Status:       %s\n", m.PaceStatus)
}

func (r *Reporter) printComparison(report *analyzer.Report, w io.Writer) {
	c := report.Comparison
	fmt.Fprintf(w, "Type:         %s\n", c.Type)
	fmt.Fprintf(w, "Current:      %s funded across %d deals\n",
		c.Current.TotalFunded.StringFixed(2), c.Current.DealCount)
	fmt.Fprintf(w, "Comparison:   %s funded across %d deals\n",
		c.Comparison.TotalFunded.StringFixed(2), c.Comparison.DealCount)
	fmt.Fprintf(w, "Funded Delta: %+.1f%%\n", c.Deltas.TotalFunded)
	fmt.Fprintf(w, "Deal Delta:   %+.1f%%\n", c.Deltas.DealCount)

	if c.Forecast != nil {
		f := c.Forecast
		fmt.Fprintf(w, "Forecast:     %s projected (momentum %.2f, growth %+.1f%%)\n",
			f.ProjectedTotal.StringFixed(2), f.MomentumFactor, f.GrowthRate*100)
	}
}

func (r *Reporter) printScores(report *analyzer.Report, w io.Writer) {
	for i, s := range report.Scores {
		fmt.Fprintf(w, "  %d. %s: %d (%s, Tier %d)\n",
			i+1, s.ISO, s.Total, s.Grade, s.Tier)

		if r.truncated(i, len(report.Scores), w) {
			break
		}
	}
}

func (r *Reporter) printMatching(report *analyzer.Report, w io.Writer) {
	s := report.MatchResult.Summary
	fmt.Fprintf(w, "Submissions:     %d total, %d eligible\n", s.TotalSubmissions, s.Eligible)
	fmt.Fprintf(w, "Matched:         %d\n", s.Matched)
	fmt.Fprintf(w, "Unmatched:       %d\n", s.Unmatched)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Skipped:         %d\n", s.Skipped)
	}
	fmt.Fprintf(w, "Matched Amount:  %s\n", s.TotalMatchedAmount.StringFixed(2))

	for tier, count := range s.ByTier {
		fmt.Fprintf(w, "  %-10s %d\n", tier+":", count)
	}

	for i, item := range report.MatchResult.Unmatched {
		if i == 0 {
			fmt.Fprintf(w, "\nNeeds Review:\n")
		}
		fmt.Fprintf(w, "  - %s (%d candidates)\n", item.Submission.Name, len(item.Candidates))

		if r.truncated(i, len(report.MatchResult.Unmatched), w) {
			break
		}
	}
}

func (r *Reporter) printCorrections(report *analyzer.Report, w io.Writer) {
	for i, c := range report.Corrections {
		fmt.Fprintf(w, "  %q -> %q (%s)\n", c.Original, c.Normalized, c.Reason)

		if r.truncated(i, len(report.Corrections), w) {
			break
		}
	}
}

// truncated prints a trailing "and N more" line once the list cap is hit
func (r *Reporter) truncated(index, total int, w io.Writer) bool {
	if r.config.MaxListItems <= 0 {
		return false
	}
	if index+1 >= r.config.MaxListItems && total > r.config.MaxListItems {
		fmt.Fprintf(w, "  ... and %d more\n", total-r.config.MaxListItems)
		return true
	}
	return false
}

func (r *Reporter) writeJSON(report *analyzer.Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r.filterForOutput(report))
}

func (r *Reporter) filterForOutput(report *analyzer.Report) map[string]interface{} {
	output := map[string]interface{}{
		"generated_at": report.GeneratedAt,
		"as_of":        report.AsOf,
		"summary":      report.Summary,
	}

	if r.config.IncludePartners {
		output["partners"] = report.Partners
	}
	if r.config.IncludeConversions {
		output["conversions"] = report.Conversions
	}
	if r.config.IncludeMatching && report.MatchResult != nil {
		output["matching"] = report.MatchResult
	}
	if r.config.IncludeCorrections {
		output["corrections"] = report.Corrections
	}
	if r.config.IncludeScores {
		output["scores"] = report.Scores
	}
	if r.config.IncludeAlerts {
		output["alerts"] = report.Alerts
	}
	if report.MTD != nil {
		output["mtd"] = report.MTD
	}
	if report.Comparison != nil {
		output["comparison"] = report.Comparison
	}

	return output
}

func (r *Reporter) writeCSV(report *analyzer.Report, w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = r.config.CSVDelimiter
	defer csvWriter.Flush()

	if r.config.CSVHeaders {
		headers := []string{
			"Partner",
			"Deal_Count",
			"Total_Funded",
			"Total_Fees",
			"Average_Deal",
			"Average_Fee_Percent",
			"New_Deals",
			"Renewal_Deals",
			"Submissions",
			"Offered",
			"Funded",
			"Overall_Conversion_Rate",
			"Score",
			"Grade",
			"Tier",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	conversions := make(map[string]int, len(report.Conversions))
	for i, c := range report.Conversions {
		conversions[c.ISO] = i
	}
	scores := make(map[string]int, len(report.Scores))
	for i, s := range report.Scores {
		scores[s.ISO] = i
	}

	for _, p := range report.Partners {
		record := []string{
			p.Partner,
			strconv.Itoa(p.DealCount),
			p.TotalFunded.StringFixed(2),
			p.TotalFees.StringFixed(2),
			p.AverageDeal.StringFixed(2),
			fmt.Sprintf("%.2f", p.AverageFeePercent),
			strconv.Itoa(p.NewDeals),
			strconv.Itoa(p.RenewalDeals),
			"", "", "", "", "", "", "",
		}

		if i, ok := conversions[p.Partner]; ok {
			c := report.Conversions[i]
			record[8] = strconv.Itoa(c.TotalSubmissions)
			record[9] = strconv.Itoa(c.Offered)
			record[10] = strconv.Itoa(c.Funded)
			record[11] = fmt.Sprintf("%.1f", c.OverallConversionRate)
		}
		if i, ok := scores[p.Partner]; ok {
			s := report.Scores[i]
			record[12] = strconv.Itoa(s.Total)
			record[13] = s.Grade
			record[14] = strconv.Itoa(s.Tier)
		}

		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write partner record: %w", err)
		}
	}

	return nil
}
