package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-mca-analytics/cmd/mcaops/config"
	"golang-mca-analytics/internal/analyzer"
	"golang-mca-analytics/internal/comparison"
	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
	"golang-mca-analytics/internal/parsers"
	"golang-mca-analytics/internal/recorder"
	"golang-mca-analytics/internal/reporter"
)

// Flags for the analyze command
var (
	dealsFile       string
	submissionsFile string
	fundingFile     string
	referenceFile   string
	outputFormat    string
	outputFile      string
	auditDB         string
	asOf            string
	monthlyTarget   float64
	comparisonType  string
	currentStart    string
	currentEnd      string
	compareStart    string
	compareEnd      string
	sortBy          string
	sortDescending  bool
	mergeGroups     []string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analytics pipeline over spreadsheet exports",
	Long: `Analyze ingests the deal ledger, submission board, and funding ledger
exports, normalizes partner and ISO names, matches submissions to funding
records, and produces the full report: partner metrics, conversion funnels,
the month-end projection, period comparisons, and ISO quality scores.

Examples:
  # Full pipeline over all three exports
  mcaops analyze --deals-file fees.csv --submissions-file pipeline.csv --funding-file ledger.csv

  # Deal metrics plus a month-end projection against a $3M target
  mcaops analyze --deals-file fees.csv --target 3000000

  # Year-over-year comparison with forecast
  mcaops analyze --deals-file fees.csv \
    --compare-type year_over_year \
    --current-start 2026-01-01 --current-end 2026-12-31 \
    --compare-start 2025-01-01 --compare-end 2025-12-31

  # JSON output with a pinned reference date and audit trail
  mcaops analyze --deals-file fees.csv --as-of 2026-08-15 \
    --output-format json --audit-db runs.db`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVarP(&dealsFile, "deals-file", "d", "", "path to deal ledger CSV file (required)")
	analyzeCmd.Flags().StringVarP(&submissionsFile, "submissions-file", "s", "", "path to submission board CSV file")
	analyzeCmd.Flags().StringVarP(&fundingFile, "funding-file", "l", "", "path to funding ledger CSV file")
	analyzeCmd.Flags().StringVar(&referenceFile, "reference-file", "", "path to partner reference YAML (master list and aliases)")

	// Output flags
	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	analyzeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&auditDB, "audit-db", "", "SQLite audit database path (optional)")

	// Analysis flags
	analyzeCmd.Flags().StringVar(&asOf, "as-of", "", "reference date for time-dependent metrics (YYYY-MM-DD, default: today)")
	analyzeCmd.Flags().Float64VarP(&monthlyTarget, "target", "t", 0, "monthly funding target for the month-end projection")
	analyzeCmd.Flags().StringVar(&comparisonType, "compare-type", "", "period comparison: month_over_month, quarter_over_quarter, year_over_year, year_to_date, custom")
	analyzeCmd.Flags().StringVar(&currentStart, "current-start", "", "current period start (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&currentEnd, "current-end", "", "current period end (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&compareStart, "compare-start", "", "comparison period start (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&compareEnd, "compare-end", "", "comparison period end (YYYY-MM-DD)")

	// Sorting flags
	analyzeCmd.Flags().StringVar(&sortBy, "sort-by", "volume", "sort partner tables by: volume, count, fees, name, conversion")
	analyzeCmd.Flags().BoolVar(&sortDescending, "sort-desc", true, "sort descending")

	// Partner merge groups
	analyzeCmd.Flags().StringSliceVar(&mergeGroups, "merge", nil, "canonical=name;name groups to fold partners together")

	analyzeCmd.MarkFlagRequired("deals-file")

	// Bind flags to viper
	viper.BindPFlag("deals-file", analyzeCmd.Flags().Lookup("deals-file"))
	viper.BindPFlag("submissions-file", analyzeCmd.Flags().Lookup("submissions-file"))
	viper.BindPFlag("funding-file", analyzeCmd.Flags().Lookup("funding-file"))
	viper.BindPFlag("reference-file", analyzeCmd.Flags().Lookup("reference-file"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", analyzeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("audit-db", analyzeCmd.Flags().Lookup("audit-db"))
	viper.BindPFlag("as-of", analyzeCmd.Flags().Lookup("as-of"))
	viper.BindPFlag("target", analyzeCmd.Flags().Lookup("target"))
	viper.BindPFlag("compare-type", analyzeCmd.Flags().Lookup("compare-type"))
	viper.BindPFlag("sort-by", analyzeCmd.Flags().Lookup("sort-by"))
	viper.BindPFlag("sort-desc", analyzeCmd.Flags().Lookup("sort-desc"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	dealsFile = viper.GetString("deals-file")
	submissionsFile = viper.GetString("submissions-file")
	fundingFile = viper.GetString("funding-file")
	referenceFile = viper.GetString("reference-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	auditDB = viper.GetString("audit-db")
	asOf = viper.GetString("as-of")
	monthlyTarget = viper.GetFloat64("target")
	comparisonType = viper.GetString("compare-type")

	if dealsFile == "" {
		return fmt.Errorf("deals-file is required")
	}

	if err := validateFileExists(dealsFile, "deal ledger file"); err != nil {
		return err
	}
	if submissionsFile != "" {
		if err := validateFileExists(submissionsFile, "submission board file"); err != nil {
			return err
		}
	}
	if fundingFile != "" {
		if err := validateFileExists(fundingFile, "funding ledger file"); err != nil {
			return err
		}
	}
	if referenceFile != "" {
		if err := validateFileExists(referenceFile, "reference file"); err != nil {
			return err
		}
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if asOf != "" {
		if _, err := time.Parse("2006-01-02", asOf); err != nil {
			return fmt.Errorf("invalid as-of date format. Use YYYY-MM-DD: %w", err)
		}
	}

	if monthlyTarget < 0 {
		return fmt.Errorf("target cannot be negative")
	}

	if comparisonType != "" {
		valid := map[string]bool{
			"month_over_month": true, "quarter_over_quarter": true,
			"year_over_year": true, "year_to_date": true, "custom": true,
		}
		if !valid[comparisonType] {
			return fmt.Errorf("invalid compare-type '%s'", comparisonType)
		}
	}

	for _, group := range mergeGroups {
		if !strings.Contains(group, "=") {
			return fmt.Errorf("invalid merge group %q, expected canonical=name;name", group)
		}
	}

	for _, d := range []struct{ name, value string }{
		{"current-start", currentStart}, {"current-end", currentEnd},
		{"compare-start", compareStart}, {"compare-end", compareEnd},
	} {
		if d.value != "" {
			if _, err := time.Parse("2006-01-02", d.value); err != nil {
				return fmt.Errorf("invalid %s date format. Use YYYY-MM-DD: %w", d.name, err)
			}
		}
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	now := time.Now()
	if asOf != "" {
		parsed, _ := time.Parse("2006-01-02", asOf)
		now = parsed
	}

	ref, err := normalizer.LoadReferenceData(referenceFile)
	if err != nil {
		return err
	}
	norm := normalizer.New(ref)

	deals, subs, records, err := loadInputs(norm, now)
	if err != nil {
		return err
	}

	var rec recorder.Recorder = recorder.Noop{}
	if auditDB != "" {
		sqliteRec, err := recorder.NewSQLiteRecorder(auditDB)
		if err != nil {
			return err
		}
		defer sqliteRec.Close()
		rec = sqliteRec
	}

	a, err := analyzer.New(norm, config.CreateMatcherConfig(), rec)
	if err != nil {
		return err
	}

	opts := analyzer.Options{
		MonthlyTarget: decimal.NewFromFloat(monthlyTarget),
		Sort:          config.CreateSortOption(viper.GetString("sort-by"), viper.GetBool("sort-desc")),
		Now:           now,
		MergeGroups:   buildMergeGroups(),
	}

	if comparisonType != "" {
		opts.ComparisonType = comparison.Type(comparisonType)
		opts.CurrentRange, opts.ComparisonRange = config.CreateComparisonRanges(
			opts.ComparisonType, now,
			currentStart, currentEnd, compareStart, compareEnd,
		)
	}

	report, err := a.Run(ctx, deals, subs, records, opts)
	if err != nil {
		return err
	}

	reportConfig := config.CreateReportConfig(outputFormat)
	rep, err := reporter.NewReporter(reportConfig)
	if err != nil {
		return err
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	return rep.Write(report, output)
}

// loadInputs parses whichever input files were supplied. Missing optional
// files yield empty slices, not errors.
func loadInputs(norm *normalizer.Normalizer, now time.Time) ([]models.Deal, []models.Submission, []models.FundingRecord, error) {
	dealParser, err := parsers.NewDealParser(config.CreateDealParserConfig(), norm)
	if err != nil {
		return nil, nil, nil, err
	}
	dealResult, err := dealParser.ParseFile(dealsFile)
	if err != nil {
		return nil, nil, nil, err
	}
	reportParseErrors("deal ledger", len(dealResult.Errors))

	var subs []models.Submission
	if submissionsFile != "" {
		subParser, err := parsers.NewSubmissionParser(config.CreateSubmissionParserConfig(), norm)
		if err != nil {
			return nil, nil, nil, err
		}
		subResult, err := subParser.ParseFile(submissionsFile, now)
		if err != nil {
			return nil, nil, nil, err
		}
		reportParseErrors("submission board", len(subResult.Errors))
		subs = subResult.Submissions
	}

	var records []models.FundingRecord
	if fundingFile != "" {
		fundingParser, err := parsers.NewFundingParser(config.CreateFundingParserConfig(), norm)
		if err != nil {
			return nil, nil, nil, err
		}
		fundingResult, err := fundingParser.ParseFile(fundingFile)
		if err != nil {
			return nil, nil, nil, err
		}
		reportParseErrors("funding ledger", len(fundingResult.Errors))
		records = fundingResult.Records
	}

	return dealResult.Deals, subs, records, nil
}

// buildMergeGroups parses --merge entries of the form "CANON=NAME;NAME" into
// the canonical-to-members map the analyzer consumes.
func buildMergeGroups() map[string][]string {
	if len(mergeGroups) == 0 {
		return nil
	}

	groups := make(map[string][]string)
	for _, entry := range mergeGroups {
		parts := strings.SplitN(entry, "=", 2)
		canonical := strings.TrimSpace(parts[0])
		for _, member := range strings.Split(parts[1], ";") {
			if member = strings.TrimSpace(member); member != "" {
				groups[canonical] = append(groups[canonical], member)
			}
		}
	}
	return groups
}

func reportParseErrors(source string, count int) {
	if count > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d rows skipped in %s (use --verbose for details)\n", count, source)
	}
}
