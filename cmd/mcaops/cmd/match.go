package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-mca-analytics/cmd/mcaops/config"
	"golang-mca-analytics/internal/matcher"
	"golang-mca-analytics/internal/normalizer"
	"golang-mca-analytics/internal/parsers"
)

// Flags for the match command
var (
	matchSubmissionsFile string
	matchFundingFile     string
	matchReferenceFile   string
	matchOutputFormat    string
	matchMinConfidence   float64
	bindOverrides        []string
	skipOverrides        []string
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match pipeline submissions against the funding ledger",
	Long: `Match runs only the submission-to-funding matching stage and reports
every match with its tier and confidence, plus the review queue of unmatched
submissions with ranked candidates.

Manual overrides pin or exclude specific submissions:
  --bind "Acme Corp=ACME CORPORATION" force-matches a submission to a record
  --skip "Duplicate Deal" excludes a submission from matching entirely

Examples:
  mcaops match --submissions-file pipeline.csv --funding-file ledger.csv
  mcaops match -s pipeline.csv -l ledger.csv --min-confidence 75
  mcaops match -s pipeline.csv -l ledger.csv --bind "Acme Corp=ACME CORPORATION"`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&matchSubmissionsFile, "submissions-file", "s", "", "path to submission board CSV file (required)")
	matchCmd.Flags().StringVarP(&matchFundingFile, "funding-file", "l", "", "path to funding ledger CSV file (required)")
	matchCmd.Flags().StringVar(&matchReferenceFile, "reference-file", "", "path to partner reference YAML")
	matchCmd.Flags().StringVarP(&matchOutputFormat, "output-format", "f", "console", "output format: console, json")
	matchCmd.Flags().Float64Var(&matchMinConfidence, "min-confidence", 50, "minimum confidence for automatic matches (0-100)")
	matchCmd.Flags().StringSliceVar(&bindOverrides, "bind", nil, "submission=record pairs to force-match")
	matchCmd.Flags().StringSliceVar(&skipOverrides, "skip", nil, "submission names to exclude from matching")

	matchCmd.MarkFlagRequired("submissions-file")
	matchCmd.MarkFlagRequired("funding-file")
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(matchSubmissionsFile, "submission board file"); err != nil {
		return err
	}
	if err := validateFileExists(matchFundingFile, "funding ledger file"); err != nil {
		return err
	}
	if matchReferenceFile != "" {
		if err := validateFileExists(matchReferenceFile, "reference file"); err != nil {
			return err
		}
	}

	if matchOutputFormat != "console" && matchOutputFormat != "json" {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json", matchOutputFormat)
	}
	if matchMinConfidence < 0 || matchMinConfidence > 100 {
		return fmt.Errorf("min-confidence must be between 0 and 100")
	}

	for _, pair := range bindOverrides {
		if !strings.Contains(pair, "=") {
			return fmt.Errorf("invalid bind override %q, expected submission=record", pair)
		}
	}

	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	now := time.Now()

	ref, err := normalizer.LoadReferenceData(matchReferenceFile)
	if err != nil {
		return err
	}
	norm := normalizer.New(ref)

	subParser, err := parsers.NewSubmissionParser(config.CreateSubmissionParserConfig(), norm)
	if err != nil {
		return err
	}
	subResult, err := subParser.ParseFile(matchSubmissionsFile, now)
	if err != nil {
		return err
	}

	fundingParser, err := parsers.NewFundingParser(config.CreateFundingParserConfig(), norm)
	if err != nil {
		return err
	}
	fundingResult, err := fundingParser.ParseFile(matchFundingFile)
	if err != nil {
		return err
	}

	matchConfig := config.CreateMatcherConfig()
	matchConfig.MinConfidence = matchMinConfidence

	overrides := buildOverrides()
	engine := matcher.NewEngine(matchConfig)
	result := engine.MatchAll(subResult.Submissions, fundingResult.Records, overrides)

	if matchOutputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printMatchResult(result)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nMatching completed: %d of %d eligible submissions matched.\n",
			result.Summary.Matched, result.Summary.Eligible)
	}

	return nil
}

func buildOverrides() *matcher.Overrides {
	if len(bindOverrides) == 0 && len(skipOverrides) == 0 {
		return nil
	}

	overrides := &matcher.Overrides{
		Bind: make(map[string]string),
		Skip: make(map[string]bool),
	}
	for _, pair := range bindOverrides {
		parts := strings.SplitN(pair, "=", 2)
		overrides.Bind[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	for _, name := range skipOverrides {
		overrides.Skip[strings.TrimSpace(name)] = true
	}
	return overrides
}

func printMatchResult(result *matcher.Result) {
	s := result.Summary
	fmt.Printf("MATCHING RESULTS\n\n")
	fmt.Printf("Submissions: %d total, %d eligible\n", s.TotalSubmissions, s.Eligible)
	fmt.Printf("Records:     %d\n", s.TotalRecords)
	fmt.Printf("Matched:     %d\n", s.Matched)
	fmt.Printf("Unmatched:   %d\n", s.Unmatched)
	if s.Skipped > 0 {
		fmt.Printf("Skipped:     %d\n", s.Skipped)
	}
	fmt.Printf("Amount:      %s\n\n", s.TotalMatchedAmount.StringFixed(2))

	for _, m := range result.Matches {
		fmt.Printf("  %s -> %s [%s, %.0f%%]\n",
			m.Submission.Name, m.Record.DealName, m.Tier, m.Confidence)
	}

	for i, item := range result.Unmatched {
		if i == 0 {
			fmt.Printf("\nNEEDS REVIEW\n\n")
		}
		fmt.Printf("  %s\n", item.Submission.Name)
		for _, c := range item.Candidates {
			fmt.Printf("    candidate: %s (%.0f%%, distance %d)\n",
				c.Record.DealName, c.Confidence, c.Distance)
		}
	}
}
