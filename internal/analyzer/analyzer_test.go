package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/comparison"
	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
)

func createTestNormalizer() *normalizer.Normalizer {
	return normalizer.New(&normalizer.ReferenceData{
		MasterList: []string{"AFN", "CLEARFUND", "RAPID ADVANCE"},
	})
}

func createTestDeal(partner string, amount float64, fundingDate time.Time) models.Deal {
	return models.Deal{
		Name:          "Test Deal",
		Partner:       partner,
		FundedAmount:  decimal.NewFromFloat(amount),
		ManagementFee: decimal.NewFromFloat(amount * 0.04),
		FundingDate:   fundingDate,
		DealType:      "New Deal",
	}
}

func createTestSubmission(name, iso, stage string, now time.Time) models.Submission {
	sub := models.Submission{
		Name:          name,
		RawISO:        iso,
		ISO:           iso,
		RawStage:      stage,
		LeadSubmitted: now.AddDate(0, 0, -10),
	}
	sub.Derive(now)
	return sub
}

func TestRunRejectsZeroNow(t *testing.T) {
	a, err := New(createTestNormalizer(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := a.Run(context.Background(), nil, nil, nil, Options{}); err == nil {
		t.Fatal("expected an error for a zero reference time")
	}
}

func TestNewRequiresNormalizer(t *testing.T) {
	if _, err := New(nil, nil, nil); err == nil {
		t.Error("expected an error without a normalizer")
	}
}

func TestRunFullPipeline(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	deals := []models.Deal{
		createTestDeal("AFN", 100000, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
		createTestDeal("AFN", 50000, time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)),
		createTestDeal("CLEARFUND", 200000, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)),
		createTestDeal(models.UnknownPartner, 25000, time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC)),
	}
	subs := []models.Submission{
		createTestSubmission("Acme Corp", "AFN", "Funded", now),
		createTestSubmission("Beta LLC", "AFN", "Submitted", now),
		createTestSubmission("Gamma Inc", "CLEARFUND", "Offer Sent", now),
	}
	records := []models.FundingRecord{
		{
			DealName:     "Acme Corp",
			Partner:      "AFN",
			FundedAmount: decimal.NewFromInt(100000),
			FundingDate:  now.AddDate(0, 0, -5),
		},
	}

	a, err := New(createTestNormalizer(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := a.Run(context.Background(), deals, subs, records, Options{
		MonthlyTarget:   decimal.NewFromInt(1000000),
		CurrentRange:    monthRange(2025, 8),
		ComparisonRange: monthRange(2025, 7),
		ComparisonType:  comparison.MonthOverMonth,
		Now:             now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.AsOf.Equal(now) {
		t.Errorf("expected as-of %s, got %s", now, report.AsOf)
	}

	// UNKNOWN stays out of the partner table but counts in the summary
	if len(report.Partners) != 2 {
		t.Errorf("expected 2 partners, got %d", len(report.Partners))
	}
	if report.Summary.DealCount != 4 {
		t.Errorf("expected 4 deals in summary, got %d", report.Summary.DealCount)
	}
	if report.Summary.UnknownDeals != 1 {
		t.Errorf("expected 1 unknown deal, got %d", report.Summary.UnknownDeals)
	}

	if report.MatchResult == nil {
		t.Fatal("expected a match result")
	}
	if report.MatchResult.Summary.Matched != 1 {
		t.Errorf("expected 1 match, got %d", report.MatchResult.Summary.Matched)
	}

	if len(report.Conversions) != 2 {
		t.Errorf("expected 2 conversion rows, got %d", len(report.Conversions))
	}
	if len(report.Scores) != len(report.Conversions) {
		t.Errorf("expected a score per conversion row, got %d / %d",
			len(report.Scores), len(report.Conversions))
	}

	if report.MTD == nil {
		t.Fatal("expected an MTD projection with a positive target")
	}
	if !report.MTD.MTDFunded.Equal(decimal.NewFromInt(175000)) {
		t.Errorf("expected MTD funded 175000, got %s", report.MTD.MTDFunded)
	}

	if report.Comparison == nil {
		t.Fatal("expected a comparison with two valid ranges")
	}
	if report.Comparison.Current.DealCount != 3 {
		t.Errorf("expected 3 current-period deals, got %d", report.Comparison.Current.DealCount)
	}
}

func TestRunOmitsOptionalSections(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	a, err := New(createTestNormalizer(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := a.Run(context.Background(), nil, nil, nil, Options{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.MTD != nil {
		t.Error("expected no MTD projection without a target")
	}
	if report.Comparison != nil {
		t.Error("expected no comparison without ranges")
	}
}

func TestRunMergeGroups(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	deals := []models.Deal{
		createTestDeal("AFN", 100000, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
		createTestDeal("RAPID ADVANCE", 50000, time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC)),
	}

	a, err := New(createTestNormalizer(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := a.Run(context.Background(), deals, nil, nil, Options{
		Now:         now,
		MergeGroups: map[string][]string{"AFN": {"RAPID ADVANCE"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Partners) != 1 {
		t.Fatalf("expected the merge group to fold into 1 partner, got %d", len(report.Partners))
	}
	if report.Partners[0].Partner != "AFN" {
		t.Errorf("expected AFN, got %s", report.Partners[0].Partner)
	}
	if !report.Partners[0].TotalFunded.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected merged volume 150000, got %s", report.Partners[0].TotalFunded)
	}

	// the merge is a rename, so it lands in the corrections list
	if len(report.Corrections) == 0 {
		t.Error("expected a correction for the merged name")
	}

	// caller's slice is untouched
	if deals[1].Partner != "RAPID ADVANCE" {
		t.Errorf("expected input deals unmodified, got %s", deals[1].Partner)
	}
}

func monthRange(year int, month time.Month) models.DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return models.DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}
