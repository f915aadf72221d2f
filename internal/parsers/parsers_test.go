package parsers

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
	apperrors "golang-mca-analytics/pkg/errors"
)

func createTestNormalizer() *normalizer.Normalizer {
	return normalizer.New(&normalizer.ReferenceData{
		MasterList: []string{"AFN", "CAPITAL GURUS", "CLEARFUND"},
		Aliases:    map[string]string{"CAPTIAL GURUS": "CAPITAL GURUS"},
	})
}

func TestDealParserAliasedHeaders(t *testing.T) {
	csv := strings.Join([]string{
		"Deal Name,Fee %,Date Funded,Amount,Mgmt Fee,ISO,Type",
		`Acme Corp,4%,2025-08-05,"$150,000.00","$6,000.00",afn,New Deal`,
		`Beta LLC,3.5%,08/12/2025,"$50,000","$1,750",captial gurus,Renewal`,
	}, "\n")

	parser, err := NewDealParser(nil, createTestNormalizer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := parser.Parse(strings.NewReader(csv), "deals.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalRows != 2 {
		t.Errorf("expected 2 rows, got %d", result.TotalRows)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no row errors, got %v", result.Errors)
	}
	if len(result.Deals) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(result.Deals))
	}

	deal := result.Deals[0]
	if deal.Name != "Acme Corp" {
		t.Errorf("expected name Acme Corp, got %s", deal.Name)
	}
	if !deal.FundedAmount.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected amount 150000, got %s", deal.FundedAmount)
	}
	if !deal.FeePercent.Equal(decimal.NewFromInt(4)) {
		t.Errorf("expected fee percent 4, got %s", deal.FeePercent)
	}
	if !deal.ManagementFee.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected management fee 6000, got %s", deal.ManagementFee)
	}
	if !deal.FundingDate.Equal(time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected funding date Aug 5, got %s", deal.FundingDate)
	}
	if deal.Partner != "AFN" {
		t.Errorf("expected normalized partner AFN, got %s", deal.Partner)
	}
	if deal.RawPartner != "afn" {
		t.Errorf("expected raw partner preserved, got %s", deal.RawPartner)
	}

	// second row exercises the alias table and a US-format date
	if result.Deals[1].Partner != "CAPITAL GURUS" {
		t.Errorf("expected alias resolved to CAPITAL GURUS, got %s", result.Deals[1].Partner)
	}
	if !result.Deals[1].FundingDate.Equal(time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected funding date Aug 12, got %s", result.Deals[1].FundingDate)
	}
}

func TestDealParserCollectsRowErrors(t *testing.T) {
	csv := strings.Join([]string{
		"name,fee_percent,funding_date,funded_amount",
		"Good Deal,4%,2025-08-05,100000",
		"Bad Amount,4%,2025-08-06,not-a-number",
		",4%,2025-08-07,50000",
		"Bad Date,4%,someday,50000",
		"Another Good Deal,3%,2025-08-08,75000",
	}, "\n")

	parser, err := NewDealParser(nil, createTestNormalizer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := parser.Parse(strings.NewReader(csv), "deals.csv")
	if err != nil {
		t.Fatalf("expected row errors to be collected, not fatal: %v", err)
	}
	if result.TotalRows != 5 {
		t.Errorf("expected 5 rows, got %d", result.TotalRows)
	}
	if len(result.Deals) != 2 {
		t.Errorf("expected 2 good deals, got %d", len(result.Deals))
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 row errors, got %d", len(result.Errors))
	}

	// line numbers point at the original file rows
	if result.Errors[0].Context == nil || result.Errors[0].Context.Line != 3 {
		t.Errorf("expected first error on line 3, got %+v", result.Errors[0].Context)
	}
	if result.Errors[0].Code != apperrors.CodeInvalidAmount {
		t.Errorf("expected invalid amount code, got %s", result.Errors[0].Code)
	}
}

func TestDealParserMissingColumn(t *testing.T) {
	csv := "name,fee_percent,funding_date\nAcme,4%,2025-08-05\n"

	parser, err := NewDealParser(nil, createTestNormalizer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = parser.Parse(strings.NewReader(csv), "deals.csv")
	if err == nil {
		t.Fatal("expected an error for a missing required column")
	}

	appErr, ok := apperrors.AsAnalyticsError(err)
	if !ok {
		t.Fatalf("expected an analytics error, got %T", err)
	}
	if appErr.Code != apperrors.CodeMissingColumn {
		t.Errorf("expected missing column code, got %s", appErr.Code)
	}
	if !strings.Contains(err.Error(), "funded_amount") {
		t.Errorf("expected the missing column named, got %s", err.Error())
	}
}

func TestDealParserPositional(t *testing.T) {
	config := DefaultDealParserConfig()
	config.HasHeader = false

	csv := "Acme Corp,4%,2025-08-05,100000,4000,AFN,New Deal,first deal\n"

	parser, err := NewDealParser(config, createTestNormalizer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := parser.Parse(strings.NewReader(csv), "deals.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Deals) != 1 {
		t.Fatalf("expected 1 deal, got %d", len(result.Deals))
	}

	deal := result.Deals[0]
	if deal.Name != "Acme Corp" || deal.Partner != "AFN" || deal.Notes != "first deal" {
		t.Errorf("positional columns misread: %+v", deal)
	}
}

func TestNewDealParserRequiresNormalizer(t *testing.T) {
	if _, err := NewDealParser(nil, nil); err == nil {
		t.Error("expected an error without a normalizer")
	}
}

func TestSubmissionParser(t *testing.T) {
	csv := strings.Join([]string{
		"Merchant,Partner,Sales Rep,Status,Offer,Date Received,Date Submitted",
		`Acme Corp,afn,Jordan,Funded,"$120,000",2025-07-28,2025-08-01`,
		"Beta LLC,clearfund,Casey,Submitted,,,Aug 5 2025",
	}, "\n")

	now := time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC)
	parser, err := NewSubmissionParser(nil, createTestNormalizer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := parser.Parse(strings.NewReader(csv), "subs.csv", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error for the unparseable date, got %d", len(result.Errors))
	}
	if len(result.Submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(result.Submissions))
	}

	sub := result.Submissions[0]
	if sub.Name != "Acme Corp" {
		t.Errorf("expected name Acme Corp, got %s", sub.Name)
	}
	if sub.ISO != "AFN" {
		t.Errorf("expected normalized ISO AFN, got %s", sub.ISO)
	}
	if sub.StageCategory != models.StageFunded {
		t.Errorf("expected Funded stage, got %s", sub.StageCategory)
	}
	if !sub.OfferAmount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("expected offer 120000, got %s", sub.OfferAmount)
	}
	if sub.LeadReceived == nil || !sub.LeadReceived.Equal(time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected lead received Jul 28, got %v", sub.LeadReceived)
	}

	// derived fields computed against the injected reference time
	if sub.DaysInPipeline != 10 {
		t.Errorf("expected 10 days in pipeline, got %d", sub.DaysInPipeline)
	}
	if sub.Month != "2025-08" {
		t.Errorf("expected month 2025-08, got %s", sub.Month)
	}
	if sub.Quarter != "2025-Q3" {
		t.Errorf("expected quarter 2025-Q3, got %s", sub.Quarter)
	}
}

func TestFundingParser(t *testing.T) {
	csv := strings.Join([]string{
		"Deal,Date Funded,Amount,Fee,Lender",
		`Acme Corp - 2.0%,2025-08-05,"$150,000","$3,000",afn`,
	}, "\n")

	parser, err := NewFundingParser(nil, createTestNormalizer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := parser.Parse(strings.NewReader(csv), "ledger.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	record := result.Records[0]
	if record.DealName != "Acme Corp - 2.0%" {
		t.Errorf("expected the raw deal name preserved, got %s", record.DealName)
	}
	if !record.FundedAmount.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected amount 150000, got %s", record.FundedAmount)
	}
	if record.Partner != "AFN" {
		t.Errorf("expected normalized partner AFN, got %s", record.Partner)
	}
}

func TestParserConfigValidate(t *testing.T) {
	config := DefaultDealParserConfig()
	config.FundedAmountColumn = ""
	if _, err := NewDealParser(config, createTestNormalizer()); err == nil {
		t.Error("expected an error for a missing amount column")
	}

	subConfig := DefaultSubmissionParserConfig()
	subConfig.Delimiter = 0
	if _, err := NewSubmissionParser(subConfig, createTestNormalizer()); err == nil {
		t.Error("expected an error for a zero delimiter")
	}
}
