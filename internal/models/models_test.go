package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClassifyStage(t *testing.T) {
	tests := []struct {
		raw      string
		expected StageCategory
	}{
		{"Funded", StageFunded},
		{"Funded - Paid", StageFunded},
		{"funding in progress", StageFunded},
		{"Offer Sent", StageOffered},
		{"Approved", StageOffered},
		{"In Review", StageInReview},
		{"Underwriting", StageInReview},
		{"Pending Docs", StageInReview},
		{"Submitted", StageSubmitted},
		{"New Lead", StageSubmitted},
		{"Declined", StageOther},
		{"", StageOther},
		{"  ", StageOther},
	}

	for _, tt := range tests {
		if got := ClassifyStage(tt.raw); got != tt.expected {
			t.Errorf("ClassifyStage(%q) = %s, want %s", tt.raw, got, tt.expected)
		}
	}
}

func TestMatchEligible(t *testing.T) {
	if !StageOffered.MatchEligible() || !StageFunded.MatchEligible() {
		t.Error("Offered and Funded must be match eligible")
	}
	if StageSubmitted.MatchEligible() || StageInReview.MatchEligible() || StageOther.MatchEligible() {
		t.Error("earlier stages must not be match eligible")
	}
}

func TestClassifyDealType(t *testing.T) {
	tests := []struct {
		raw      string
		expected DealClass
	}{
		{"New", DealClassNew},
		{"new deal", DealClassNew},
		{"N", DealClassNew},
		{"Renewal", DealClassRenewal},
		{"Renewal - New Add On", DealClassRenewal},
		{"renew 3rd position", DealClassRenewal},
		{"", DealClassRenewal},
		{"add on", DealClassRenewal},
	}

	for _, tt := range tests {
		if got := ClassifyDealType(tt.raw); got != tt.expected {
			t.Errorf("ClassifyDealType(%q) = %s, want %s", tt.raw, got, tt.expected)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		wantErr  bool
	}{
		{"1250000", "1250000", false},
		{"$1,250,000.00", "1250000", false},
		{" $50,000 ", "50000", false},
		{"(2,500.50)", "-2500.5", false},
		{"-300", "-300", false},
		{"", "0", true},
		{"abc", "0", true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got.String() != tt.expected {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.raw, got, tt.expected)
		}
	}
}

func TestParsePercent(t *testing.T) {
	got, err := ParsePercent("2.5%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "2.5" {
		t.Errorf("ParsePercent(2.5%%) = %s, want 2.5", got)
	}

	if _, err := ParsePercent("n/a"); err == nil {
		t.Error("expected error for non-numeric percent")
	}
}

func TestParseDateWithFormats(t *testing.T) {
	expected := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

	inputs := []string{
		"2025-08-15",
		"08/15/2025",
		"8/15/2025",
		"Aug 15, 2025",
	}

	for _, raw := range inputs {
		got, err := ParseDateWithFormats(raw)
		if err != nil {
			t.Errorf("ParseDateWithFormats(%q): unexpected error %v", raw, err)
			continue
		}
		if !got.Equal(expected) {
			t.Errorf("ParseDateWithFormats(%q) = %s, want %s", raw, got, expected)
		}
	}

	if _, err := ParseDateWithFormats("not a date"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestSubmissionDerive(t *testing.T) {
	sub := Submission{
		Name:          "Acme Corp",
		RawStage:      "Offer Sent",
		OfferAmount:   decimal.NewFromInt(75000),
		LeadSubmitted: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, time.August, 11, 12, 0, 0, 0, time.UTC)

	sub.Derive(now)

	if sub.StageCategory != StageOffered {
		t.Errorf("stage = %s, want Offered", sub.StageCategory)
	}
	if sub.Month != "2025-08" {
		t.Errorf("month = %s, want 2025-08", sub.Month)
	}
	if sub.Quarter != "2025-Q3" {
		t.Errorf("quarter = %s, want 2025-Q3", sub.Quarter)
	}
	if sub.DaysInPipeline != 10 {
		t.Errorf("days in pipeline = %d, want 10", sub.DaysInPipeline)
	}
	if sub.PipelineAgeBucket != "8-14 days" {
		t.Errorf("age bucket = %s, want 8-14 days", sub.PipelineAgeBucket)
	}
	if sub.OfferSizeBucket != "$50K-$100K" {
		t.Errorf("offer bucket = %s, want $50K-$100K", sub.OfferSizeBucket)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	sub := Submission{
		Name:          "Acme Corp",
		RawStage:      "Submitted",
		LeadSubmitted: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

	sub.Derive(now)
	first := sub.DaysInPipeline
	sub.Derive(now)

	if sub.DaysInPipeline != first {
		t.Errorf("Derive not deterministic: %d then %d", first, sub.DaysInPipeline)
	}
}

func TestEnrichWithRecord(t *testing.T) {
	sub := Submission{
		Name:          "Acme Corp",
		OfferAmount:   decimal.NewFromInt(100000),
		LeadSubmitted: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	sub.Derive(time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC))

	record := &FundingRecord{
		DealName:      "ACME CORP",
		FundingDate:   time.Date(2025, time.August, 11, 0, 0, 0, 0, time.UTC),
		FundedAmount:  decimal.NewFromInt(80000),
		ManagementFee: decimal.NewFromInt(2400),
		Partner:       "AFN",
	}

	es := Enrich(sub, record)

	if !es.IsFunded {
		t.Error("expected IsFunded")
	}
	if es.DaysToFund != 10 {
		t.Errorf("days to fund = %d, want 10", es.DaysToFund)
	}
	if es.OfferToFundedRatio != 0.8 {
		t.Errorf("offer-to-funded ratio = %f, want 0.8", es.OfferToFundedRatio)
	}
	if es.FundingStatus != FundingStatusFunded {
		t.Errorf("status = %s, want Funded", es.FundingStatus)
	}
	if es.FundingISO != "AFN" {
		t.Errorf("funding ISO = %s, want AFN", es.FundingISO)
	}
}

func TestEnrichWithoutRecord(t *testing.T) {
	tests := []struct {
		stage          StageCategory
		expectedStatus FundingStatus
		expectFunded   bool
	}{
		{StageFunded, FundingStatusFunded, true},
		{StageOffered, FundingStatusOffered, false},
		{StageInReview, FundingStatusInReview, false},
		{StageSubmitted, FundingStatusSubmitted, false},
	}

	for _, tt := range tests {
		sub := Submission{
			Name:          "Acme Corp",
			StageCategory: tt.stage,
			LeadSubmitted: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		}

		es := Enrich(sub, nil)

		if es.IsFunded != tt.expectFunded {
			t.Errorf("stage %s: IsFunded = %v, want %v", tt.stage, es.IsFunded, tt.expectFunded)
		}
		if es.FundingStatus != tt.expectedStatus {
			t.Errorf("stage %s: status = %s, want %s", tt.stage, es.FundingStatus, tt.expectedStatus)
		}
		if es.DaysToFund != -1 {
			t.Errorf("stage %s: days to fund = %d, want -1", tt.stage, es.DaysToFund)
		}
	}
}

func TestDealValidate(t *testing.T) {
	valid := Deal{
		Name:         "Acme Corp",
		FundedAmount: decimal.NewFromInt(50000),
		FundingDate:  time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid deal rejected: %v", err)
	}

	noName := valid
	noName.Name = "  "
	if err := noName.Validate(); err == nil {
		t.Error("expected error for empty name")
	}

	zeroAmount := valid
	zeroAmount.FundedAmount = decimal.Zero
	if err := zeroAmount.Validate(); err == nil {
		t.Error("expected error for non-positive amount")
	}

	noDate := valid
	noDate.FundingDate = time.Time{}
	if err := noDate.Validate(); err == nil {
		t.Error("expected error for zero date")
	}
}

func TestDateRange(t *testing.T) {
	r := DateRange{
		Start: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
	}

	if !r.IsValid() {
		t.Error("expected valid range")
	}
	if r.Days() != 31 {
		t.Errorf("days = %d, want 31", r.Days())
	}

	if !r.Contains(time.Date(2025, time.August, 1, 23, 0, 0, 0, time.UTC)) {
		t.Error("start date should be contained regardless of time of day")
	}
	if !r.Contains(time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("end date should be contained")
	}
	if r.Contains(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("date after range should not be contained")
	}

	reversed := DateRange{Start: r.End, End: r.Start}
	if reversed.IsValid() {
		t.Error("reversed range should be invalid")
	}
	if reversed.Days() != 0 {
		t.Errorf("reversed days = %d, want 0", reversed.Days())
	}
}

func TestFormatQuarter(t *testing.T) {
	tests := []struct {
		month    time.Month
		expected string
	}{
		{time.January, "2025-Q1"},
		{time.March, "2025-Q1"},
		{time.April, "2025-Q2"},
		{time.September, "2025-Q3"},
		{time.December, "2025-Q4"},
	}

	for _, tt := range tests {
		d := time.Date(2025, tt.month, 15, 0, 0, 0, 0, time.UTC)
		if got := FormatQuarter(d); got != tt.expected {
			t.Errorf("FormatQuarter(%s) = %s, want %s", tt.month, got, tt.expected)
		}
	}
}

func TestOfferSizeBucket(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{10000, "<$25K"},
		{25000, "$25K-$50K"},
		{50000, "$50K-$100K"},
		{100000, "$100K-$250K"},
		{250000, "$250K+"},
		{1000000, "$250K+"},
	}

	for _, tt := range tests {
		if got := OfferSizeBucket(decimal.NewFromInt(tt.amount)); got != tt.expected {
			t.Errorf("OfferSizeBucket(%d) = %s, want %s", tt.amount, got, tt.expected)
		}
	}
}
