package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownPartner is the sentinel identity assigned when a partner or ISO name
// is missing or cannot be normalized. Aggregators exclude this group from
// published per-partner lists but keep it in overall totals.
const UnknownPartner = "UNKNOWN"

// StageCategory buckets a raw pipeline stage string into a fixed vocabulary
type StageCategory string

const (
	StageSubmitted StageCategory = "Submitted"
	StageInReview  StageCategory = "In Review"
	StageOffered   StageCategory = "Offered"
	StageFunded    StageCategory = "Funded"
	StageOther     StageCategory = "Other"
)

// String returns the string representation of StageCategory
func (s StageCategory) String() string {
	return string(s)
}

// MatchEligible reports whether submissions in this stage participate in
// funding-record matching. Earlier stages pass through untouched.
func (s StageCategory) MatchEligible() bool {
	return s == StageOffered || s == StageFunded
}

// ClassifyStage maps a raw pipeline-board stage string to a StageCategory
func ClassifyStage(raw string) StageCategory {
	stage := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case stage == "":
		return StageOther
	case strings.Contains(stage, "fund"):
		return StageFunded
	case strings.Contains(stage, "offer"), strings.Contains(stage, "approv"):
		return StageOffered
	case strings.Contains(stage, "review"), strings.Contains(stage, "underwrit"), strings.Contains(stage, "pending"):
		return StageInReview
	case strings.Contains(stage, "submit"), strings.Contains(stage, "new"):
		return StageSubmitted
	default:
		return StageOther
	}
}

// FundingStatus is the post-enrichment status of a submission
type FundingStatus string

const (
	FundingStatusFunded    FundingStatus = "Funded"
	FundingStatusOffered   FundingStatus = "Offered"
	FundingStatusInReview  FundingStatus = "In Review"
	FundingStatusSubmitted FundingStatus = "Submitted"
)

// DealClass splits deals into new business and renewals
type DealClass string

const (
	DealClassNew     DealClass = "New"
	DealClassRenewal DealClass = "Renewal"
)

// ClassifyDealType classifies a free-text deal type string. A type counts as
// New when it starts with "new" or equals "n", unless it starts with "renew":
// "Renewal - New Add On" is a renewal despite containing "new".
func ClassifyDealType(raw string) DealClass {
	t := strings.ToLower(strings.TrimSpace(raw))

	if strings.HasPrefix(t, "renew") {
		return DealClassRenewal
	}
	if strings.HasPrefix(t, "new") || t == "n" {
		return DealClassNew
	}
	return DealClassRenewal
}

// Deal represents a funded transaction from the deal ledger
type Deal struct {
	Name          string          `json:"name"`
	FeePercent    decimal.Decimal `json:"feePercent"`
	FundingDate   time.Time       `json:"fundingDate"`
	FundedAmount  decimal.Decimal `json:"fundedAmount"`
	ManagementFee decimal.Decimal `json:"managementFee"`
	RawPartner    string          `json:"rawPartner"`
	Partner       string          `json:"partner"`
	DealType      string          `json:"dealType"`
	Notes         string          `json:"notes,omitempty"`
}

// Validate performs basic validation on the Deal
func (d *Deal) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("deal name cannot be empty")
	}

	if !d.FundedAmount.IsPositive() {
		return fmt.Errorf("funded amount must be positive, got %s", d.FundedAmount.String())
	}

	if d.FundingDate.IsZero() {
		return fmt.Errorf("funding date cannot be zero")
	}

	return nil
}

// Class returns the New/Renewal classification of the deal
func (d *Deal) Class() DealClass {
	return ClassifyDealType(d.DealType)
}

// String returns a string representation of the Deal
func (d *Deal) String() string {
	return fmt.Sprintf("Deal{Name: %s, Partner: %s, Amount: %s, Date: %s}",
		d.Name, d.Partner, d.FundedAmount.String(), d.FundingDate.Format("2006-01-02"))
}

// Submission represents a pipeline entry from the submission board export
type Submission struct {
	Name          string          `json:"name"`
	RawISO        string          `json:"rawISO"`
	ISO           string          `json:"iso"`
	Rep           string          `json:"rep"`
	RawStage      string          `json:"rawStage"`
	StageCategory StageCategory   `json:"stageCategory"`
	OfferAmount   decimal.Decimal `json:"offerAmount"`
	LeadReceived  *time.Time      `json:"leadReceived,omitempty"`
	LeadSubmitted time.Time       `json:"leadSubmitted"`

	// Derived fields, recomputed by Derive against an explicit reference time
	Month             string `json:"month"`
	Quarter           string `json:"quarter"`
	DaysInPipeline    int    `json:"daysInPipeline"`
	PipelineAgeBucket string `json:"pipelineAgeBucket"`
	OfferSizeBucket   string `json:"offerSizeBucket"`
}

// Validate performs basic validation on the Submission
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("submission name cannot be empty")
	}

	if s.LeadSubmitted.IsZero() {
		return fmt.Errorf("lead submitted date cannot be zero")
	}

	return nil
}

// Derive recomputes all derived fields from the submission's own data and the
// supplied reference time. The reference time is explicit so recomputation is
// deterministic across runs; callers pass a fixed "as of" rather than reading
// the wall clock.
func (s *Submission) Derive(now time.Time) {
	s.StageCategory = ClassifyStage(s.RawStage)
	s.Month = s.LeadSubmitted.Format("2006-01")
	s.Quarter = FormatQuarter(s.LeadSubmitted)
	s.DaysInPipeline = daysBetween(s.LeadSubmitted, now)
	s.PipelineAgeBucket = PipelineAgeBucket(s.DaysInPipeline)
	s.OfferSizeBucket = OfferSizeBucket(s.OfferAmount)
}

// String returns a string representation of the Submission
func (s *Submission) String() string {
	return fmt.Sprintf("Submission{Name: %s, ISO: %s, Stage: %s, Offer: %s}",
		s.Name, s.ISO, s.StageCategory, s.OfferAmount.String())
}

// FundingRecord represents a funding-ledger entry used to enrich submissions
type FundingRecord struct {
	DealName      string          `json:"dealName"`
	FundingDate   time.Time       `json:"fundingDate"`
	FundedAmount  decimal.Decimal `json:"fundedAmount"`
	ManagementFee decimal.Decimal `json:"managementFee"`
	RawPartner    string          `json:"rawPartner"`
	Partner       string          `json:"partner"`
}

// Validate performs basic validation on the FundingRecord
func (f *FundingRecord) Validate() error {
	if strings.TrimSpace(f.DealName) == "" {
		return fmt.Errorf("funding record deal name cannot be empty")
	}

	if f.FundingDate.IsZero() {
		return fmt.Errorf("funding date cannot be zero")
	}

	return nil
}

// String returns a string representation of the FundingRecord
func (f *FundingRecord) String() string {
	return fmt.Sprintf("FundingRecord{Deal: %s, Amount: %s, Date: %s}",
		f.DealName, f.FundedAmount.String(), f.FundingDate.Format("2006-01-02"))
}

// EnrichedSubmission is a Submission joined with its funding-ledger outcome.
// Funding fields are zero-valued when the submission never funded.
type EnrichedSubmission struct {
	Submission

	FundingDate        *time.Time      `json:"fundingDate,omitempty"`
	FundedAmount       decimal.Decimal `json:"fundedAmount"`
	ManagementFee      decimal.Decimal `json:"managementFee"`
	FundingISO         string          `json:"fundingISO,omitempty"`
	IsFunded           bool            `json:"isFunded"`
	DaysToFund         int             `json:"daysToFund"`
	OfferToFundedRatio float64         `json:"offerToFundedRatio"`
	FundingStatus      FundingStatus   `json:"fundingStatus"`
}

// Enrich builds an EnrichedSubmission from a submission and an optional
// matched funding record. DaysToFund is -1 when unknown.
func Enrich(sub Submission, record *FundingRecord) EnrichedSubmission {
	es := EnrichedSubmission{
		Submission: sub,
		DaysToFund: -1,
	}

	if record != nil {
		date := record.FundingDate
		es.FundingDate = &date
		es.FundedAmount = record.FundedAmount
		es.ManagementFee = record.ManagementFee
		es.FundingISO = record.Partner
		es.IsFunded = true
		es.DaysToFund = daysBetween(sub.LeadSubmitted, record.FundingDate)
		es.FundingStatus = FundingStatusFunded

		if !record.FundedAmount.IsZero() && !sub.OfferAmount.IsZero() {
			es.OfferToFundedRatio, _ = record.FundedAmount.Div(sub.OfferAmount).Float64()
		}
		return es
	}

	switch sub.StageCategory {
	case StageFunded:
		// Stage claims funded but no ledger record matched; keep the board's
		// word so pipeline counts stay consistent with what reps see.
		es.IsFunded = true
		es.FundingStatus = FundingStatusFunded
	case StageOffered:
		es.FundingStatus = FundingStatusOffered
	case StageInReview:
		es.FundingStatus = FundingStatusInReview
	default:
		es.FundingStatus = FundingStatusSubmitted
	}

	return es
}

// FormatQuarter renders a date as its calendar quarter, e.g. "2025-Q3"
func FormatQuarter(t time.Time) string {
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
}

// PipelineAgeBucket buckets pipeline age in days into fixed display ranges
func PipelineAgeBucket(days int) string {
	switch {
	case days <= 7:
		return "0-7 days"
	case days <= 14:
		return "8-14 days"
	case days <= 30:
		return "15-30 days"
	case days <= 60:
		return "31-60 days"
	default:
		return "60+ days"
	}
}

// OfferSizeBucket buckets an offer amount into fixed display ranges
func OfferSizeBucket(amount decimal.Decimal) string {
	switch {
	case amount.LessThan(decimal.NewFromInt(25000)):
		return "<$25K"
	case amount.LessThan(decimal.NewFromInt(50000)):
		return "$25K-$50K"
	case amount.LessThan(decimal.NewFromInt(100000)):
		return "$50K-$100K"
	case amount.LessThan(decimal.NewFromInt(250000)):
		return "$100K-$250K"
	default:
		return "$250K+"
	}
}

// daysBetween returns whole calendar days from a to b, negative when b
// precedes a. Times are truncated to dates first so partial days don't skew
// the count.
func daysBetween(a, b time.Time) int {
	aDate := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDate := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDate.Sub(aDate).Hours() / 24)
}

// DateRange is an inclusive date interval
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range, inclusive on both ends.
// Comparison is by calendar date.
func (r DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// Days returns the number of calendar days in the range, inclusive
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return daysBetween(r.Start, r.End) + 1
}

// IsValid reports whether the range is non-empty and ordered
func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}
