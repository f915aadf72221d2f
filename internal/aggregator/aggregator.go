// Package aggregator groups normalized records by partner, ISO, and time
// bucket and derives the volume, fee, and conversion figures the dashboard
// renders.
//
// Aggregation is always a full recompute over an immutable record slice;
// there is no incremental state. Every rate guards its denominator: a zero
// denominator yields rate 0, never NaN.
package aggregator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/models"
)

// PartnerMetrics aggregates deal-ledger activity for one normalized partner
type PartnerMetrics struct {
	Partner           string          `json:"partner"`
	DealCount         int             `json:"dealCount"`
	TotalFunded       decimal.Decimal `json:"totalFunded"`
	TotalFees         decimal.Decimal `json:"totalFees"`
	AverageDeal       decimal.Decimal `json:"averageDeal"`
	AverageFeePercent float64         `json:"averageFeePercent"`
	NewDeals          int             `json:"newDeals"`
	RenewalDeals      int             `json:"renewalDeals"`
}

// OverallSummary totals deal-ledger activity across all partners, including
// the UNKNOWN sentinel group that per-partner lists exclude
type OverallSummary struct {
	DealCount         int             `json:"dealCount"`
	TotalFunded       decimal.Decimal `json:"totalFunded"`
	TotalFees         decimal.Decimal `json:"totalFees"`
	AverageDeal       decimal.Decimal `json:"averageDeal"`
	AverageFeePercent float64         `json:"averageFeePercent"`
	NewDeals          int             `json:"newDeals"`
	RenewalDeals      int             `json:"renewalDeals"`
	PartnerCount      int             `json:"partnerCount"`
	UnknownDeals      int             `json:"unknownDeals"`
}

// ConversionMetrics aggregates pipeline outcomes for one normalized ISO
type ConversionMetrics struct {
	ISO                   string          `json:"iso"`
	TotalSubmissions      int             `json:"totalSubmissions"`
	Funded                int             `json:"funded"`
	Offered               int             `json:"offered"`
	SubmissionToOfferRate float64         `json:"submissionToOfferRate"`
	OfferToFundedRate     float64         `json:"offerToFundedRate"`
	OverallConversionRate float64         `json:"overallConversionRate"`
	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	AvgDaysToFund         float64         `json:"avgDaysToFund"`
	MinDaysToFund         int             `json:"minDaysToFund"`
	MaxDaysToFund         int             `json:"maxDaysToFund"`
	AvgOfferAmount        decimal.Decimal `json:"avgOfferAmount"`
	AvgFundedAmount       decimal.Decimal `json:"avgFundedAmount"`
}

// MonthPoint is one month of an ISO's trailing conversion history
type MonthPoint struct {
	Month          string          `json:"month"`
	Submissions    int             `json:"submissions"`
	Funded         int             `json:"funded"`
	ConversionRate float64         `json:"conversionRate"`
	TotalFunded    decimal.Decimal `json:"totalFunded"`
}

// SortField selects the metric result lists are ordered by
type SortField string

const (
	SortByVolume    SortField = "volume"
	SortByCount     SortField = "count"
	SortByFees      SortField = "fees"
	SortByName      SortField = "name"
	SortByConverted SortField = "converted"
)

// SortOption overrides the default descending-by-volume ordering
type SortOption struct {
	Field      SortField
	Descending bool
}

// DefaultSortOption orders descending by the primary volume metric
func DefaultSortOption() SortOption {
	return SortOption{Field: SortByVolume, Descending: true}
}

// AggregatePartners computes per-partner metrics over deals, grouped by the
// normalized partner name. The UNKNOWN group is excluded from the returned
// list; use Summary for totals that include it. Sorting is stable, so groups
// tied on the sort key keep first-seen input order.
func AggregatePartners(deals []models.Deal, opt SortOption) []PartnerMetrics {
	groups, order := groupDeals(deals)

	metrics := make([]PartnerMetrics, 0, len(order))
	for _, partner := range order {
		if partner == models.UnknownPartner {
			continue
		}
		metrics = append(metrics, computePartnerMetrics(partner, groups[partner]))
	}

	sortPartners(metrics, opt)
	return metrics
}

// Summary computes overall deal totals, UNKNOWN included
func Summary(deals []models.Deal) OverallSummary {
	s := OverallSummary{
		TotalFunded: decimal.Zero,
		TotalFees:   decimal.Zero,
		AverageDeal: decimal.Zero,
	}

	partners := make(map[string]bool)
	for _, deal := range deals {
		s.DealCount++
		s.TotalFunded = s.TotalFunded.Add(deal.FundedAmount)
		s.TotalFees = s.TotalFees.Add(deal.ManagementFee)

		if deal.Class() == models.DealClassNew {
			s.NewDeals++
		} else {
			s.RenewalDeals++
		}

		if deal.Partner == models.UnknownPartner {
			s.UnknownDeals++
		} else {
			partners[deal.Partner] = true
		}
	}

	s.PartnerCount = len(partners)
	if s.DealCount > 0 {
		s.AverageDeal = s.TotalFunded.Div(decimal.NewFromInt(int64(s.DealCount)))
	}
	s.AverageFeePercent = feePercent(s.TotalFees, s.TotalFunded)

	return s
}

// AggregateConversion computes per-ISO conversion metrics over enriched
// submissions, grouped by normalized ISO. UNKNOWN is excluded from the
// returned list. "Offered" counts submissions that reached at least the
// Offered stage, so funded submissions count as offered too.
func AggregateConversion(subs []models.EnrichedSubmission, opt SortOption) []ConversionMetrics {
	groups := make(map[string][]models.EnrichedSubmission)
	var order []string

	for _, sub := range subs {
		iso := sub.ISO
		if iso == "" {
			iso = models.UnknownPartner
		}
		if _, seen := groups[iso]; !seen {
			order = append(order, iso)
		}
		groups[iso] = append(groups[iso], sub)
	}

	metrics := make([]ConversionMetrics, 0, len(order))
	for _, iso := range order {
		if iso == models.UnknownPartner {
			continue
		}
		metrics = append(metrics, ComputeConversionMetrics(iso, groups[iso]))
	}

	sortConversions(metrics, opt)
	return metrics
}

// ComputeConversionMetrics derives conversion figures for one ISO's
// submissions
func ComputeConversionMetrics(iso string, subs []models.EnrichedSubmission) ConversionMetrics {
	m := ConversionMetrics{
		ISO:             iso,
		TotalRevenue:    decimal.Zero,
		AvgOfferAmount:  decimal.Zero,
		AvgFundedAmount: decimal.Zero,
	}

	offerTotal := decimal.Zero
	offerCount := 0
	fundedTotal := decimal.Zero
	fundedAmountCount := 0
	daysTotal := 0
	daysCount := 0

	for _, sub := range subs {
		m.TotalSubmissions++

		reachedOffer := sub.IsFunded ||
			sub.FundingStatus == models.FundingStatusOffered ||
			sub.StageCategory == models.StageOffered
		if reachedOffer {
			m.Offered++
		}

		if sub.IsFunded {
			m.Funded++
			m.TotalRevenue = m.TotalRevenue.Add(sub.ManagementFee)

			if sub.FundedAmount.IsPositive() {
				fundedTotal = fundedTotal.Add(sub.FundedAmount)
				fundedAmountCount++
			}

			if sub.DaysToFund >= 0 {
				daysTotal += sub.DaysToFund
				daysCount++
				if daysCount == 1 || sub.DaysToFund < m.MinDaysToFund {
					m.MinDaysToFund = sub.DaysToFund
				}
				if sub.DaysToFund > m.MaxDaysToFund {
					m.MaxDaysToFund = sub.DaysToFund
				}
			}
		}

		if sub.OfferAmount.IsPositive() {
			offerTotal = offerTotal.Add(sub.OfferAmount)
			offerCount++
		}
	}

	m.SubmissionToOfferRate = rate(m.Offered, m.TotalSubmissions)
	m.OfferToFundedRate = rate(m.Funded, m.Offered)
	m.OverallConversionRate = rate(m.Funded, m.TotalSubmissions)

	if offerCount > 0 {
		m.AvgOfferAmount = offerTotal.Div(decimal.NewFromInt(int64(offerCount)))
	}
	if fundedAmountCount > 0 {
		m.AvgFundedAmount = fundedTotal.Div(decimal.NewFromInt(int64(fundedAmountCount)))
	}
	if daysCount > 0 {
		m.AvgDaysToFund = float64(daysTotal) / float64(daysCount)
	}

	return m
}

// MonthlyTrend builds the trailing month-by-month conversion series for one
// ISO, ordered chronologically
func MonthlyTrend(subs []models.EnrichedSubmission, iso string) []MonthPoint {
	byMonth := make(map[string]*MonthPoint)
	var months []string

	for _, sub := range subs {
		if sub.ISO != iso {
			continue
		}

		point, ok := byMonth[sub.Month]
		if !ok {
			point = &MonthPoint{Month: sub.Month, TotalFunded: decimal.Zero}
			byMonth[sub.Month] = point
			months = append(months, sub.Month)
		}

		point.Submissions++
		if sub.IsFunded {
			point.Funded++
			point.TotalFunded = point.TotalFunded.Add(sub.FundedAmount)
		}
	}

	sort.Strings(months)

	trend := make([]MonthPoint, 0, len(months))
	for _, month := range months {
		point := byMonth[month]
		point.ConversionRate = rate(point.Funded, point.Submissions)
		trend = append(trend, *point)
	}
	return trend
}

// FilterDealsByRange returns the deals whose funding date falls inside the
// inclusive range
func FilterDealsByRange(deals []models.Deal, r models.DateRange) []models.Deal {
	var out []models.Deal
	for _, deal := range deals {
		if r.Contains(deal.FundingDate) {
			out = append(out, deal)
		}
	}
	return out
}

// FilterSubmissionsByRange returns the submissions whose lead-submitted date
// falls inside the inclusive range
func FilterSubmissionsByRange(subs []models.EnrichedSubmission, r models.DateRange) []models.EnrichedSubmission {
	var out []models.EnrichedSubmission
	for _, sub := range subs {
		if r.Contains(sub.LeadSubmitted) {
			out = append(out, sub)
		}
	}
	return out
}

// MonthRange returns the inclusive date range covering t's calendar month
func MonthRange(t time.Time) models.DateRange {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return models.DateRange{Start: first, End: first.AddDate(0, 1, -1)}
}

func groupDeals(deals []models.Deal) (map[string][]models.Deal, []string) {
	groups := make(map[string][]models.Deal)
	var order []string

	for _, deal := range deals {
		partner := deal.Partner
		if partner == "" {
			partner = models.UnknownPartner
		}
		if _, seen := groups[partner]; !seen {
			order = append(order, partner)
		}
		groups[partner] = append(groups[partner], deal)
	}

	return groups, order
}

func computePartnerMetrics(partner string, deals []models.Deal) PartnerMetrics {
	m := PartnerMetrics{
		Partner:     partner,
		TotalFunded: decimal.Zero,
		TotalFees:   decimal.Zero,
		AverageDeal: decimal.Zero,
	}

	for _, deal := range deals {
		m.DealCount++
		m.TotalFunded = m.TotalFunded.Add(deal.FundedAmount)
		m.TotalFees = m.TotalFees.Add(deal.ManagementFee)

		if deal.Class() == models.DealClassNew {
			m.NewDeals++
		} else {
			m.RenewalDeals++
		}
	}

	if m.DealCount > 0 {
		m.AverageDeal = m.TotalFunded.Div(decimal.NewFromInt(int64(m.DealCount)))
	}
	m.AverageFeePercent = feePercent(m.TotalFees, m.TotalFunded)

	return m
}

func sortPartners(metrics []PartnerMetrics, opt SortOption) {
	less := func(i, j int) bool {
		switch opt.Field {
		case SortByCount:
			return metrics[i].DealCount < metrics[j].DealCount
		case SortByFees:
			return metrics[i].TotalFees.LessThan(metrics[j].TotalFees)
		case SortByName:
			return metrics[i].Partner < metrics[j].Partner
		default:
			return metrics[i].TotalFunded.LessThan(metrics[j].TotalFunded)
		}
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		if opt.Descending {
			return less(j, i)
		}
		return less(i, j)
	})
}

func sortConversions(metrics []ConversionMetrics, opt SortOption) {
	less := func(i, j int) bool {
		switch opt.Field {
		case SortByConverted:
			return metrics[i].OverallConversionRate < metrics[j].OverallConversionRate
		case SortByFees:
			return metrics[i].TotalRevenue.LessThan(metrics[j].TotalRevenue)
		case SortByName:
			return metrics[i].ISO < metrics[j].ISO
		default:
			return metrics[i].TotalSubmissions < metrics[j].TotalSubmissions
		}
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		if opt.Descending {
			return less(j, i)
		}
		return less(i, j)
	})
}

// rate computes numerator/denominator as a percentage, 0 when the denominator
// is zero
func rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}

// feePercent computes fees as a percentage of funded volume, 0 when volume is
// zero
func feePercent(fees, funded decimal.Decimal) float64 {
	if funded.IsZero() {
		return 0
	}
	pct, _ := fees.Div(funded).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
