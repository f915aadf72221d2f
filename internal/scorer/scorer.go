// Package scorer derives composite 0-100 quality scores per ISO from
// conversion metrics and trailing monthly history.
//
// Five weighted components add up to the total:
//
//	Conversion  0-40  piecewise on overall conversion rate
//	Revenue     0-20  percentile rank of total revenue across all ISOs
//	Volume      0-15  percentile rank of submission volume across all ISOs
//	Speed       0-15  piecewise on average days to fund
//	Consistency 0-10  stdev of monthly conversion rate, given enough history
package scorer

import (
	"math"

	"golang-mca-analytics/internal/aggregator"
)

// Point budgets for the five score components
const (
	conversionBudget  = 40.0
	revenueBudget     = 20.0
	volumeBudget      = 15.0
	speedBudget       = 15.0
	consistencyBudget = 10.0

	// Months of history required before consistency is measured
	minHistoryMonths = 3

	// Consistency score when history is too short to judge
	defaultConsistencyPoints = 5.0
)

// QualityScore is the composite grade for one ISO
type QualityScore struct {
	ISO               string  `json:"iso"`
	ConversionPoints  float64 `json:"conversionPoints"`
	VolumePoints      float64 `json:"volumePoints"`
	RevenuePoints     float64 `json:"revenuePoints"`
	SpeedPoints       float64 `json:"speedPoints"`
	ConsistencyPoints float64 `json:"consistencyPoints"`
	Total             int     `json:"total"`
	Grade             string  `json:"grade"`
	Tier              int     `json:"tier"`
}

// Score computes the composite quality score for one ISO. The full cross-ISO
// metric set supplies the distribution for the percentile-ranked components.
func Score(m aggregator.ConversionMetrics, history []aggregator.MonthPoint, all []aggregator.ConversionMetrics) QualityScore {
	s := QualityScore{ISO: m.ISO}

	s.ConversionPoints = conversionPoints(m.OverallConversionRate)
	s.VolumePoints = percentile(float64(m.TotalSubmissions), volumes(all)) * volumeBudget
	s.RevenuePoints = percentile(revenueValue(m), revenues(all)) * revenueBudget
	s.SpeedPoints = speedPoints(m.AvgDaysToFund)
	s.ConsistencyPoints = consistencyPoints(history)

	total := s.ConversionPoints + s.VolumePoints + s.RevenuePoints + s.SpeedPoints + s.ConsistencyPoints
	s.Total = int(math.Round(total))
	s.Grade = grade(s.Total)
	s.Tier = tier(s.Total)

	return s
}

// ScoreAll scores every ISO in the metric set. Trend histories are keyed by
// ISO; missing histories score the default consistency.
func ScoreAll(all []aggregator.ConversionMetrics, trends map[string][]aggregator.MonthPoint) []QualityScore {
	scores := make([]QualityScore, 0, len(all))
	for _, m := range all {
		scores = append(scores, Score(m, trends[m.ISO], all))
	}
	return scores
}

// conversionPoints grades the overall conversion rate against the thresholds
// the sales desk judges ISOs by
func conversionPoints(rate float64) float64 {
	switch {
	case rate >= 25:
		return conversionBudget
	case rate >= 20:
		return 35
	case rate >= 15:
		return 30
	case rate >= 12:
		return 25
	case rate >= 10:
		return 20
	default:
		points := rate * 2
		if points < 0 {
			return 0
		}
		return points
	}
}

// speedPoints grades average days to fund. Past 60 days the score decays
// linearly from the 30-day baseline, floored at 0.
func speedPoints(avgDays float64) float64 {
	switch {
	case avgDays <= 30:
		return speedBudget
	case avgDays <= 45:
		return 12
	case avgDays <= 60:
		return 8
	default:
		points := speedBudget - 0.3*(avgDays-30)
		if points < 0 {
			return 0
		}
		return points
	}
}

// consistencyPoints grades the standard deviation of monthly conversion rate.
// Under 3 months of history there is nothing to judge, so a neutral default
// applies.
func consistencyPoints(history []aggregator.MonthPoint) float64 {
	if len(history) < minHistoryMonths {
		return defaultConsistencyPoints
	}

	rates := make([]float64, len(history))
	for i, point := range history {
		rates[i] = point.ConversionRate
	}

	stdev := standardDeviation(rates)
	switch {
	case stdev <= 5:
		return consistencyBudget
	case stdev <= 10:
		return 7
	case stdev <= 15:
		return 4
	default:
		return 2
	}
}

// percentile returns the fraction of the distribution at or below v, in
// [0, 1]. An empty distribution ranks 0.
func percentile(v float64, distribution []float64) float64 {
	if len(distribution) == 0 {
		return 0
	}

	atOrBelow := 0
	for _, value := range distribution {
		if value <= v {
			atOrBelow++
		}
	}
	return float64(atOrBelow) / float64(len(distribution))
}

func volumes(all []aggregator.ConversionMetrics) []float64 {
	out := make([]float64, len(all))
	for i, m := range all {
		out[i] = float64(m.TotalSubmissions)
	}
	return out
}

func revenues(all []aggregator.ConversionMetrics) []float64 {
	out := make([]float64, len(all))
	for i, m := range all {
		out[i] = revenueValue(m)
	}
	return out
}

func revenueValue(m aggregator.ConversionMetrics) float64 {
	v, _ := m.TotalRevenue.Float64()
	return v
}

func standardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

func grade(total int) string {
	switch {
	case total >= 90:
		return "A+"
	case total >= 80:
		return "A"
	case total >= 70:
		return "B"
	case total >= 60:
		return "C"
	case total >= 50:
		return "D"
	default:
		return "F"
	}
}

func tier(total int) int {
	switch {
	case total >= 80:
		return 1
	case total >= 65:
		return 2
	case total >= 50:
		return 3
	default:
		return 4
	}
}
