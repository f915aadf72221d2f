package scorer

import (
	"fmt"
	"sort"

	"golang-mca-analytics/internal/aggregator"
)

// AlertLevel orders alerts by severity
type AlertLevel int

const (
	LevelCritical AlertLevel = iota
	LevelWarning
	LevelInfo
)

// String returns the string representation of AlertLevel
func (l AlertLevel) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelWarning:
		return "warning"
	default:
		return "info"
	}
}

// MarshalText renders the level for JSON output
func (l AlertLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Alert flags an ISO condition that needs attention
type Alert struct {
	ISO     string     `json:"iso"`
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
}

// Alert thresholds
const (
	criticalConversionRate = 10.0
	warningConversionRate  = 12.0
	criticalTotalScore     = 50
	warningDaysToFund      = 60.0
	topPerformerScore      = 85
)

// GenerateAlerts flags critical and warning conditions per ISO, plus
// informational flags for top performers. Metrics and scores are joined by
// ISO. Output is sorted critical first, then warning, then info; order within
// a level follows the input.
func GenerateAlerts(scores []QualityScore, metrics []aggregator.ConversionMetrics) []Alert {
	byISO := make(map[string]aggregator.ConversionMetrics, len(metrics))
	for _, m := range metrics {
		byISO[m.ISO] = m
	}

	var alerts []Alert
	for _, score := range scores {
		m, hasMetrics := byISO[score.ISO]

		switch {
		case hasMetrics && m.OverallConversionRate < criticalConversionRate:
			alerts = append(alerts, Alert{
				ISO:   score.ISO,
				Level: LevelCritical,
				Message: fmt.Sprintf("conversion rate %.1f%% is below %.0f%%",
					m.OverallConversionRate, criticalConversionRate),
			})
		case hasMetrics && m.OverallConversionRate < warningConversionRate:
			alerts = append(alerts, Alert{
				ISO:   score.ISO,
				Level: LevelWarning,
				Message: fmt.Sprintf("conversion rate %.1f%% is below %.0f%%",
					m.OverallConversionRate, warningConversionRate),
			})
		}

		if score.Total < criticalTotalScore {
			alerts = append(alerts, Alert{
				ISO:     score.ISO,
				Level:   LevelCritical,
				Message: fmt.Sprintf("quality score %d is below %d", score.Total, criticalTotalScore),
			})
		}

		if hasMetrics && m.AvgDaysToFund > warningDaysToFund {
			alerts = append(alerts, Alert{
				ISO:     score.ISO,
				Level:   LevelWarning,
				Message: fmt.Sprintf("average days to fund %.1f exceeds %.0f", m.AvgDaysToFund, warningDaysToFund),
			})
		}

		if score.Total >= topPerformerScore {
			alerts = append(alerts, Alert{
				ISO:     score.ISO,
				Level:   LevelInfo,
				Message: fmt.Sprintf("top performer with quality score %d", score.Total),
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Level < alerts[j].Level
	})

	return alerts
}
