// Package benchmark maps team metric values to industry percentile
// standing using stored anchor points. All anchored metrics are
// time-like: a smaller raw value means a better (higher) percentile.
package benchmark

import "math"

// Anchor holds the four industry anchor points for one metric.
// Values must be strictly increasing: p25 < p50 < p75 < p90.
type Anchor struct {
	P25 float64
	P50 float64
	P75 float64
	P90 float64
}

// Standing is the result of a percentile estimate.
type Standing struct {
	Percentile int
	Label      string
	Sufficient bool
}

// Performance band labels, best to worst.
const (
	LabelElite            = "Elite"
	LabelHigh             = "High"
	LabelMedium           = "Medium"
	LabelLow              = "Low"
	LabelNeedsImprovement = "Needs improvement"
)

// Estimate returns the percentile standing for a team value against an
// anchor. A nil value or nil anchor yields the neutral percentile 50
// marked insufficient, never an error.
func Estimate(value *float64, anchor *Anchor) Standing {
	if value == nil || anchor == nil {
		return Standing{Percentile: 50, Label: LabelMedium, Sufficient: false}
	}
	return Standing{
		Percentile: Percentile(*value, *anchor),
		Label:      Classify(*value, *anchor),
		Sufficient: true,
	}
}

// Percentile maps a metric value to an integer percentile 0-100 using
// five piecewise-linear segments between the anchor points. Smaller raw
// values land in higher percentiles.
func Percentile(value float64, a Anchor) int {
	switch {
	case value <= a.P25:
		if a.P25 == 0 {
			return 100
		}
		p := 75 + (1-value/a.P25)*25
		return clamp(p, 75, 100)
	case value <= a.P50:
		p := 50 + (a.P50-value)/(a.P50-a.P25)*25
		return clamp(p, 50, 75)
	case value <= a.P75:
		p := 25 + (a.P75-value)/(a.P75-a.P50)*25
		return clamp(p, 25, 50)
	case value <= a.P90:
		p := 10 + (a.P90-value)/(a.P90-a.P75)*15
		return clamp(p, 10, 25)
	default:
		if a.P90 == 0 {
			return 0
		}
		excess := (value - a.P90) / a.P90
		if excess > 1 {
			excess = 1
		}
		p := 10 - excess*10
		return clamp(p, 0, 10)
	}
}

// Classify maps a metric value to its performance band label.
func Classify(value float64, a Anchor) string {
	switch {
	case value <= a.P25:
		return LabelElite
	case value <= a.P50:
		return LabelHigh
	case value <= a.P75:
		return LabelMedium
	case value <= a.P90:
		return LabelLow
	default:
		return LabelNeedsImprovement
	}
}

func clamp(p, lo, hi float64) int {
	if p < lo {
		p = lo
	}
	if p > hi {
		p = hi
	}
	return int(math.Round(p))
}
