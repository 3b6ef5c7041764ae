package rules

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/teampulse/teampulse/internal/benchmark"
	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

const (
	// benchmarkElitePercentile: at or above this the team gets an
	// "elite" insight.
	benchmarkElitePercentile = 75
	// benchmarkLaggingPercentile: at or below this the team gets a
	// "needs improvement" insight.
	benchmarkLaggingPercentile = 10
)

// evaluateCycleTimeBenchmark compares the team's recent cycle time to
// industry anchor points. Percentiles between the two cutoffs produce
// nothing: average standing is not news.
func evaluateCycleTimeBenchmark(ctx *Context) ([]insight.Candidate, error) {
	series, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricCycleTimeHours, ctx.Date, ctx.LookbackWeeks)
	if err != nil {
		return nil, err
	}

	var value *float64
	if len(series) > 0 {
		values := make([]float64, 0, len(series))
		for _, p := range series {
			values = append(values, p.Value)
		}
		v := stat.Mean(values, nil)
		value = &v
	}

	anchor, err := ctx.Anchors.Anchor(metrics.MetricCycleTimeHours, ctx.TeamSizeBucket)
	if err != nil {
		return nil, err
	}

	standing := benchmark.Estimate(value, anchor)
	if !standing.Sufficient {
		return nil, nil
	}

	switch {
	case standing.Percentile >= benchmarkElitePercentile:
		return []insight.Candidate{{
			Category: insight.CategoryComparison,
			Priority: insight.PriorityLow,
			Title:    fmt.Sprintf("Cycle time in the top %d%% of teams", 100-standing.Percentile),
			Description: fmt.Sprintf(
				"At %.1fh, the team's cycle time sits at the %dth percentile (%s) for its size bucket.",
				*value, standing.Percentile, standing.Label),
			MetricType: "cycle_time_benchmark",
			MetricValue: map[string]any{
				"value":      *value,
				"percentile": standing.Percentile,
				"label":      standing.Label,
			},
			ComparisonPeriod: "benchmark",
		}}, nil
	case standing.Percentile <= benchmarkLaggingPercentile:
		return []insight.Candidate{{
			Category: insight.CategoryComparison,
			Priority: insight.PriorityHigh,
			Title:    "Cycle time well behind industry benchmarks",
			Description: fmt.Sprintf(
				"At %.1fh, the team's cycle time sits at the %dth percentile (%s) for its size bucket.",
				*value, standing.Percentile, standing.Label),
			MetricType: "cycle_time_benchmark",
			MetricValue: map[string]any{
				"value":      *value,
				"percentile": standing.Percentile,
				"label":      standing.Label,
			},
			ComparisonPeriod: "benchmark",
		}}, nil
	}
	return nil, nil
}
