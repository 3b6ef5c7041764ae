package rules

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

// hotfixSpikeMultiplier: the current week must reach this multiple of the
// preceding per-week average before the hotfix rule fires.
const hotfixSpikeMultiplier = 3.0

// ciFailureRateThreshold is the failure percentage above which the CI
// rule fires (strict).
const ciFailureRateThreshold = 20.0

// evaluateHotfixSpike fires when this week's hotfix count reaches three
// times the per-week average of the preceding lookback window.
func evaluateHotfixSpike(ctx *Context) ([]insight.Candidate, error) {
	series, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricHotfixCount, ctx.Date, ctx.LookbackWeeks+1)
	if err != nil {
		return nil, err
	}

	current, previous, err := splitCurrentWeek(series, ctx.Date)
	if err != nil {
		return nil, err
	}
	if len(previous) == 0 {
		return nil, nil
	}

	avg := stat.Mean(previous, nil)
	if avg <= 0 || current < hotfixSpikeMultiplier*avg {
		return nil, nil
	}

	return []insight.Candidate{{
		Category: insight.CategoryAnomaly,
		Priority: insight.PriorityHigh,
		Title:    fmt.Sprintf("Hotfix spike: %.0f this week vs %.1f/week average", current, avg),
		Description: fmt.Sprintf(
			"The team shipped %.0f hotfixes this week against a %.1f/week average over the previous %d weeks. Something may be destabilizing main.",
			current, avg, ctx.LookbackWeeks),
		MetricType: "hotfix_count",
		MetricValue: map[string]any{
			"current":      current,
			"previous_avg": avg,
			"previous_std": stat.StdDev(previous, nil),
		},
		ComparisonPeriod: "hotfix_week",
	}}, nil
}

// evaluateRevertSpike fires on any revert in the current week. Reverts
// are rare enough that each one is worth surfacing.
func evaluateRevertSpike(ctx *Context) ([]insight.Candidate, error) {
	series, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricRevertCount, ctx.Date, ctx.LookbackWeeks+1)
	if err != nil {
		return nil, err
	}

	current, _, err := splitCurrentWeek(series, ctx.Date)
	if err != nil {
		return nil, err
	}
	if current <= 0 {
		return nil, nil
	}

	noun := "reverts"
	if current == 1 {
		noun = "revert"
	}

	return []insight.Candidate{{
		Category: insight.CategoryAnomaly,
		Priority: insight.PriorityHigh,
		Title:    fmt.Sprintf("%.0f %s this week", current, noun),
		Description: fmt.Sprintf(
			"%.0f merged PR(s) were reverted this week. Worth a look at what slipped through review or CI.",
			current),
		MetricType:       "revert_count",
		MetricValue:      map[string]any{"current": current},
		ComparisonPeriod: "revert_week",
	}}, nil
}

// evaluateCIFailureRate fires when the CI failure rate over the trailing
// lookback window exceeds the threshold. Requires at least one completed
// run in the window.
func evaluateCIFailureRate(ctx *Context) ([]insight.Candidate, error) {
	passRates, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricCIPassRate, ctx.Date, ctx.LookbackWeeks)
	if err != nil {
		return nil, err
	}
	runCounts, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricCIRunCount, ctx.Date, ctx.LookbackWeeks)
	if err != nil {
		return nil, err
	}

	passRate, totalRuns := weightedPassRate(passRates, runCounts)
	if totalRuns < 1 {
		return nil, nil
	}

	failureRate := 100 - passRate
	if failureRate <= ciFailureRateThreshold {
		return nil, nil
	}

	return []insight.Candidate{{
		Category: insight.CategoryAnomaly,
		Priority: insight.PriorityMedium,
		Title:    fmt.Sprintf("CI failure rate at %.0f%% over %d weeks", failureRate, ctx.LookbackWeeks),
		Description: fmt.Sprintf(
			"%.0f%% of %.0f CI runs failed in the trailing window. Flaky tests and broken builds slow everyone down.",
			failureRate, totalRuns),
		MetricType: "ci_failure_rate",
		MetricValue: map[string]any{
			"failure_rate": failureRate,
			"pass_rate":    passRate,
			"total_runs":   totalRuns,
		},
		ComparisonPeriod: fmt.Sprintf("ci_%dw", ctx.LookbackWeeks),
	}}, nil
}

// weightedPassRate combines weekly pass rates, weighting by run counts
// where counts exist for the same weeks. Weeks without a matching run
// count carry weight 1.
func weightedPassRate(passRates, runCounts []metrics.WeeklyPoint) (rate, totalRuns float64) {
	counts := make(map[string]float64, len(runCounts))
	for _, p := range runCounts {
		counts[p.WeekStart] = p.Value
		totalRuns += p.Value
	}

	var weightedSum, weightSum float64
	for _, p := range passRates {
		w, ok := counts[p.WeekStart]
		if !ok || w <= 0 {
			w = 1
		}
		weightedSum += p.Value * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0, totalRuns
	}
	return weightedSum / weightSum, totalRuns
}

// splitCurrentWeek sums samples falling in the 7 days ending at date and
// collects the values of earlier weeks.
func splitCurrentWeek(series []metrics.WeeklyPoint, date string) (current float64, previous []float64, err error) {
	end, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	cutoff := end.AddDate(0, 0, -6).Format("2006-01-02")

	for _, p := range series {
		if p.WeekStart >= cutoff {
			current += p.Value
		} else {
			previous = append(previous, p.Value)
		}
	}
	return current, previous, nil
}
