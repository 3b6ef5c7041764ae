package rules

import (
	"fmt"
	"math"

	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

// aiAdoptionTrendThreshold is the minimum absolute percentage-point
// change between the first and last week before the rule fires.
const aiAdoptionTrendThreshold = 10.0

// cycleTimeTrendThreshold is the minimum absolute percent change before
// the cycle time rule fires.
const cycleTimeTrendThreshold = 20.0

// evaluateAIAdoptionTrend compares AI-assisted PR share in the first and
// last week of the lookback window.
func evaluateAIAdoptionTrend(ctx *Context) ([]insight.Candidate, error) {
	series, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricAIAdoptionPct, ctx.Date, ctx.LookbackWeeks)
	if err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, nil
	}

	first := series[0].Value
	last := series[len(series)-1].Value
	delta := last - first
	if math.Abs(delta) <= aiAdoptionTrendThreshold {
		return nil, nil
	}

	direction := "up"
	if delta < 0 {
		direction = "down"
	}

	return []insight.Candidate{{
		Category: insight.CategoryTrend,
		Priority: insight.PriorityMedium,
		Title: fmt.Sprintf("AI adoption %s %.0f points over %d weeks",
			direction, math.Abs(delta), ctx.LookbackWeeks),
		Description: fmt.Sprintf(
			"AI-assisted PRs went from %.0f%% to %.0f%% of merged work between the first and last week of the window.",
			first, last),
		MetricType: "ai_adoption",
		MetricValue: map[string]any{
			"first": first,
			"last":  last,
			"delta": delta,
			"weeks": seriesPayload(series),
		},
		ComparisonPeriod: fmt.Sprintf("ai_adoption_%dw", ctx.LookbackWeeks),
	}}, nil
}

// evaluateCycleTimeTrend compares mean cycle time in the first and last
// week of the lookback window.
func evaluateCycleTimeTrend(ctx *Context) ([]insight.Candidate, error) {
	series, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricCycleTimeHours, ctx.Date, ctx.LookbackWeeks)
	if err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, nil
	}

	first := series[0].Value
	last := series[len(series)-1].Value
	if first == 0 {
		return nil, nil
	}

	changePct := (last - first) / first * 100
	if math.Abs(changePct) < cycleTimeTrendThreshold {
		return nil, nil
	}

	verb := "regressed"
	priority := insight.PriorityHigh
	if changePct < 0 {
		verb = "improved"
		priority = insight.PriorityMedium
	}

	return []insight.Candidate{{
		Category: insight.CategoryTrend,
		Priority: priority,
		Title: fmt.Sprintf("Cycle time %s %.0f%% over %d weeks",
			verb, math.Abs(changePct), ctx.LookbackWeeks),
		Description: fmt.Sprintf(
			"Average time from first commit to merge moved from %.1fh to %.1fh between the first and last week of the window.",
			first, last),
		MetricType: "cycle_time",
		MetricValue: map[string]any{
			"first":      first,
			"last":       last,
			"change_pct": changePct,
			"weeks":      seriesPayload(series),
		},
		ComparisonPeriod: fmt.Sprintf("cycle_time_%dw", ctx.LookbackWeeks),
	}}, nil
}

// seriesPayload renders weekly points into the chart payload shape.
func seriesPayload(series []metrics.WeeklyPoint) []map[string]any {
	out := make([]map[string]any, 0, len(series))
	for _, p := range series {
		out = append(out, map[string]any{"week": p.WeekStart, "value": p.Value})
	}
	return out
}
