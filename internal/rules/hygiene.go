package rules

import (
	"fmt"

	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

// unlinkedPRThreshold is the minimum count of merged PRs without an
// issue-tracker key before the hygiene rule fires.
const unlinkedPRThreshold = 5

// evaluateUnlinkedPRs fires when too many merged PRs in the lookback
// window lack an issue-tracker link.
func evaluateUnlinkedPRs(ctx *Context) ([]insight.Candidate, error) {
	series, err := ctx.Agg.WeeklySeries(ctx.Team, metrics.MetricUnlinkedPRCount, ctx.Date, ctx.LookbackWeeks)
	if err != nil {
		return nil, err
	}

	var count float64
	for _, p := range series {
		count += p.Value
	}
	if count < unlinkedPRThreshold {
		return nil, nil
	}

	return []insight.Candidate{{
		Category: insight.CategoryAction,
		Priority: insight.PriorityLow,
		Title:    fmt.Sprintf("%.0f merged PRs have no linked issue", count),
		Description: fmt.Sprintf(
			"%.0f PRs merged in the last %d weeks carry no issue-tracker key, which makes the work invisible to planning.",
			count, ctx.LookbackWeeks),
		MetricType:       "unlinked_prs",
		MetricValue:      map[string]any{"count": count},
		ComparisonPeriod: fmt.Sprintf("%d_weeks", ctx.LookbackWeeks),
	}}, nil
}
