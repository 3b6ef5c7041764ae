package rules

import (
	"fmt"

	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

// Milestone bands. A milestone fires while the cumulative value sits in
// [milestone, milestone+band); first match wins so one crossing produces
// one insight.
var (
	aiAdoptionMilestones = []float64{25, 50, 75, 90}
	prCountMilestones    = []float64{50, 100, 250, 500, 1000}
)

const (
	aiMilestoneBand = 5
	prMilestoneBand = 10
)

// evaluateAIAdoptionMilestone fires once when cumulative AI adoption
// crosses a milestone band.
func evaluateAIAdoptionMilestone(ctx *Context) ([]insight.Candidate, error) {
	value, ok, err := ctx.Agg.Total(ctx.Team, metrics.TotalAIAdoptionPct)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	for _, m := range aiAdoptionMilestones {
		if value >= m && value < m+aiMilestoneBand {
			return []insight.Candidate{{
				Category: insight.CategoryComparison,
				Priority: insight.PriorityLow,
				Title:    fmt.Sprintf("AI adoption crossed %.0f%%", m),
				Description: fmt.Sprintf(
					"%.0f%% of the team's merged PRs now involve AI assistance, past the %.0f%% milestone.",
					value, m),
				MetricType: "ai_adoption_milestone",
				MetricValue: map[string]any{
					"value":     value,
					"milestone": m,
				},
				ComparisonPeriod: "milestone_ai",
			}}, nil
		}
	}
	return nil, nil
}

// evaluatePRCountMilestone fires once when the all-time merged PR count
// crosses a milestone band.
func evaluatePRCountMilestone(ctx *Context) ([]insight.Candidate, error) {
	value, ok, err := ctx.Agg.Total(ctx.Team, metrics.TotalPRCount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	for _, m := range prCountMilestones {
		if value >= m && value < m+prMilestoneBand {
			return []insight.Candidate{{
				Category: insight.CategoryComparison,
				Priority: insight.PriorityLow,
				Title:    fmt.Sprintf("Team passed %.0f merged PRs", m),
				Description: fmt.Sprintf(
					"The team has merged %.0f PRs all time, crossing the %.0f mark.",
					value, m),
				MetricType: "pr_count_milestone",
				MetricValue: map[string]any{
					"value":     value,
					"milestone": m,
				},
				ComparisonPeriod: "milestone_prs",
			}}, nil
		}
	}
	return nil, nil
}
