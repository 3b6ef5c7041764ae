package rules

import (
	"fmt"
	"sort"

	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

const (
	// redundantAgreementRate is the minimum all-time agreement rate for
	// a pair to count as redundant.
	redundantAgreementRate = 0.95
	// redundantMinReviews is the minimum PRs reviewed together.
	redundantMinReviews = 10
	// redundantPairCap bounds how many pairs one sweep reports.
	redundantPairCap = 3
)

// evaluateRedundantReviewers surfaces reviewer pairs that almost always
// agree, where one of the two reviews adds little signal.
func evaluateRedundantReviewers(ctx *Context) ([]insight.Candidate, error) {
	pairs, err := ctx.Agg.ReviewerPairs(ctx.Team)
	if err != nil {
		return nil, err
	}

	var redundant []metrics.PairStat
	for _, p := range pairs {
		if p.Total >= redundantMinReviews && p.AgreementRate() >= redundantAgreementRate {
			redundant = append(redundant, p)
		}
	}
	if len(redundant) == 0 {
		return nil, nil
	}

	// Stable sort keeps storage order for equal rates.
	sort.SliceStable(redundant, func(i, j int) bool {
		return redundant[i].AgreementRate() > redundant[j].AgreementRate()
	})
	if len(redundant) > redundantPairCap {
		redundant = redundant[:redundantPairCap]
	}

	candidates := make([]insight.Candidate, 0, len(redundant))
	for i, p := range redundant {
		candidates = append(candidates, insight.Candidate{
			Category: insight.CategoryAction,
			Priority: insight.PriorityLow,
			Title: fmt.Sprintf("%s and %s agree on %.0f%% of reviews",
				p.ReviewerA, p.ReviewerB, p.AgreementRate()*100),
			Description: fmt.Sprintf(
				"Across %d PRs reviewed together, %s and %s almost never disagree. One of the two reviews may be redundant.",
				p.Total, p.ReviewerA, p.ReviewerB),
			MetricType: "reviewer_agreement",
			MetricValue: map[string]any{
				"reviewer_a":     p.ReviewerA,
				"reviewer_b":     p.ReviewerB,
				"agreement_rate": p.AgreementRate(),
				"total":          p.Total,
			},
			ComparisonPeriod: fmt.Sprintf("all_time_pair_%d", i+1),
		})
	}
	return candidates, nil
}
