package generate

import (
	"fmt"

	"github.com/teampulse/teampulse/internal/metrics"
)

// Fallback thresholds, mirroring the rule-based anomaly cutoffs.
const (
	fallbackRevertRatePct     = 8.0
	fallbackLargePRPct        = 30.0
	fallbackCycleTimeHours    = 48.0
	fallbackThroughputDropPct = -30.0
	fallbackAIAdoptionPct     = 50.0
)

// Fallback synthesizes a narrative insight from the numeric snapshot
// alone. It is fully deterministic and used when every backend fails;
// the first matching condition wins.
func Fallback(snap *metrics.Snapshot) *Response {
	resp := &Response{IsFallback: true}

	switch {
	case snap.RevertRatePct > fallbackRevertRatePct:
		resp.Headline = "Revert rate is eating into the team's delivered work"
		resp.Detail = fmt.Sprintf(
			"%.1f%% of the %.0f PRs merged in the last %d days were reverted. CI passed %.0f%% of runs over the same window.",
			snap.RevertRatePct, snap.PRsMerged, snap.Days, snap.CIPassRatePct)
		resp.Recommendation = "Review what the reverted changes had in common before merging more of the same."
		resp.Actions = []Action{
			{Type: ActionViewReverts, Label: "See reverted PRs"},
			{Type: ActionViewCIRuns, Label: "Check CI runs"},
		}
	case snap.LargePRPct > fallbackLargePRPct && snap.CycleTimeHours > fallbackCycleTimeHours:
		resp.Headline = "Large changes are dragging out the path to merge"
		resp.Detail = fmt.Sprintf(
			"%.0f%% of recent PRs exceed 500 lines and cycle time is sitting at %.1f hours. Big diffs wait longer for review and merge with less scrutiny.",
			snap.LargePRPct, snap.CycleTimeHours)
		resp.Recommendation = "Split work into smaller PRs to bring review latency down."
		resp.Actions = []Action{
			{Type: ActionViewLargePRs, Label: "See large PRs"},
			{Type: ActionViewSlowPRs, Label: "Slowest PRs"},
		}
	case snap.ThroughputChangePct < fallbackThroughputDropPct:
		resp.Headline = "Merged work dropped sharply against the previous period"
		resp.Detail = fmt.Sprintf(
			"The team merged %.0f PRs in the last %d days, down %.0f%% from %.0f in the previous window.",
			snap.PRsMerged, snap.Days, -snap.ThroughputChangePct, snap.PrevPRsMerged)
		resp.Recommendation = "Check whether work is blocked in review or the team is absorbed in unmerged efforts."
		resp.Actions = []Action{
			{Type: ActionViewPRs, Label: "See recent PRs"},
		}
	case snap.AIAdoptionPct >= fallbackAIAdoptionPct:
		resp.Headline = "AI-assisted work now carries most of the output"
		resp.Detail = fmt.Sprintf(
			"%.0f%% of PRs merged in the last %d days involved AI assistance, with cycle time at %.1f hours and a %.1f%% revert rate.",
			snap.AIAdoptionPct, snap.Days, snap.CycleTimeHours, snap.RevertRatePct)
		resp.Recommendation = "Share what is working so the rest of the team can pick up the same habits."
		resp.Actions = []Action{
			{Type: ActionViewAIPRs, Label: "See AI-assisted PRs"},
		}
	default:
		resp.Headline = "Steady delivery with no standout risks this period"
		resp.Detail = fmt.Sprintf(
			"%.0f PRs merged over the last %d days with cycle time at %.1f hours and CI passing %.0f%% of runs.",
			snap.PRsMerged, snap.Days, snap.CycleTimeHours, snap.CIPassRatePct)
		resp.Recommendation = "No action needed; keep an eye on cycle time as throughput grows."
		resp.Actions = []Action{
			{Type: ActionViewPRs, Label: "See recent PRs"},
		}
	}

	return resp
}
