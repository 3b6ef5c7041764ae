package generate

import (
	"fmt"
	"strings"

	"github.com/teampulse/teampulse/internal/metrics"
)

const insightPrompt = `You are writing a short engineering insight for a team lead reviewing the last %d days of activity.

Team metrics for the window (previous window of the same length in parentheses):
%s

Write one finding worth the lead's attention. Be concrete and avoid filler. The headline must be 6-12 words and contain no raw numbers; put numbers in the detail.

Allowed action types: view_prs, view_ai_prs, view_reverts, view_large_prs, view_slow_prs, view_ci_runs.

Respond with ONLY this JSON, no other fields:
{
    "headline": "6-12 word finding, no numbers",
    "detail": "2-4 sentences or bullet lines with the supporting numbers",
    "recommendation": "One actionable sentence",
    "actions": [
        {"type": "view_ai_prs", "label": "Button label"}
    ]
}

actions: 1 to 3 items, each with a type from the allowed list.`

// renderPrompt builds the deterministic prompt from a snapshot.
func renderPrompt(snap *metrics.Snapshot) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf("- "+format, args...))
	}

	add("PRs merged: %.0f (%.0f), %+.0f%%", snap.PRsMerged, snap.PrevPRsMerged, snap.ThroughputChangePct)
	add("Cycle time: %.1fh (%.1fh), %+.0f%%", snap.CycleTimeHours, snap.PrevCycleTimeHours, snap.CycleTimeChangePct)
	add("AI-assisted PRs: %.0f%% (%.0f%%)", snap.AIAdoptionPct, snap.PrevAIAdoptionPct)
	add("Revert rate: %.1f%%", snap.RevertRatePct)
	add("CI pass rate: %.0f%%", snap.CIPassRatePct)
	add("Large PRs (>500 lines): %.0f%%", snap.LargePRPct)
	add("PRs without linked issues: %.0f", snap.UnlinkedPRs)
	add("Active contributors: %.0f", snap.Contributors)
	if snap.AISeatUsagePct != nil {
		add("AI assistant seat utilization: %.0f%%", *snap.AISeatUsagePct)
	}

	return fmt.Sprintf(insightPrompt, snap.Days, strings.Join(lines, "\n"))
}
