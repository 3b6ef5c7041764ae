package generate

import "fmt"

// Action type enum values.
const (
	ActionViewPRs      = "view_prs"
	ActionViewAIPRs    = "view_ai_prs"
	ActionViewReverts  = "view_reverts"
	ActionViewLargePRs = "view_large_prs"
	ActionViewSlowPRs  = "view_slow_prs"
	ActionViewCIRuns   = "view_ci_runs"
)

// baseListPath is the activity listing every action links into.
const baseListPath = "/activity/prs"

// actionQueryParams maps each action type to its extra filter. The
// shared days parameter is always appended.
var actionQueryParams = map[string]string{
	ActionViewPRs:      "",
	ActionViewAIPRs:    "ai=yes",
	ActionViewReverts:  "status=reverted",
	ActionViewLargePRs: "size=large",
	ActionViewSlowPRs:  "sort=cycle_time",
	ActionViewCIRuns:   "tab=ci",
}

// ResolveActionURL returns the listing URL for an action type. An
// unrecognized type degrades to the base listing with only the shared
// days parameter.
func ResolveActionURL(actionType string, days int) string {
	extra, ok := actionQueryParams[actionType]
	if !ok {
		extra = ""
	}
	url := fmt.Sprintf("%s?days=%d", baseListPath, days)
	if extra != "" {
		url += "&" + extra
	}
	return url
}
