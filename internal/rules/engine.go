// Package rules evaluates a fixed registry of independent insight rules
// for a team and target date. Rules pull what they need from the metrics
// aggregator and emit zero or more insight candidates; a rule that cannot
// compute emits nothing rather than failing.
package rules

import (
	"fmt"
	"log"

	"github.com/teampulse/teampulse/internal/benchmark"
	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

// AnchorSource supplies benchmark anchor points for a metric and
// team-size bucket. A nil anchor means none is stored.
type AnchorSource interface {
	Anchor(metric, teamSizeBucket string) (*benchmark.Anchor, error)
}

// Context carries everything a rule evaluation needs. Team and date are
// always explicit; rules never read ambient state.
type Context struct {
	Team           string
	Date           string
	LookbackWeeks  int
	TeamSizeBucket string
	Agg            metrics.Aggregator
	Anchors        AnchorSource
}

// Rule is one named evaluator in the registry.
type Rule struct {
	Name     string
	Evaluate func(*Context) ([]insight.Candidate, error)
}

// Registry returns the fixed ordered list of all built-in rules.
func Registry() []Rule {
	return []Rule{
		{Name: "ai_adoption_trend", Evaluate: evaluateAIAdoptionTrend},
		{Name: "cycle_time_trend", Evaluate: evaluateCycleTimeTrend},
		{Name: "hotfix_spike", Evaluate: evaluateHotfixSpike},
		{Name: "revert_spike", Evaluate: evaluateRevertSpike},
		{Name: "ci_failure_rate", Evaluate: evaluateCIFailureRate},
		{Name: "redundant_reviewers", Evaluate: evaluateRedundantReviewers},
		{Name: "unlinked_prs", Evaluate: evaluateUnlinkedPRs},
		{Name: "cycle_time_benchmark", Evaluate: evaluateCycleTimeBenchmark},
		{Name: "ai_adoption_milestone", Evaluate: evaluateAIAdoptionMilestone},
		{Name: "pr_count_milestone", Evaluate: evaluatePRCountMilestone},
	}
}

// Engine runs the rule registry and concatenates the results.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{rules: Registry()}
}

// Run evaluates every rule for the context and returns all candidates.
// A failing or panicking rule is logged and skipped; it never aborts the
// rest of the batch.
func (e *Engine) Run(ctx *Context) []insight.Candidate {
	var all []insight.Candidate
	for _, rule := range e.rules {
		results, err := runRule(rule, ctx)
		if err != nil {
			log.Printf("rule %s failed for team %s on %s: %v", rule.Name, ctx.Team, ctx.Date, err)
			continue
		}
		all = append(all, results...)
	}
	return all
}

// runRule evaluates one rule, converting a panic into an error so one
// bad rule cannot take down the sweep.
func runRule(rule Rule, ctx *Context) (results []insight.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return rule.Evaluate(ctx)
}
