package rules

import (
	"strings"
	"testing"

	"github.com/teampulse/teampulse/internal/benchmark"
	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/metrics"
)

// mockAgg implements metrics.Aggregator with canned data, keyed by
// metric name. Team is ignored.
type mockAgg struct {
	series map[string][]metrics.WeeklyPoint
	totals map[string]float64
	pairs  []metrics.PairStat
}

func (m *mockAgg) WeeklySeries(_, metric, _ string, _ int) ([]metrics.WeeklyPoint, error) {
	return m.series[metric], nil
}

func (m *mockAgg) Total(_, metric string) (float64, bool, error) {
	v, ok := m.totals[metric]
	return v, ok, nil
}

func (m *mockAgg) ReviewerPairs(string) ([]metrics.PairStat, error) {
	return m.pairs, nil
}

func (m *mockAgg) Snapshot(team, date string, days int) (*metrics.Snapshot, error) {
	return &metrics.Snapshot{Team: team, Date: date, Days: days}, nil
}

// mockAnchors returns the same anchor for every metric, or nil.
type mockAnchors struct {
	anchor *benchmark.Anchor
}

func (m *mockAnchors) Anchor(string, string) (*benchmark.Anchor, error) {
	return m.anchor, nil
}

func testContext(agg *mockAgg) *Context {
	return &Context{
		Team:           "platform",
		Date:           "2026-08-30",
		LookbackWeeks:  4,
		TeamSizeBucket: "small",
		Agg:            agg,
		Anchors:        &mockAnchors{},
	}
}

func weekly(values ...float64) []metrics.WeeklyPoint {
	starts := []string{"2026-08-03", "2026-08-10", "2026-08-17", "2026-08-24"}
	points := make([]metrics.WeeklyPoint, 0, len(values))
	for i, v := range values {
		points = append(points, metrics.WeeklyPoint{WeekStart: starts[i], Value: v})
	}
	return points
}

// --- trend rules ---

func TestCycleTimeTrendImproved(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(60, 55, 45, 40),
	}}

	got, err := evaluateCycleTimeTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Priority != insight.PriorityMedium {
		t.Errorf("expected priority medium, got %q", got[0].Priority)
	}
	if !strings.Contains(got[0].Title, "improved") {
		t.Errorf("expected title to contain 'improved', got %q", got[0].Title)
	}
}

func TestCycleTimeTrendRegressed(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(30, 35, 40, 45),
	}}

	got, err := evaluateCycleTimeTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Priority != insight.PriorityHigh {
		t.Errorf("expected priority high, got %q", got[0].Priority)
	}
	if !strings.Contains(got[0].Title, "regressed") {
		t.Errorf("expected title to contain 'regressed', got %q", got[0].Title)
	}
}

func TestCycleTimeTrendBelowThreshold(t *testing.T) {
	// 40 -> 36 is a 10% change, under the 20% bar.
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(40, 39, 38, 36),
	}}

	got, err := evaluateCycleTimeTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights, got %d", len(got))
	}
}

func TestCycleTimeTrendInsufficientData(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(40),
	}}

	got, err := evaluateCycleTimeTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights with one sample, got %d", len(got))
	}
}

func TestCycleTimeTrendZeroBaseline(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(0, 10, 20, 40),
	}}

	got, err := evaluateCycleTimeTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights with zero baseline, got %d", len(got))
	}
}

func TestAIAdoptionTrendFires(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricAIAdoptionPct: weekly(20, 25, 30, 35),
	}}

	got, err := evaluateAIAdoptionTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Priority != insight.PriorityMedium {
		t.Errorf("expected priority medium, got %q", got[0].Priority)
	}
	if got[0].Category != insight.CategoryTrend {
		t.Errorf("expected category trend, got %q", got[0].Category)
	}
}

func TestAIAdoptionTrendExactThresholdDoesNotFire(t *testing.T) {
	// Exactly 10 points is not strictly greater than the threshold.
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricAIAdoptionPct: weekly(20, 24, 27, 30),
	}}

	got, err := evaluateAIAdoptionTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights at exactly 10 points, got %d", len(got))
	}
}

func TestAIAdoptionTrendDownward(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricAIAdoptionPct: weekly(50, 45, 40, 35),
	}}

	got, err := evaluateAIAdoptionTrend(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Priority != insight.PriorityMedium {
		t.Errorf("downward trend should still be medium, got %q", got[0].Priority)
	}
	if !strings.Contains(got[0].Title, "down") {
		t.Errorf("expected title to mention 'down', got %q", got[0].Title)
	}
}

// --- spike rules ---

func hotfixSeries(previous []float64, current float64) []metrics.WeeklyPoint {
	starts := []string{"2026-07-27", "2026-08-03", "2026-08-10", "2026-08-17"}
	points := make([]metrics.WeeklyPoint, 0, len(previous)+1)
	for i, v := range previous {
		points = append(points, metrics.WeeklyPoint{WeekStart: starts[i], Value: v})
	}
	// 2026-08-24 falls inside the 7 days ending 2026-08-30.
	points = append(points, metrics.WeeklyPoint{WeekStart: "2026-08-24", Value: current})
	return points
}

func TestHotfixSpikeFires(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricHotfixCount: hotfixSeries([]float64{1, 2, 1, 2}, 5),
	}}

	got, err := evaluateHotfixSpike(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight (5 >= 3*1.5), got %d", len(got))
	}
	if got[0].Priority != insight.PriorityHigh {
		t.Errorf("expected priority high, got %q", got[0].Priority)
	}
}

func TestHotfixSpikeBelowMultiplier(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricHotfixCount: hotfixSeries([]float64{2, 2, 2, 2}, 4),
	}}

	got, err := evaluateHotfixSpike(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights at 2x average, got %d", len(got))
	}
}

func TestHotfixSpikeZeroBaseline(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricHotfixCount: hotfixSeries([]float64{0, 0, 0, 0}, 5),
	}}

	got, err := evaluateHotfixSpike(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights with zero baseline, got %d", len(got))
	}
}

func TestRevertSpikeFires(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricRevertCount: {{WeekStart: "2026-08-24", Value: 1}},
	}}

	got, err := evaluateRevertSpike(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight for any revert, got %d", len(got))
	}
	if !strings.Contains(got[0].Title, "revert") {
		t.Errorf("expected title to mention reverts, got %q", got[0].Title)
	}
}

func TestRevertSpikeQuietWeek(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricRevertCount: {
			{WeekStart: "2026-08-10", Value: 3}, // old week, not current
			{WeekStart: "2026-08-24", Value: 0},
		},
	}}

	got, err := evaluateRevertSpike(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights without current-week reverts, got %d", len(got))
	}
}

func TestCIFailureRateFires(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCIPassRate: weekly(70, 80),
		metrics.MetricCIRunCount: weekly(10, 10),
	}}

	got, err := evaluateCIFailureRate(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight at 25%% failure, got %d", len(got))
	}
	if got[0].Priority != insight.PriorityMedium {
		t.Errorf("expected priority medium, got %q", got[0].Priority)
	}
}

func TestCIFailureRateBelowThreshold(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCIPassRate: weekly(85, 85),
		metrics.MetricCIRunCount: weekly(10, 10),
	}}

	got, err := evaluateCIFailureRate(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights at 15%% failure, got %d", len(got))
	}
}

func TestCIFailureRateNoRuns(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCIPassRate: weekly(50, 50),
	}}

	got, err := evaluateCIFailureRate(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights without completed runs, got %d", len(got))
	}
}

// --- reviewer rule ---

func TestRedundantReviewersCap(t *testing.T) {
	agg := &mockAgg{pairs: []metrics.PairStat{
		{ReviewerA: "a", ReviewerB: "b", Agreements: 20, Total: 20},
		{ReviewerA: "c", ReviewerB: "d", Agreements: 15, Total: 15},
		{ReviewerA: "e", ReviewerB: "f", Agreements: 12, Total: 12},
		{ReviewerA: "g", ReviewerB: "h", Agreements: 11, Total: 11},
		{ReviewerA: "i", ReviewerB: "j", Agreements: 10, Total: 10},
	}}

	got, err := evaluateRedundantReviewers(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected cap of 3 insights, got %d", len(got))
	}
	// All at 100%: ties keep storage order.
	if !strings.Contains(got[0].Title, "a and b") {
		t.Errorf("expected first pair first, got %q", got[0].Title)
	}
	for _, c := range got {
		if c.Category != insight.CategoryAction || c.Priority != insight.PriorityLow {
			t.Errorf("expected low-priority action insight, got %+v", c)
		}
	}
}

func TestRedundantReviewersFilters(t *testing.T) {
	agg := &mockAgg{pairs: []metrics.PairStat{
		{ReviewerA: "a", ReviewerB: "b", Agreements: 9, Total: 9},    // too few
		{ReviewerA: "c", ReviewerB: "d", Agreements: 18, Total: 20},  // 90%
		{ReviewerA: "e", ReviewerB: "f", Agreements: 95, Total: 100}, // exactly 95%
	}}

	got, err := evaluateRedundantReviewers(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if !strings.Contains(got[0].Title, "e and f") {
		t.Errorf("expected the 95%% pair, got %q", got[0].Title)
	}
}

// --- hygiene rule ---

func TestUnlinkedPRsFires(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricUnlinkedPRCount: weekly(2, 1, 1, 1),
	}}

	got, err := evaluateUnlinkedPRs(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight at 5 unlinked PRs, got %d", len(got))
	}
}

func TestUnlinkedPRsBelowThreshold(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricUnlinkedPRCount: weekly(1, 1, 1, 1),
	}}

	got, err := evaluateUnlinkedPRs(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights at 4 unlinked PRs, got %d", len(got))
	}
}

// --- benchmark rule ---

func benchmarkContext(agg *mockAgg, anchor *benchmark.Anchor) *Context {
	ctx := testContext(agg)
	ctx.Anchors = &mockAnchors{anchor: anchor}
	return ctx
}

func TestBenchmarkRuleElite(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(6, 6, 6, 6),
	}}
	anchor := &benchmark.Anchor{P25: 12, P50: 24, P75: 48, P90: 72}

	got, err := evaluateCycleTimeBenchmark(benchmarkContext(agg, anchor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Priority != insight.PriorityLow {
		t.Errorf("expected priority low for elite standing, got %q", got[0].Priority)
	}
}

func TestBenchmarkRuleLagging(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(100, 100, 100, 100),
	}}
	anchor := &benchmark.Anchor{P25: 12, P50: 24, P75: 48, P90: 72}

	got, err := evaluateCycleTimeBenchmark(benchmarkContext(agg, anchor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Priority != insight.PriorityHigh {
		t.Errorf("expected priority high for lagging standing, got %q", got[0].Priority)
	}
}

func TestBenchmarkRuleAverageStandingIsQuiet(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(30, 30, 30, 30),
	}}
	anchor := &benchmark.Anchor{P25: 12, P50: 24, P75: 48, P90: 72}

	got, err := evaluateCycleTimeBenchmark(benchmarkContext(agg, anchor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights for average standing, got %d", len(got))
	}
}

func TestBenchmarkRuleNoAnchor(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{
		metrics.MetricCycleTimeHours: weekly(6, 6, 6, 6),
	}}

	got, err := evaluateCycleTimeBenchmark(benchmarkContext(agg, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights without an anchor, got %d", len(got))
	}
}

func TestBenchmarkRuleNoSamples(t *testing.T) {
	agg := &mockAgg{series: map[string][]metrics.WeeklyPoint{}}
	anchor := &benchmark.Anchor{P25: 12, P50: 24, P75: 48, P90: 72}

	got, err := evaluateCycleTimeBenchmark(benchmarkContext(agg, anchor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights without team data, got %d", len(got))
	}
}

// --- milestone rules ---

func TestAIAdoptionMilestone(t *testing.T) {
	agg := &mockAgg{totals: map[string]float64{metrics.TotalAIAdoptionPct: 52}}

	got, err := evaluateAIAdoptionMilestone(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if !strings.Contains(got[0].Title, "50%") {
		t.Errorf("expected the 50%% milestone, got %q", got[0].Title)
	}
}

func TestAIAdoptionMilestoneOutsideBand(t *testing.T) {
	agg := &mockAgg{totals: map[string]float64{metrics.TotalAIAdoptionPct: 47}}

	got, err := evaluateAIAdoptionMilestone(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights at 47%%, got %d", len(got))
	}
}

func TestPRCountMilestone(t *testing.T) {
	agg := &mockAgg{totals: map[string]float64{metrics.TotalPRCount: 104}}

	got, err := evaluatePRCountMilestone(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if !strings.Contains(got[0].Title, "100") {
		t.Errorf("expected the 100 milestone, got %q", got[0].Title)
	}
}

func TestPRCountMilestoneFirstMatchOnly(t *testing.T) {
	// 55 sits in [50,60); only that band fires.
	agg := &mockAgg{totals: map[string]float64{metrics.TotalPRCount: 55}}

	got, err := evaluatePRCountMilestone(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 insight, got %d", len(got))
	}
}

func TestMilestoneNoTotals(t *testing.T) {
	agg := &mockAgg{}

	got, err := evaluateAIAdoptionMilestone(testContext(agg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no insights without totals, got %d", len(got))
	}
}

// --- engine ---

func TestEngineIsolatesFailingRules(t *testing.T) {
	engine := &Engine{rules: []Rule{
		{Name: "panics", Evaluate: func(*Context) ([]insight.Candidate, error) {
			panic("boom")
		}},
		{Name: "errors", Evaluate: func(*Context) ([]insight.Candidate, error) {
			return nil, errTest
		}},
		{Name: "works", Evaluate: func(*Context) ([]insight.Candidate, error) {
			return []insight.Candidate{{Title: "ok"}}, nil
		}},
	}}

	got := engine.Run(testContext(&mockAgg{}))
	if len(got) != 1 || got[0].Title != "ok" {
		t.Errorf("expected the healthy rule's result, got %+v", got)
	}
}

func TestEngineEmptyData(t *testing.T) {
	engine := NewEngine()
	got := engine.Run(testContext(&mockAgg{}))
	if len(got) != 0 {
		t.Errorf("expected no insights from empty data, got %d", len(got))
	}
}

var errTest = &ruleError{"synthetic failure"}

type ruleError struct{ msg string }

func (e *ruleError) Error() string { return e.msg }
