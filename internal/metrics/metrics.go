package metrics

// Metric names for weekly samples. Sync jobs write these; rules and the
// narrative generator read them.
const (
	MetricCycleTimeHours     = "cycle_time_hours"
	MetricAIAdoptionPct      = "ai_adoption_pct"
	MetricPRThroughput       = "pr_throughput"
	MetricHotfixCount        = "hotfix_count"
	MetricRevertCount        = "revert_count"
	MetricCIPassRate         = "ci_pass_rate"
	MetricCIRunCount         = "ci_run_count"
	MetricUnlinkedPRCount    = "unlinked_pr_count"
	MetricLargePRPct         = "large_pr_pct"
	MetricActiveContributors = "active_contributors"
	MetricAISeatUtilization  = "ai_seat_utilization_pct"
)

// Metric names for all-time totals.
const (
	TotalAIAdoptionPct = "ai_adoption_cumulative_pct"
	TotalPRCount       = "pr_count"
)

// WeeklyPoint is one weekly sample for a team metric.
type WeeklyPoint struct {
	WeekStart string
	Value     float64
}

// PairStat holds all-time review agreement counts for one reviewer pair.
type PairStat struct {
	ReviewerA  string
	ReviewerB  string
	Agreements int
	Total      int
}

// AgreementRate returns the fraction of reviews the pair agreed on.
func (p PairStat) AgreementRate() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Agreements) / float64(p.Total)
}

// Snapshot is a cross-domain view of a team's activity over a trailing
// window, with the previous window of the same length for comparison.
// Zero-valued fields mean no data, not zero activity; PRsMerged
// distinguishes the two.
type Snapshot struct {
	Team string
	Date string
	Days int

	PRsMerged           float64
	PrevPRsMerged       float64
	ThroughputChangePct float64

	CycleTimeHours     float64
	PrevCycleTimeHours float64
	CycleTimeChangePct float64

	AIAdoptionPct     float64
	PrevAIAdoptionPct float64

	RevertRatePct  float64
	CIPassRatePct  float64
	LargePRPct     float64
	UnlinkedPRs    float64
	Contributors   float64
	AISeatUsagePct *float64
}

// Aggregator is the read-only boundary to the pre-aggregated metrics
// store. Team is always an explicit parameter; implementations must not
// carry ambient team context.
type Aggregator interface {
	// WeeklySeries returns up to weeks weekly samples for a metric, the
	// window ending at date (inclusive), oldest first. Weeks with no
	// sample are absent from the result.
	WeeklySeries(team, metric, date string, weeks int) ([]WeeklyPoint, error)

	// Total returns an all-time scalar for the team. The bool reports
	// whether a value exists.
	Total(team, metric string) (float64, bool, error)

	// ReviewerPairs returns all-time reviewer pair agreement stats in
	// stable storage order.
	ReviewerPairs(team string) ([]PairStat, error)

	// Snapshot builds the cross-domain view over the trailing days window
	// ending at date.
	Snapshot(team, date string, days int) (*Snapshot, error)
}
