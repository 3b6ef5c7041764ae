package metrics

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/teampulse/teampulse/internal/store"
)

// SQLAggregator reads pre-aggregated metric tables from the SQLite store.
type SQLAggregator struct {
	db *store.DB
}

// NewSQLAggregator creates an aggregator backed by the given store.
func NewSQLAggregator(db *store.DB) *SQLAggregator {
	return &SQLAggregator{db: db}
}

// WeeklySeries returns weekly samples for the window of the given number
// of weeks ending at date, oldest first.
func (a *SQLAggregator) WeeklySeries(team, metric, date string, weeks int) ([]WeeklyPoint, error) {
	end, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	start := end.AddDate(0, 0, -7*weeks+1)

	samples, err := a.db.GetWeeklySamples(team, metric,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	points := make([]WeeklyPoint, 0, len(samples))
	for _, s := range samples {
		points = append(points, WeeklyPoint{WeekStart: s.WeekStart, Value: s.Value})
	}
	return points, nil
}

// Total returns an all-time scalar for the team.
func (a *SQLAggregator) Total(team, metric string) (float64, bool, error) {
	return a.db.GetMetricTotal(team, metric)
}

// ReviewerPairs returns all-time reviewer pair agreement stats.
func (a *SQLAggregator) ReviewerPairs(team string) ([]PairStat, error) {
	pairs, err := a.db.GetReviewerPairs(team)
	if err != nil {
		return nil, err
	}

	stats := make([]PairStat, 0, len(pairs))
	for _, p := range pairs {
		stats = append(stats, PairStat{
			ReviewerA:  p.ReviewerA,
			ReviewerB:  p.ReviewerB,
			Agreements: p.Agreements,
			Total:      p.Total,
		})
	}
	return stats, nil
}

// Snapshot builds the cross-domain view over a trailing window of days
// ending at date, with the preceding window of the same length for
// comparison. Weekly samples are the underlying granularity, so days is
// rounded up to whole weeks.
func (a *SQLAggregator) Snapshot(team, date string, days int) (*Snapshot, error) {
	weeks := (days + 6) / 7
	if weeks < 1 {
		weeks = 1
	}

	end, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	prevDate := end.AddDate(0, 0, -7*weeks).Format("2006-01-02")

	snap := &Snapshot{Team: team, Date: date, Days: weeks * 7}

	cur := func(metric string) ([]float64, error) {
		return a.windowValues(team, metric, date, weeks)
	}
	prev := func(metric string) ([]float64, error) {
		return a.windowValues(team, metric, prevDate, weeks)
	}

	throughput, err := cur(MetricPRThroughput)
	if err != nil {
		return nil, err
	}
	prevThroughput, err := prev(MetricPRThroughput)
	if err != nil {
		return nil, err
	}
	snap.PRsMerged = sum(throughput)
	snap.PrevPRsMerged = sum(prevThroughput)
	snap.ThroughputChangePct = changePct(snap.PrevPRsMerged, snap.PRsMerged)

	cycle, err := cur(MetricCycleTimeHours)
	if err != nil {
		return nil, err
	}
	prevCycle, err := prev(MetricCycleTimeHours)
	if err != nil {
		return nil, err
	}
	snap.CycleTimeHours = mean(cycle)
	snap.PrevCycleTimeHours = mean(prevCycle)
	snap.CycleTimeChangePct = changePct(snap.PrevCycleTimeHours, snap.CycleTimeHours)

	adoption, err := cur(MetricAIAdoptionPct)
	if err != nil {
		return nil, err
	}
	prevAdoption, err := prev(MetricAIAdoptionPct)
	if err != nil {
		return nil, err
	}
	snap.AIAdoptionPct = mean(adoption)
	snap.PrevAIAdoptionPct = mean(prevAdoption)

	reverts, err := cur(MetricRevertCount)
	if err != nil {
		return nil, err
	}
	if snap.PRsMerged > 0 {
		snap.RevertRatePct = sum(reverts) / snap.PRsMerged * 100
	}

	passRates, err := cur(MetricCIPassRate)
	if err != nil {
		return nil, err
	}
	snap.CIPassRatePct = mean(passRates)

	largePRs, err := cur(MetricLargePRPct)
	if err != nil {
		return nil, err
	}
	snap.LargePRPct = mean(largePRs)

	unlinked, err := cur(MetricUnlinkedPRCount)
	if err != nil {
		return nil, err
	}
	snap.UnlinkedPRs = sum(unlinked)

	contributors, err := cur(MetricActiveContributors)
	if err != nil {
		return nil, err
	}
	snap.Contributors = mean(contributors)

	seats, err := cur(MetricAISeatUtilization)
	if err != nil {
		return nil, err
	}
	if len(seats) > 0 {
		v := mean(seats)
		snap.AISeatUsagePct = &v
	}

	return snap, nil
}

func (a *SQLAggregator) windowValues(team, metric, date string, weeks int) ([]float64, error) {
	points, err := a.WeeklySeries(team, metric, date, weeks)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(points))
	for _, p := range points {
		values = append(values, p.Value)
	}
	return values, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// changePct returns the percent change from prev to cur, or 0 when prev
// is 0 (no baseline to compare against).
func changePct(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
