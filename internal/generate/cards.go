package generate

import (
	"fmt"

	"github.com/teampulse/teampulse/internal/metrics"
)

// Card trend classifications.
const (
	TrendPositive = "positive"
	TrendNeutral  = "neutral"
	TrendWarning  = "warning"
	TrendNegative = "negative"
)

// BuildCards computes the four summary cards deterministically from the
// snapshot. The model never sees or produces these.
func BuildCards(snap *metrics.Snapshot) []MetricCard {
	return []MetricCard{
		throughputCard(snap),
		cycleTimeCard(snap),
		aiAdoptionCard(snap),
		qualityCard(snap),
	}
}

func throughputCard(snap *metrics.Snapshot) MetricCard {
	trend := TrendNeutral
	if snap.ThroughputChangePct > 10 {
		trend = TrendPositive
	} else if snap.ThroughputChangePct < -10 {
		trend = TrendNegative
	}
	return MetricCard{
		Title:  "Throughput",
		Value:  fmt.Sprintf("%.0f PRs", snap.PRsMerged),
		Change: formatChange(snap.ThroughputChangePct),
		Trend:  trend,
	}
}

func cycleTimeCard(snap *metrics.Snapshot) MetricCard {
	trend := TrendNeutral
	switch {
	case snap.CycleTimeChangePct < -10:
		trend = TrendPositive
	case snap.CycleTimeChangePct > 20:
		trend = TrendNegative
	case snap.CycleTimeChangePct > 10:
		trend = TrendWarning
	}
	return MetricCard{
		Title:  "Cycle time",
		Value:  fmt.Sprintf("%.1fh", snap.CycleTimeHours),
		Change: formatChange(snap.CycleTimeChangePct),
		Trend:  trend,
	}
}

func aiAdoptionCard(snap *metrics.Snapshot) MetricCard {
	delta := snap.AIAdoptionPct - snap.PrevAIAdoptionPct
	trend := TrendNeutral
	if delta > 5 {
		trend = TrendPositive
	} else if delta < -5 {
		trend = TrendWarning
	}
	return MetricCard{
		Title:  "AI adoption",
		Value:  fmt.Sprintf("%.0f%%", snap.AIAdoptionPct),
		Change: fmt.Sprintf("%+.0f pts", delta),
		Trend:  trend,
	}
}

func qualityCard(snap *metrics.Snapshot) MetricCard {
	trend := TrendNeutral
	switch {
	case snap.RevertRatePct > 8:
		trend = TrendNegative
	case snap.RevertRatePct > 4:
		trend = TrendWarning
	case snap.CIPassRatePct >= 90:
		trend = TrendPositive
	}
	return MetricCard{
		Title:  "Quality",
		Value:  fmt.Sprintf("%.1f%% reverts", snap.RevertRatePct),
		Change: fmt.Sprintf("CI pass %.0f%%", snap.CIPassRatePct),
		Trend:  trend,
	}
}

func formatChange(pct float64) string {
	return fmt.Sprintf("%+.0f%%", pct)
}
