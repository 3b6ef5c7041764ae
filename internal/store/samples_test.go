package store

import "testing"

func TestMetricSampleUpsert(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertMetricSample("platform", "cycle_time_hours", "2026-08-24", 40); err != nil {
		t.Fatalf("UpsertMetricSample: %v", err)
	}
	// Same week again: latest value wins, no duplicate row.
	if err := db.UpsertMetricSample("platform", "cycle_time_hours", "2026-08-24", 42); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	db.UpsertMetricSample("platform", "cycle_time_hours", "2026-08-17", 50)
	db.UpsertMetricSample("platform", "hotfix_count", "2026-08-24", 2)

	samples, err := db.GetWeeklySamples("platform", "cycle_time_hours", "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("GetWeeklySamples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].WeekStart != "2026-08-17" {
		t.Errorf("expected oldest first, got %q", samples[0].WeekStart)
	}
	if samples[1].Value != 42 {
		t.Errorf("expected refreshed value 42, got %g", samples[1].Value)
	}
}

func TestMetricTotals(t *testing.T) {
	db := openTestDB(t)

	if _, ok, _ := db.GetMetricTotal("platform", "pr_count"); ok {
		t.Error("expected no total before insert")
	}

	db.UpsertMetricTotal("platform", "pr_count", 103)
	db.UpsertMetricTotal("platform", "pr_count", 104)

	value, ok, err := db.GetMetricTotal("platform", "pr_count")
	if err != nil {
		t.Fatalf("GetMetricTotal: %v", err)
	}
	if !ok || value != 104 {
		t.Errorf("expected total 104, got %g (ok=%v)", value, ok)
	}
}

func TestReviewerPairs(t *testing.T) {
	db := openTestDB(t)

	db.UpsertReviewerPair("platform", "alice", "bob", 19, 20)
	db.UpsertReviewerPair("platform", "carol", "dave", 5, 12)
	db.UpsertReviewerPair("platform", "alice", "bob", 20, 21)

	pairs, err := db.GetReviewerPairs("platform")
	if err != nil {
		t.Fatalf("GetReviewerPairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].ReviewerA != "alice" || pairs[0].Agreements != 20 {
		t.Errorf("expected refreshed alice/bob pair first, got %+v", pairs[0])
	}
}

func TestBenchmarkAnchors(t *testing.T) {
	db := openTestDB(t)

	err := db.UpsertBenchmarkAnchor(BenchmarkAnchor{
		Metric: "cycle_time_hours", TeamSizeBucket: "small",
		P25: 12, P50: 24, P75: 48, P90: 72,
	})
	if err != nil {
		t.Fatalf("UpsertBenchmarkAnchor: %v", err)
	}

	a, err := db.GetBenchmarkAnchor("cycle_time_hours", "small")
	if err != nil {
		t.Fatalf("GetBenchmarkAnchor: %v", err)
	}
	if a == nil || a.P50 != 24 {
		t.Errorf("expected stored anchor, got %+v", a)
	}

	missing, err := db.GetBenchmarkAnchor("cycle_time_hours", "large")
	if err != nil {
		t.Fatalf("GetBenchmarkAnchor missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing anchor")
	}
}

func TestBenchmarkAnchorRejectsNonIncreasing(t *testing.T) {
	db := openTestDB(t)

	err := db.UpsertBenchmarkAnchor(BenchmarkAnchor{
		Metric: "cycle_time_hours", TeamSizeBucket: "small",
		P25: 24, P50: 24, P75: 48, P90: 72,
	})
	if err == nil {
		t.Error("expected error for non-increasing anchors")
	}
}

func TestReplaceBenchmarkAnchorsReplacesExisting(t *testing.T) {
	db := openTestDB(t)

	db.UpsertBenchmarkAnchor(BenchmarkAnchor{
		Metric: "cycle_time_hours", TeamSizeBucket: "small",
		P25: 1, P50: 2, P75: 3, P90: 4,
	})

	err := db.ReplaceBenchmarkAnchors([]BenchmarkAnchor{
		{Metric: "cycle_time_hours", TeamSizeBucket: "medium", P25: 10, P50: 20, P75: 40, P90: 60},
		{Metric: "review_latency_hours", TeamSizeBucket: "medium", P25: 2, P50: 6, P75: 12, P90: 24},
	})
	if err != nil {
		t.Fatalf("ReplaceBenchmarkAnchors: %v", err)
	}

	old, _ := db.GetBenchmarkAnchor("cycle_time_hours", "small")
	if old != nil {
		t.Error("expected old anchors to be replaced")
	}
	loaded, _ := db.GetBenchmarkAnchor("review_latency_hours", "medium")
	if loaded == nil || loaded.P90 != 24 {
		t.Errorf("expected new anchor, got %+v", loaded)
	}
}
