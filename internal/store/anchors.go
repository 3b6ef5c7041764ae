package store

import (
	"database/sql"
	"fmt"
)

// UpsertBenchmarkAnchor inserts or refreshes anchor points for one metric
// and team-size bucket. Anchors must be strictly increasing (lower is
// better, so p25 is the elite end).
func (db *DB) UpsertBenchmarkAnchor(a BenchmarkAnchor) error {
	if !(a.P25 < a.P50 && a.P50 < a.P75 && a.P75 < a.P90) {
		return fmt.Errorf("anchor %s/%s: percentile values must be strictly increasing (p25=%g p50=%g p75=%g p90=%g)",
			a.Metric, a.TeamSizeBucket, a.P25, a.P50, a.P75, a.P90)
	}

	_, err := db.conn.Exec(
		`INSERT INTO benchmark_anchors (metric, team_size_bucket, p25, p50, p75, p90)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(metric, team_size_bucket) DO UPDATE SET
			p25 = excluded.p25, p50 = excluded.p50, p75 = excluded.p75, p90 = excluded.p90`,
		a.Metric, a.TeamSizeBucket, a.P25, a.P50, a.P75, a.P90,
	)
	return err
}

// GetBenchmarkAnchor returns the anchor for a metric and bucket, or nil if
// none is stored.
func (db *DB) GetBenchmarkAnchor(metric, teamSizeBucket string) (*BenchmarkAnchor, error) {
	var a BenchmarkAnchor
	err := db.conn.QueryRow(
		`SELECT metric, team_size_bucket, p25, p50, p75, p90
		FROM benchmark_anchors WHERE metric = ? AND team_size_bucket = ?`,
		metric, teamSizeBucket,
	).Scan(&a.Metric, &a.TeamSizeBucket, &a.P25, &a.P50, &a.P75, &a.P90)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ReplaceBenchmarkAnchors atomically replaces the entire anchor set.
func (db *DB) ReplaceBenchmarkAnchors(anchors []BenchmarkAnchor) error {
	for _, a := range anchors {
		if !(a.P25 < a.P50 && a.P50 < a.P75 && a.P75 < a.P90) {
			return fmt.Errorf("anchor %s/%s: percentile values must be strictly increasing",
				a.Metric, a.TeamSizeBucket)
		}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM benchmark_anchors"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing anchors: %w", err)
	}

	for _, a := range anchors {
		if _, err := tx.Exec(
			`INSERT INTO benchmark_anchors (metric, team_size_bucket, p25, p50, p75, p90)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.Metric, a.TeamSizeBucket, a.P25, a.P50, a.P75, a.P90,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting anchor %s/%s: %w", a.Metric, a.TeamSizeBucket, err)
		}
	}

	return tx.Commit()
}
