package store

import "database/sql"

// UpsertMetricSample records one weekly value for a team metric. Sync jobs
// call this repeatedly; the latest value for a week wins.
func (db *DB) UpsertMetricSample(team, metric, weekStart string, value float64) error {
	_, err := db.conn.Exec(
		`INSERT INTO metric_samples (team, metric, week_start, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(team, metric, week_start) DO UPDATE SET value = excluded.value`,
		team, metric, weekStart, value,
	)
	return err
}

// GetWeeklySamples returns weekly values for a team metric with week_start
// in [startWeek, endWeek], ordered oldest first.
func (db *DB) GetWeeklySamples(team, metric, startWeek, endWeek string) ([]MetricSample, error) {
	rows, err := db.conn.Query(
		`SELECT team, metric, week_start, value FROM metric_samples
		WHERE team = ? AND metric = ? AND week_start >= ? AND week_start <= ?
		ORDER BY week_start`,
		team, metric, startWeek, endWeek,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []MetricSample
	for rows.Next() {
		var s MetricSample
		if err := rows.Scan(&s.Team, &s.Metric, &s.WeekStart, &s.Value); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// UpsertMetricTotal records an all-time scalar for a team metric.
func (db *DB) UpsertMetricTotal(team, metric string, value float64) error {
	_, err := db.conn.Exec(
		`INSERT INTO metric_totals (team, metric, value) VALUES (?, ?, ?)
		ON CONFLICT(team, metric) DO UPDATE SET value = excluded.value`,
		team, metric, value,
	)
	return err
}

// GetMetricTotal returns the all-time scalar for a team metric.
// The second return value reports whether a value exists.
func (db *DB) GetMetricTotal(team, metric string) (float64, bool, error) {
	var value float64
	err := db.conn.QueryRow(
		"SELECT value FROM metric_totals WHERE team = ? AND metric = ?", team, metric,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return value, true, nil
}

// UpsertReviewerPair records all-time agreement stats for a reviewer pair.
func (db *DB) UpsertReviewerPair(team, reviewerA, reviewerB string, agreements, total int) error {
	_, err := db.conn.Exec(
		`INSERT INTO reviewer_pairs (team, reviewer_a, reviewer_b, agreements, total)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(team, reviewer_a, reviewer_b) DO UPDATE SET
			agreements = excluded.agreements,
			total = excluded.total`,
		team, reviewerA, reviewerB, agreements, total,
	)
	return err
}

// GetReviewerPairs returns all reviewer pair stats for a team in insertion
// order.
func (db *DB) GetReviewerPairs(team string) ([]ReviewerPair, error) {
	rows, err := db.conn.Query(
		`SELECT team, reviewer_a, reviewer_b, agreements, total
		FROM reviewer_pairs WHERE team = ? ORDER BY id`, team,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []ReviewerPair
	for rows.Next() {
		var p ReviewerPair
		if err := rows.Scan(&p.Team, &p.ReviewerA, &p.ReviewerB, &p.Agreements, &p.Total); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
