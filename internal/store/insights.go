package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// UpsertInsight inserts an insight or, when a row already exists for
// (team, date, category, comparison_period), refreshes its content in
// place. A dismissed row at the key blocks the write only while the
// incoming title matches it: dismissal suppresses that exact finding,
// not the key. A differently-titled finding at the same key is a new
// finding, so it replaces the row and clears the dismissal. Returns the
// row ID of the surviving row.
func (db *DB) UpsertInsight(team, date, category, priority, title, description string, metricType *string, metricValue map[string]any, comparisonPeriod string) (int64, error) {
	payload, err := encodeMetricValue(metricValue)
	if err != nil {
		return 0, err
	}

	_, err = db.conn.Exec(
		`INSERT INTO insights
		(team, date, category, priority, title, description, metric_type, metric_value, comparison_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(team, date, category, comparison_period) DO UPDATE SET
			priority = excluded.priority,
			title = excluded.title,
			description = excluded.description,
			metric_type = excluded.metric_type,
			metric_value = excluded.metric_value,
			updated_at = datetime('now')
		WHERE insights.is_dismissed = 0`,
		team, date, category, priority, title, description, metricType, payload, comparisonPeriod,
	)
	if err != nil {
		return 0, fmt.Errorf("upserting insight: %w", err)
	}

	var id int64
	var existingTitle string
	var isDismissed bool
	err = db.conn.QueryRow(
		`SELECT id, title, is_dismissed FROM insights
		WHERE team = ? AND date = ? AND category = ? AND comparison_period = ?`,
		team, date, category, comparisonPeriod,
	).Scan(&id, &existingTitle, &isDismissed)
	if err != nil {
		return 0, fmt.Errorf("reading upserted insight: %w", err)
	}

	if isDismissed && existingTitle != title {
		_, err = db.conn.Exec(
			`UPDATE insights SET
				priority = ?, title = ?, description = ?,
				metric_type = ?, metric_value = ?,
				is_dismissed = 0, dismissed_at = NULL,
				updated_at = datetime('now')
			WHERE id = ?`,
			priority, title, description, metricType, payload, id,
		)
		if err != nil {
			return 0, fmt.Errorf("replacing dismissed insight: %w", err)
		}
	}
	return id, nil
}

// GetInsight returns a single insight by ID, or nil if not found.
func (db *DB) GetInsight(id int64) (*Insight, error) {
	row := db.conn.QueryRow(insightColumns+" FROM insights WHERE id = ?", id)
	in, err := scanInsight(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// ListNonDismissed returns non-dismissed insights for a team, ordered by
// date descending, then priority (high first), then category.
func (db *DB) ListNonDismissed(team string, limit int) ([]Insight, error) {
	query := insightColumns + ` FROM insights
		WHERE team = ? AND is_dismissed = 0
		ORDER BY date DESC,
			CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END,
			category`
	args := []any{team}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsights(rows)
}

// ListForDate returns all insights (dismissed included) for a team and date.
func (db *DB) ListForDate(team, date string) ([]Insight, error) {
	rows, err := db.conn.Query(
		insightColumns+" FROM insights WHERE team = ? AND date = ? ORDER BY id", team, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsights(rows)
}

// Dismiss marks an insight as dismissed and stamps the time.
// Returns false if no row with that ID exists.
func (db *DB) Dismiss(id int64) (bool, error) {
	result, err := db.conn.Exec(
		"UPDATE insights SET is_dismissed = 1, dismissed_at = datetime('now') WHERE id = ?", id,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DismissedTitles returns the titles of all dismissed insights for a team
// and date. Used by the regeneration sweep to suppress re-surfacing
// findings the user has already acknowledged.
func (db *DB) DismissedTitles(team, date string) (map[string]bool, error) {
	rows, err := db.conn.Query(
		"SELECT title FROM insights WHERE team = ? AND date = ? AND is_dismissed = 1", team, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles[title] = true
	}
	return titles, rows.Err()
}

// DeleteNonDismissed removes all non-dismissed insights for a team and
// date. Dismissed rows stay so their titles keep suppressing regeneration.
func (db *DB) DeleteNonDismissed(team, date string) (int64, error) {
	result, err := db.conn.Exec(
		"DELETE FROM insights WHERE team = ? AND date = ? AND is_dismissed = 0", team, date,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ClearInsights physically removes every insight for a team and date,
// dismissed rows included.
func (db *DB) ClearInsights(team, date string) (int64, error) {
	result, err := db.conn.Exec(
		"DELETE FROM insights WHERE team = ? AND date = ?", team, date,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM insights", &s.TotalInsights},
		{"SELECT COUNT(*) FROM insights WHERE is_dismissed = 1", &s.DismissedInsights},
		{"SELECT COUNT(DISTINCT team) FROM insights", &s.Teams},
		{"SELECT COUNT(*) FROM metric_samples", &s.MetricSamples},
		{"SELECT COUNT(*) FROM reviewer_pairs", &s.ReviewerPairs},
		{"SELECT COUNT(*) FROM benchmark_anchors", &s.BenchmarkAnchors},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}

const insightColumns = `SELECT id, team, date, category, priority, title, description,
	metric_type, metric_value, comparison_period, is_dismissed, dismissed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(row rowScanner) (*Insight, error) {
	var in Insight
	var payload *string
	if err := row.Scan(&in.ID, &in.Team, &in.Date, &in.Category, &in.Priority,
		&in.Title, &in.Description, &in.MetricType, &payload, &in.ComparisonPeriod,
		&in.IsDismissed, &in.DismissedAt, &in.CreatedAt, &in.UpdatedAt); err != nil {
		return nil, err
	}
	if payload != nil && *payload != "" {
		if err := json.Unmarshal([]byte(*payload), &in.MetricValue); err != nil {
			return nil, fmt.Errorf("decoding metric_value for insight %d: %w", in.ID, err)
		}
	}
	return &in, nil
}

func scanInsights(rows *sql.Rows) ([]Insight, error) {
	var insights []Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, *in)
	}
	return insights, rows.Err()
}

func encodeMetricValue(metricValue map[string]any) (*string, error) {
	if metricValue == nil {
		return nil, nil
	}
	data, err := json.Marshal(metricValue)
	if err != nil {
		return nil, fmt.Errorf("encoding metric_value: %w", err)
	}
	s := string(data)
	return &s, nil
}
