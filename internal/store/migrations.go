package store

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS insights (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team TEXT NOT NULL,
    date TEXT NOT NULL,
    category TEXT NOT NULL,
    priority TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    metric_type TEXT,
    metric_value TEXT,
    comparison_period TEXT NOT NULL,
    is_dismissed INTEGER DEFAULT 0,
    dismissed_at TEXT,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now')),
    UNIQUE(team, date, category, comparison_period)
);

CREATE TABLE IF NOT EXISTS metric_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team TEXT NOT NULL,
    metric TEXT NOT NULL,
    week_start TEXT NOT NULL,
    value REAL NOT NULL,
    UNIQUE(team, metric, week_start)
);

CREATE TABLE IF NOT EXISTS metric_totals (
    team TEXT NOT NULL,
    metric TEXT NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (team, metric)
);

CREATE TABLE IF NOT EXISTS reviewer_pairs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team TEXT NOT NULL,
    reviewer_a TEXT NOT NULL,
    reviewer_b TEXT NOT NULL,
    agreements INTEGER NOT NULL,
    total INTEGER NOT NULL,
    UNIQUE(team, reviewer_a, reviewer_b)
);

CREATE TABLE IF NOT EXISTS benchmark_anchors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    metric TEXT NOT NULL,
    team_size_bucket TEXT NOT NULL,
    p25 REAL NOT NULL,
    p50 REAL NOT NULL,
    p75 REAL NOT NULL,
    p90 REAL NOT NULL,
    UNIQUE(metric, team_size_bucket)
);

CREATE INDEX IF NOT EXISTS idx_insights_team_date ON insights(team, date);
CREATE INDEX IF NOT EXISTS idx_insights_team_dismissed ON insights(team, is_dismissed);
CREATE INDEX IF NOT EXISTS idx_metric_samples_lookup ON metric_samples(team, metric, week_start);
CREATE INDEX IF NOT EXISTS idx_reviewer_pairs_team ON reviewer_pairs(team);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
