package store

// Insight is a persisted finding for a team and date.
type Insight struct {
	ID               int64
	Team             string
	Date             string
	Category         string
	Priority         string
	Title            string
	Description      string
	MetricType       *string
	MetricValue      map[string]any
	ComparisonPeriod string
	IsDismissed      bool
	DismissedAt      *string
	CreatedAt        *string
	UpdatedAt        *string
}

// MetricSample is one pre-aggregated weekly value for a team metric.
type MetricSample struct {
	Team      string
	Metric    string
	WeekStart string
	Value     float64
}

// ReviewerPair holds all-time review agreement stats for a reviewer pair.
type ReviewerPair struct {
	Team       string
	ReviewerA  string
	ReviewerB  string
	Agreements int
	Total      int
}

// BenchmarkAnchor holds industry percentile anchor points for one metric
// and team-size bucket. Values are time-like: lower is better.
type BenchmarkAnchor struct {
	Metric         string
	TeamSizeBucket string
	P25            float64
	P50            float64
	P75            float64
	P90            float64
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalInsights     int
	DismissedInsights int
	Teams             int
	MetricSamples     int
	ReviewerPairs     int
	BenchmarkAnchors  int
}
