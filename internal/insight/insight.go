package insight

// Category classifies what kind of finding an insight is.
type Category string

const (
	CategoryTrend      Category = "trend"
	CategoryAnomaly    Category = "anomaly"
	CategoryComparison Category = "comparison"
	CategoryAction     Category = "action"
)

// Priority ranks how urgently a finding should be surfaced.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// priorityRank orders priorities for display, highest first.
var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Rank returns a sort key for the priority, lower = more urgent.
// Unknown priorities sort last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return 3
}

// Candidate is a finding produced by a rule or the narrative generator.
// Candidates are immutable once emitted; persistence happens separately.
type Candidate struct {
	Category         Category
	Priority         Priority
	Title            string
	Description      string
	MetricType       string
	MetricValue      map[string]any
	ComparisonPeriod string
}
