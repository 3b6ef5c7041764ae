package benchmark

import "github.com/teampulse/teampulse/internal/store"

// StoreSource reads anchors from the SQLite store.
type StoreSource struct {
	db *store.DB
}

// NewStoreSource creates an anchor source backed by the given store.
func NewStoreSource(db *store.DB) *StoreSource {
	return &StoreSource{db: db}
}

// Anchor returns the stored anchor for a metric and team-size bucket, or
// nil if none is stored.
func (s *StoreSource) Anchor(metric, teamSizeBucket string) (*Anchor, error) {
	row, err := s.db.GetBenchmarkAnchor(metric, teamSizeBucket)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return &Anchor{P25: row.P25, P50: row.P50, P75: row.P75, P90: row.P90}, nil
}
