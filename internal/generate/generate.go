// Package generate produces the cross-domain narrative insight for a
// team: deterministic metric cards plus a model-written headline,
// detail, and recommendation, with strictly sequential backend failover
// and a deterministic synthesis when every backend fails.
package generate

import (
	"context"
	"fmt"
	"log"

	"github.com/teampulse/teampulse/internal/llm"
	"github.com/teampulse/teampulse/internal/metrics"
)

// Generator assembles narrative insights from a metrics snapshot.
type Generator struct {
	agg       metrics.Aggregator
	backends  []llm.Provider
	maxTokens int
}

// New creates a generator. Backends are tried in order; an empty list
// means every generation uses the deterministic fallback.
func New(agg metrics.Aggregator, backends []llm.Provider, maxTokens int) *Generator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{agg: agg, backends: backends, maxTokens: maxTokens}
}

// Generate builds the narrative insight for a team over the trailing
// days window ending at date. Backend and validation failures are
// recoverable; the returned response always carries exactly four metric
// cards. An error here means the data layer itself failed.
func (g *Generator) Generate(ctx context.Context, team, date string, days int) (*Response, error) {
	snap, err := g.agg.Snapshot(team, date, days)
	if err != nil {
		return nil, fmt.Errorf("building snapshot for %s: %w", team, err)
	}

	cards := BuildCards(snap)
	prompt := renderPrompt(snap)

	for _, backend := range g.backends {
		text, err := backend.Generate(ctx, prompt, g.maxTokens)
		if err != nil {
			log.Printf("warning: backend %s failed for team %s: %v", backend.Name(), team, err)
			continue
		}

		resp, err := parseAndValidate(text)
		if err != nil {
			log.Printf("warning: backend %s returned invalid response for team %s: %v", backend.Name(), team, err)
			continue
		}

		resp.MetricCards = cards
		return resp, nil
	}

	if len(g.backends) > 0 {
		log.Printf("all %d backends failed for team %s, synthesizing fallback", len(g.backends), team)
	}
	resp := Fallback(snap)
	resp.MetricCards = cards
	return resp, nil
}
