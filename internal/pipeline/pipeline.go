// Package pipeline orchestrates insight generation for a team and date:
// the deterministic rule sweep with its dismissal-preserving refresh,
// and the LLM narrative path.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/teampulse/teampulse/internal/benchmark"
	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/generate"
	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/llm"
	"github.com/teampulse/teampulse/internal/metrics"
	"github.com/teampulse/teampulse/internal/rules"
	"github.com/teampulse/teampulse/internal/store"
)

// SweepResult holds the outcome of one rule sweep. Insights carries the
// written findings in evaluation order.
type SweepResult struct {
	Candidates int
	Written    int
	Suppressed int
	Deleted    int64
	Insights   []insight.Candidate
}

// Pipeline wires the aggregator, rule engine, and generator to the
// insight store.
type Pipeline struct {
	cfg     *config.Config
	db      *store.DB
	agg     metrics.Aggregator
	anchors rules.AnchorSource
	engine  *rules.Engine
	gen     *generate.Generator
}

// New creates a pipeline. LLM backends come from config; with none
// configured the narrative path always uses the deterministic fallback.
func New(cfg *config.Config, db *store.DB) *Pipeline {
	n := cfg.Narration
	backends := llm.CreateBackends(n.Provider, n.Model, n.OllamaURL, n.OpenAIModel, n.APIKeyEnv)
	agg := metrics.NewSQLAggregator(db)

	return &Pipeline{
		cfg:     cfg,
		db:      db,
		agg:     agg,
		anchors: benchmark.NewStoreSource(db),
		engine:  rules.NewEngine(),
		gen:     generate.New(agg, backends, n.MaxTokens),
	}
}

// RunRules evaluates every rule for (team, date) and refreshes the
// stored insights. The sweep first captures dismissed titles, clears the
// non-dismissed rows, then writes back every candidate whose title the
// user has not dismissed. Previously dismissed findings stay suppressed
// even when their condition still holds.
func (p *Pipeline) RunRules(team, date string) (*SweepResult, error) {
	dismissed, err := p.db.DismissedTitles(team, date)
	if err != nil {
		return nil, fmt.Errorf("reading dismissed titles: %w", err)
	}

	deleted, err := p.db.DeleteNonDismissed(team, date)
	if err != nil {
		return nil, fmt.Errorf("clearing previous sweep: %w", err)
	}

	candidates := p.engine.Run(&rules.Context{
		Team:           team,
		Date:           date,
		LookbackWeeks:  p.cfg.Rules.LookbackWeeks,
		TeamSizeBucket: p.cfg.Rules.TeamSizeBucket,
		Agg:            p.agg,
		Anchors:        p.anchors,
	})

	r := &SweepResult{Candidates: len(candidates), Deleted: deleted}
	for _, c := range candidates {
		if dismissed[c.Title] {
			r.Suppressed++
			continue
		}

		var metricType *string
		if c.MetricType != "" {
			mt := c.MetricType
			metricType = &mt
		}
		_, err := p.db.UpsertInsight(team, date, string(c.Category), string(c.Priority),
			c.Title, c.Description, metricType, c.MetricValue, c.ComparisonPeriod)
		if err != nil {
			return r, fmt.Errorf("writing insight %q: %w", c.Title, err)
		}
		r.Written++
		r.Insights = append(r.Insights, c)
	}

	log.Printf("rule sweep for %s on %s: %d candidates, %d written, %d suppressed by dismissal",
		team, date, r.Candidates, r.Written, r.Suppressed)
	return r, nil
}

// RunNarrative generates the narrative insight for (team, date) over a
// trailing days window and persists it. A dismissed narrative with the
// same headline stays suppressed.
func (p *Pipeline) RunNarrative(ctx context.Context, team, date string, days int) (*generate.Response, error) {
	resp, err := p.gen.Generate(ctx, team, date, days)
	if err != nil {
		return nil, err
	}

	dismissed, err := p.db.DismissedTitles(team, date)
	if err != nil {
		return nil, fmt.Errorf("reading dismissed titles: %w", err)
	}
	if dismissed[resp.Headline] {
		log.Printf("narrative for %s on %s suppressed by dismissal: %q", team, date, resp.Headline)
		return resp, nil
	}

	actions := make([]map[string]any, 0, len(resp.Actions))
	for _, a := range resp.Actions {
		actions = append(actions, map[string]any{
			"type":  a.Type,
			"label": a.Label,
			"url":   generate.ResolveActionURL(a.Type, days),
		})
	}

	metricType := "narrative"
	description := resp.Detail
	if resp.Recommendation != "" {
		description += "\n\n" + resp.Recommendation
	}

	_, err = p.db.UpsertInsight(team, date, "comparison", "medium",
		resp.Headline, description, &metricType,
		map[string]any{
			"cards":       cardsPayload(resp.MetricCards),
			"actions":     actions,
			"is_fallback": resp.IsFallback,
		},
		strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("writing narrative insight: %w", err)
	}

	return resp, nil
}

func cardsPayload(cards []generate.MetricCard) []map[string]any {
	out := make([]map[string]any, 0, len(cards))
	for _, c := range cards {
		out = append(out, map[string]any{
			"title":  c.Title,
			"value":  c.Value,
			"change": c.Change,
			"trend":  c.Trend,
		})
	}
	return out
}
