package generate

import (
	"fmt"

	"github.com/teampulse/teampulse/internal/llm"
)

// Action is one suggested follow-up with a button label.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// MetricCard is one deterministically computed summary card. Cards are
// injected after generation and never requested from the model.
type MetricCard struct {
	Title  string `json:"title"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Trend  string `json:"trend"` // positive | neutral | warning | negative
}

// Response is the full narrative insight, whichever path produced it.
type Response struct {
	Headline       string       `json:"headline"`
	Detail         string       `json:"detail"`
	Recommendation string       `json:"recommendation"`
	Actions        []Action     `json:"actions"`
	MetricCards    []MetricCard `json:"metric_cards"`
	IsFallback     bool         `json:"is_fallback"`
}

// modelResponse is the only shape accepted from a backend. Extra fields
// are a schema violation.
type modelResponse struct {
	Headline       string   `json:"headline"`
	Detail         string   `json:"detail"`
	Recommendation string   `json:"recommendation"`
	Actions        []Action `json:"actions"`
}

// actionTypes is the closed enum of follow-up actions a response may
// carry.
var actionTypes = map[string]bool{
	ActionViewPRs:      true,
	ActionViewAIPRs:    true,
	ActionViewReverts:  true,
	ActionViewLargePRs: true,
	ActionViewSlowPRs:  true,
	ActionViewCIRuns:   true,
}

// parseAndValidate decodes backend output against the response schema.
// Any violation is returned as an error so the caller can move to the
// next backend.
func parseAndValidate(text string) (*Response, error) {
	var m modelResponse
	if err := llm.DecodeStrict(text, &m); err != nil {
		return nil, err
	}

	if m.Headline == "" {
		return nil, fmt.Errorf("missing headline")
	}
	if m.Detail == "" {
		return nil, fmt.Errorf("missing detail")
	}
	if m.Recommendation == "" {
		return nil, fmt.Errorf("missing recommendation")
	}
	if len(m.Actions) < 1 || len(m.Actions) > 3 {
		return nil, fmt.Errorf("expected 1-3 actions, got %d", len(m.Actions))
	}
	for _, a := range m.Actions {
		if !actionTypes[a.Type] {
			return nil, fmt.Errorf("unknown action type %q", a.Type)
		}
		if a.Label == "" {
			return nil, fmt.Errorf("action %q has no label", a.Type)
		}
	}

	return &Response{
		Headline:       m.Headline,
		Detail:         m.Detail,
		Recommendation: m.Recommendation,
		Actions:        m.Actions,
	}, nil
}
