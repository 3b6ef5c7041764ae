package llm

import (
	"testing"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"key": "value"}`, `{"key": "value"}`},
		{"fenced", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"fenced no language", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"surrounding whitespace", "  {\"key\": \"value\"}\n", `{"key": "value"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	var v struct {
		Headline string `json:"headline"`
	}
	if err := DecodeStrict(`{"headline": "hi"}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Headline != "hi" {
		t.Errorf("expected headline 'hi', got %q", v.Headline)
	}
}

func TestDecodeStrictRejectsExtraFields(t *testing.T) {
	var v struct {
		Headline string `json:"headline"`
	}
	err := DecodeStrict(`{"headline": "hi", "surprise": true}`, &v)
	if err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestDecodeStrictWithCodeFence(t *testing.T) {
	var v struct {
		Headline string `json:"headline"`
	}
	if err := DecodeStrict("```json\n{\"headline\": \"hi\"}\n```", &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Headline != "hi" {
		t.Errorf("expected headline 'hi', got %q", v.Headline)
	}
}

func TestDecodeStrictInvalid(t *testing.T) {
	var v struct{}
	if err := DecodeStrict("not json at all", &v); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestDecodeStrictEmpty(t *testing.T) {
	var v struct{}
	if err := DecodeStrict("", &v); err == nil {
		t.Error("expected error for empty input")
	}
}
