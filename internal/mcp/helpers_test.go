package mcpserver

import (
	"reflect"
	"testing"
)

func TestSplitIDs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := splitIDs(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitIDs(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetFloat(t *testing.T) {
	args := map[string]any{"x": 3.5, "name": "not a number"}

	if got := getFloat(args, "x", 0); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}
	if got := getFloat(args, "missing", 7); got != 7 {
		t.Errorf("expected fallback 7, got %v", got)
	}
	if got := getFloat(args, "name", 7); got != 7 {
		t.Errorf("expected fallback for non-numeric value, got %v", got)
	}
}

func TestResolveCanvasID(t *testing.T) {
	s := &Server{}

	if _, err := s.resolveCanvasID(map[string]any{}); err == nil {
		t.Error("expected error with no canvasId and no active canvas")
	}

	s.activeCanvasID = "canvas-1"
	id, err := s.resolveCanvasID(map[string]any{})
	if err != nil || id != "canvas-1" {
		t.Errorf("expected active canvas fallback, got %q, %v", id, err)
	}

	id, err = s.resolveCanvasID(map[string]any{"canvasId": "canvas-2"})
	if err != nil || id != "canvas-2" {
		t.Errorf("expected explicit canvasId to win, got %q, %v", id, err)
	}
}

func TestParseConfigArg(t *testing.T) {
	cfg, err := parseConfigArg(map[string]any{}, "config")
	if err != nil || cfg != nil {
		t.Errorf("expected nil config for missing arg, got %v, %v", cfg, err)
	}

	cfg, err = parseConfigArg(map[string]any{"config": `{"content":"hi","fontSize":14}`}, "config")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg["content"] != "hi" || cfg["fontSize"] != 14.0 {
		t.Errorf("unexpected config contents: %v", cfg)
	}

	if _, err := parseConfigArg(map[string]any{"config": "not json"}, "config"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
