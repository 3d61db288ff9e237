package extract

import (
	"errors"
	"testing"
)

func TestExtractDirect(t *testing.T) {
	res, err := Extract(`{"system_name": "Test", "components": []}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "direct" {
		t.Errorf("expected direct strategy, got %s", res.Strategy)
	}
	obj, ok := res.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", res.Value)
	}
	if obj["system_name"] != "Test" {
		t.Errorf("unexpected value: %v", obj)
	}
}

func TestExtractFenced(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain fence", "```\n{\"a\": 1}\n```"},
		{"json language tag", "```json\n{\"a\": 1}\n```"},
		{"prose around fence", "Here is the result:\n```json\n{\"a\": 1}\n```\nHope that helps!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Strategy != "fences" {
				t.Errorf("expected fences strategy, got %s", res.Strategy)
			}
		})
	}
}

func TestExtractObjectFromProse(t *testing.T) {
	raw := `The architecture is {"system_name": "X", "components": []} as requested.`
	res, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "object" {
		t.Errorf("expected object strategy, got %s", res.Strategy)
	}
}

func TestExtractArrayFromProse(t *testing.T) {
	res, err := Extract(`sure: [1, 2, 3] there you go`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "array" {
		t.Errorf("expected array strategy, got %s", res.Strategy)
	}
}

func TestExtractStripsThinkingTags(t *testing.T) {
	raw := "<think>let me reason about blocks</think>{\"a\": 1}"
	res, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "direct" {
		t.Errorf("expected direct after tag stripping, got %s", res.Strategy)
	}
}

func TestExtractOrderPrefersEarlierStrategy(t *testing.T) {
	// Valid JSON that also contains braces in prose form must be taken
	// verbatim by the direct strategy, not re-cut by later ones.
	raw := `{"note": "braces } inside { strings"}`
	res, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "direct" {
		t.Errorf("expected direct strategy, got %s", res.Strategy)
	}
}

func TestExtractTotalFailure(t *testing.T) {
	_, err := Extract("I cannot produce an architecture for this input.")
	if err == nil {
		t.Fatal("expected error for unparseable reply")
	}
	var fail *Failure
	if !errors.As(err, &fail) {
		t.Fatalf("expected *Failure, got %T", err)
	}
	if fail.Raw == "" {
		t.Error("failure should retain the raw reply")
	}
	if len(fail.Attempted) != len(strategies) {
		t.Errorf("expected all %d strategies attempted, got %v", len(strategies), fail.Attempted)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	if _, err := Extract(""); err == nil {
		t.Fatal("expected error for empty reply")
	}
}
