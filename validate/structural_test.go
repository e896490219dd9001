package validate

import (
	"testing"

	"github.com/polusai/wic/document"
)

func TestStructuralValidatorAcceptsValidDocument(t *testing.T) {
	doc := &document.Document{
		Steps: []document.Step{{Key: "echo", Value: nil}},
		Meta: map[string]any{
			"steps": map[string]any{
				"(1, echo)": map[string]any{"x": 1},
			},
		},
	}
	var v StructuralValidator
	if d := v.Validate(doc); d != nil {
		t.Errorf("expected no diagnostic, got %v", d)
	}
}

func TestStructuralValidatorRejectsBackendsWithSteps(t *testing.T) {
	doc := &document.Document{
		Steps:    []document.Step{{Key: "echo"}},
		Backends: map[string]*document.Document{"slurm": {}},
	}
	var v StructuralValidator
	d := v.Validate(doc)
	if d == nil {
		t.Fatal("expected a diagnostic")
	}
}

func TestStructuralValidatorRejectsMalformedMetaStepKey(t *testing.T) {
	doc := &document.Document{
		Meta: map[string]any{
			"steps": map[string]any{
				"not-a-valid-key": map[string]any{},
			},
		},
	}
	var v StructuralValidator
	d := v.Validate(doc)
	if d == nil {
		t.Fatal("expected a diagnostic for malformed meta step key")
	}
}
