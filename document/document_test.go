package document

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestUnmarshalYAMLPreservesStepOrder(t *testing.T) {
	src := `
steps:
  - A: {}
  - S:
      in:
        x: 1
  - B: {}
inputs:
  y:
    type: int
meta:
  namespace: global
`
	var doc Document
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(doc.Steps))
	}
	keys := []string{doc.Steps[0].Key, doc.Steps[1].Key, doc.Steps[2].Key}
	want := []string{"A", "S", "B"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("step order mismatch: got %v, want %v", keys, want)
		}
	}
	if doc.Namespace() != "global" {
		t.Errorf("Namespace() = %q, want global", doc.Namespace())
	}
}

func TestUnmarshalYAMLBackendsLiftedOutOfMeta(t *testing.T) {
	src := `
meta:
  backends:
    slurm:
      steps:
        - A: {}
    local:
      steps:
        - B: {}
`
	var doc Document
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !doc.HasBackends() {
		t.Fatal("expected HasBackends() == true")
	}
	if len(doc.Steps) != 0 {
		t.Errorf("backend-bearing document should have no steps of its own, got %d", len(doc.Steps))
	}
	if _, ok := doc.Meta["backends"]; ok {
		t.Error("backends should be lifted out of Meta")
	}
	if doc.Backends["slurm"] == nil || doc.Backends["slurm"].Steps[0].Key != "A" {
		t.Error("slurm backend body not decoded correctly")
	}
	if doc.Backends["local"] == nil || doc.Backends["local"].Steps[0].Key != "B" {
		t.Error("local backend body not decoded correctly")
	}
}

func TestDefaultNamespaceIsGlobal(t *testing.T) {
	d := &Document{}
	if d.Namespace() != "global" {
		t.Errorf("Namespace() = %q, want global", d.Namespace())
	}
}

func TestDefaultInlineableIsTrue(t *testing.T) {
	d := &Document{}
	if !d.Inlineable() {
		t.Error("Inlineable() should default to true")
	}
	d.Meta = map[string]any{"inlineable": false}
	if d.Inlineable() {
		t.Error("Inlineable() should honor an explicit false")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Document{
		Steps: []Step{{Key: "A", Value: map[string]any{"x": 1}}},
		Meta:  map[string]any{"namespace": "global"},
	}
	clone := orig.Clone()
	clone.Steps[0].Value.(map[string]any)["x"] = 2
	clone.Meta["namespace"] = "changed"

	if orig.Steps[0].Value.(map[string]any)["x"] != 1 {
		t.Error("mutating clone's step args affected the original")
	}
	if orig.Meta["namespace"] != "global" {
		t.Error("mutating clone's meta affected the original")
	}
}

func TestStepEntryMeta(t *testing.T) {
	entry := map[string]any{
		"meta": map[string]any{"namespace": "tools"},
		"x":    1,
	}
	m := StepEntryMeta(entry)
	if m["namespace"] != "tools" {
		t.Errorf("StepEntryMeta() = %v, want namespace=tools", m)
	}
	if StepEntryMeta(map[string]any{}) != nil {
		t.Error("expected nil for entry without a meta sub-key")
	}
}
