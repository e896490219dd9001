package graph

import (
	"testing"

	"github.com/polusai/wic/diag"
)

func TestInlineGraphLeafIsUnchanged(t *testing.T) {
	leaf := &RoseTree{Graph: &CompiledGraph{Steps: map[string]any{"echo": map[string]any{}}}}
	got := InlineGraph(leaf, nil)
	if got != leaf {
		t.Error("a childless rose tree should be returned unchanged")
	}
}

func TestInlineGraphSplicesSubstepsAndNamespaces(t *testing.T) {
	sub := &RoseTree{
		Namespace: "S",
		Graph: &CompiledGraph{
			Steps: map[string]any{
				"C": map[string]any{
					"run": "../C.cwl",
					"in":  map[string]any{"x": "threshold"},
				},
			},
			Outputs: map[string]any{},
		},
	}
	root := &RoseTree{
		Graph: &CompiledGraph{
			Steps: map[string]any{
				"S": map[string]any{
					"run": "S.cwl",
					"in":  map[string]any{"threshold": "A/out"},
				},
				"A": map[string]any{"run": "A.cwl", "in": map[string]any{}},
			},
			Outputs: map[string]any{},
		},
		Children: []*RoseTree{sub},
	}

	got := InlineGraph(root, nil)

	if _, stillThere := got.Graph.Steps["S"]; stillThere {
		t.Error("the subworkflow step itself should have been replaced by its spliced substeps")
	}
	spliced, ok := got.Graph.Steps["S___C"].(map[string]any)
	if !ok {
		t.Fatalf("expected a namespaced step S___C, got keys %v", keysOf(got.Graph.Steps))
	}
	if run, _ := spliced["run"].(string); run != "C.cwl" {
		t.Errorf("run = %q, want the leading ../ stripped", run)
	}
	in := spliced["in"].(map[string]any)
	// The substituted binding already references a sibling step in the
	// parent graph, so it is carried through as-is rather than
	// re-namespaced under the spliced subworkflow's prefix.
	if in["x"] != "A/out" {
		t.Errorf("x = %v, want parent binding A/out carried through unchanged", in["x"])
	}
	if _, untouched := got.Graph.Steps["A"]; !untouched {
		t.Error("non-subworkflow sibling step should be copied through unchanged")
	}
}

func TestInlineGraphDistributesScatterAcrossSubstitutedBindings(t *testing.T) {
	sub := &RoseTree{
		Namespace: "sub",
		Graph: &CompiledGraph{
			Steps: map[string]any{
				"c0": map[string]any{
					"run": "c0.cwl",
					"in":  map[string]any{"a": "a"},
				},
			},
			Outputs: map[string]any{},
		},
	}
	root := &RoseTree{
		Graph: &CompiledGraph{
			Steps: map[string]any{
				"sub": map[string]any{
					"run":     "sub.cwl",
					"in":      map[string]any{"a": "upstream/out"},
					"scatter": []any{"a"},
				},
			},
			Outputs: map[string]any{},
		},
		Children: []*RoseTree{sub},
	}

	got := InlineGraph(root, nil)

	if _, stillThere := got.Graph.Steps["sub"]; stillThere {
		t.Error("step sub should have been replaced by its spliced substeps")
	}
	spliced, ok := got.Graph.Steps["sub___c0"].(map[string]any)
	if !ok {
		t.Fatalf("expected step sub___c0, got keys %v", keysOf(got.Graph.Steps))
	}
	in := spliced["in"].(map[string]any)
	if in["a"] != "upstream/out" {
		t.Errorf("in.a = %v, want the parent binding upstream/out substituted without re-prefixing", in["a"])
	}
	if !contains(stringSlice(spliced["scatter"]), "a") {
		t.Errorf("scatter = %v, want it to contain the substituted port a", spliced["scatter"])
	}
	if spliced["scatterMethod"] != "dotproduct" {
		t.Errorf("scatterMethod = %v, want dotproduct", spliced["scatterMethod"])
	}
	// The original child graph is untouched: splicing works on a copy.
	origIn := sub.Graph.Steps["c0"].(map[string]any)["in"].(map[string]any)
	if origIn["a"] != "a" {
		t.Errorf("child graph mutated during splice: in.a = %v", origIn["a"])
	}
}

func TestInlineGraphDropsOutputAllWithWarning(t *testing.T) {
	root := &RoseTree{
		Graph: &CompiledGraph{
			Steps: map[string]any{},
			Outputs: map[string]any{
				"result":          map[string]any{"outputSource": "a/b/out"},
				"step1_output_all": map[string]any{"outputSource": "a/b/c"},
			},
		},
		Children: []*RoseTree{{Namespace: "unused", Graph: &CompiledGraph{Steps: map[string]any{}, Outputs: map[string]any{}}}},
	}
	diags := diag.NewCollector(nil)

	got := InlineGraph(root, diags)

	if _, ok := got.Graph.Outputs["step1_output_all"]; ok {
		t.Error("output_all-named output should have been dropped")
	}
	if !diags.HasKind(diag.OutputAllDropped) {
		t.Error("expected an OutputAllDropped warning")
	}
	result, ok := got.Graph.Outputs["result"].(map[string]any)
	if !ok {
		t.Fatal("expected result output to survive")
	}
	if result["outputSource"] != "a___b/out" {
		t.Errorf("outputSource = %v, want a___b/out", result["outputSource"])
	}
}

func TestInlineGraphWarnsOnPartialInline(t *testing.T) {
	root := &RoseTree{
		Graph: &CompiledGraph{
			Steps:   map[string]any{"A": map[string]any{"run": "A.cwl", "in": map[string]any{}}},
			Outputs: map[string]any{},
		},
		// A child namespace that does not match any step key in the
		// parent's steps: the splice can never find it.
		Children: []*RoseTree{{Namespace: "missing", Graph: &CompiledGraph{Steps: map[string]any{}, Outputs: map[string]any{}}}},
	}
	diags := diag.NewCollector(nil)

	InlineGraph(root, diags)

	if !diags.HasKind(diag.PartialInline) {
		t.Error("expected a PartialInline warning when a child namespace matches no step")
	}
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
