package graph

import (
	"regexp"
	"strings"

	"github.com/polusai/wic/diag"
	"github.com/polusai/wic/ids"
)

var inputVarPattern = regexp.MustCompile(`.*\[inputs\.(.*?)\].*`)

// InlineGraph recursively splices every compiled subgraph in tree's
// children into
// its parent's steps, rewriting `in` bindings via ids.MoveSlashLast,
// substituting parent-step formal-parameter bindings, distributing
// scatter across subworkflow dependencies, stripping a leading "../"
// from each spliced step's run field, and namespacing every spliced
// step name as "<parent-step-key>___<sub-step-name>". Output bindings
// are rewritten the same way; an output whose name contains
// "output_all" is dropped with a diag.OutputAllDropped warning. A
// mismatch between the number of steps actually inlined and the number
// of child rose trees is recorded as diag.PartialInline rather than
// failing the splice.
func InlineGraph(tree *RoseTree, diags *diag.Collector) *RoseTree {
	if tree == nil || len(tree.Children) == 0 {
		return tree
	}

	inlinedChildren := make([]*RoseTree, len(tree.Children))
	for i, c := range tree.Children {
		inlinedChildren[i] = InlineGraph(c, diags)
	}

	cwlTree := tree.Graph.Clone()

	subByKey := make(map[string]*CompiledGraph, len(inlinedChildren))
	for _, c := range inlinedChildren {
		// Each child graph is spliced from its own deep copy so sibling
		// rewrites never alias each other's step maps.
		subByKey[c.Namespace] = c.Graph.Clone()
	}

	stepsNew := map[string]any{}
	count := 0

	for stepKey, stepVal := range cwlTree.Steps {
		sub, isSub := subByKey[stepKey]
		if !isSub {
			stepsNew[stepKey] = stepVal
			continue
		}
		count++

		stepMap, _ := stepVal.(map[string]any)
		inputs, _ := stepMap["in"].(map[string]any)
		scattervars := stringSlice(stepMap["scatter"])

		for subStepKey, subStepVal := range sub.Steps {
			subStepMap, _ := subStepVal.(map[string]any)
			splicedKey := stepKey + "___" + subStepKey
			stepsNew[splicedKey] = spliceSubstep(subStepMap, stepKey, inputs, scattervars)
		}
	}

	if count != len(tree.Children) && diags != nil {
		diags.Warn(diag.PartialInline,
			"expected to inline %d subworkflow(s), inlined %d", len(tree.Children), count)
	}
	cwlTree.Steps = stepsNew

	outputsNew := map[string]any{}
	for outKey, outVal := range cwlTree.Outputs {
		if strings.Contains(outKey, "output_all") {
			if diags != nil {
				diags.Warn(diag.OutputAllDropped, "dropped output %q", outKey)
			}
			continue
		}
		outMap, _ := outVal.(map[string]any)
		if src, ok := outMap["outputSource"].(string); ok {
			outMap["outputSource"] = ids.MoveSlashLast(src)
		}
		outputsNew[outKey] = outMap
	}
	cwlTree.Outputs = outputsNew

	return &RoseTree{Namespace: tree.Namespace, Graph: cwlTree}
}

// spliceSubstep rewrites one step of an inlined subgraph: its `in`
// bindings are namespaced under the parent step key and, where a
// binding's source matches one of the parent step's own inputs,
// substituted by the parent's actual argument. run's leading "../" is
// stripped since the subworkflow is no longer a separate file.
func spliceSubstep(subStepMap map[string]any, stepKey string, inputs map[string]any, scattervars []string) map[string]any {
	substepInputs, _ := subStepMap["in"].(map[string]any)
	substepInputsNew := map[string]any{}

	for subInputKey, subInputVal := range substepInputs {
		var source string

		switch v := subInputVal.(type) {
		case string:
			source = ids.MoveSlashLast(v)
			substepInputsNew[subInputKey] = stepKey + "___" + v
		case map[string]any:
			if s, ok := v["source"].(string); ok {
				source = s
				v["source"] = stepKey + "___" + ids.MoveSlashLast(s)
			}
			substepInputsNew[subInputKey] = v
		}

		if newval, ok := inputs[source]; ok {
			switch nv := newval.(type) {
			case string:
				// Already namespaced in the parent workflow; do not
				// re-namespace it here.
				newval = ids.MoveSlashLast(nv)
			case map[string]any:
				if s, ok := nv["source"].(string); ok {
					nv["source"] = ids.MoveSlashLast(s)
				}
				newval = nv
			}
			substepInputsNew[subInputKey] = newval

			if m := inputVarPattern.FindStringSubmatch(toDisplayString(newval)); m != nil && m[1] != "" {
				inputVarName := m[1]
				if iv, ok := inputs[inputVarName]; ok {
					substepInputsNew[inputVarName] = iv
					if contains(scattervars, inputVarName) {
						appendScatter(subStepMap, inputVarName)
					}
				}
			}
		}

		// Distribute scatter unconditionally across every subworkflow
		// dependency that still carries a cross-step reference after
		// substitution. The author is expected to have already separated
		// scattered from non-scattered steps (loop-invariant code motion
		// performed by hand), so no transitive cardinality analysis is
		// attempted here.
		if len(scattervars) > 0 && hasSlash(substepInputsNew[subInputKey]) {
			appendScatter(subStepMap, subInputKey)
			subStepMap["scatterMethod"] = "dotproduct"
		}
	}

	subStepMap["in"] = substepInputsNew
	if run, ok := subStepMap["run"].(string); ok {
		subStepMap["run"] = strings.TrimPrefix(run, "../")
	}
	return subStepMap
}

func hasSlash(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(t, "/")
	case map[string]any:
		s, _ := t["source"].(string)
		return strings.Contains(s, "/")
	default:
		return false
	}
}

func appendScatter(stepMap map[string]any, name string) {
	existing := stringSlice(stepMap["scatter"])
	if contains(existing, name) {
		return
	}
	stepMap["scatter"] = append(existing, name)
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func toDisplayString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
