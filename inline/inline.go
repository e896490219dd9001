// Package inline implements structural inlining: discovery of
// inline-eligible subworkflows and the splice that replaces a
// subworkflow reference by its body within its parent, re-indexing
// sibling metadata and applying deferred parent arguments.
package inline

import (
	"fmt"

	"github.com/polusai/wic/diag"
	"github.com/polusai/wic/document"
	"github.com/polusai/wic/ids"
	"github.com/polusai/wic/merge"
	"github.com/polusai/wic/wicerr"
)

// Path is a namespace path: an ordered sequence of canonical step names
// identifying a location in the AST from the root. An empty Path
// denotes the root document.
type Path []string

// InlineablePaths walks the resolved AST depth-first and returns every
// namespace path at which a subworkflow may be structurally inlined
// into its parent.
func InlineablePaths(rootStem string, doc *document.Document) []Path {
	return inlineablePaths(rootStem, doc, false, nil)
}

func inlineablePaths(stem string, doc *document.Document, parentIsBackend bool, path Path) []Path {
	if doc.HasBackends() {
		var out []Path
		for name, back := range doc.Backends {
			out = append(out, inlineablePaths(name, back, true, path)...)
		}
		return out
	}

	var out []Path
	if doc.Inlineable() && len(path) > 0 && !parentIsBackend {
		out = append(out, path)
	}

	for i, step := range doc.Steps {
		ref := step.Subworkflow()
		if ref == nil {
			continue
		}
		childPath := make(Path, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = ids.StepName(stem, i, step.Key)
		out = append(out, inlineablePaths(step.Key, ref.Subtree, false, childPath)...)
	}

	return out
}

// InlineAt splices the subworkflow at the given path into its parent.
// Operates on a deep copy of doc; returns the transformed document and
// the splice arity (the number of steps the subworkflow contributed,
// 0 for a backend choice).
func InlineAt(parentStem string, doc *document.Document, path Path, diags *diag.Collector) (*document.Document, int, error) {
	if len(path) == 0 {
		return doc.Clone(), 0, nil
	}
	return inlineAt(parentStem, doc.Clone(), path, diags)
}

func inlineAt(parentStem string, doc *document.Document, path Path, diags *diag.Collector) (*document.Document, int, error) {
	if doc.HasBackends() {
		if len(path) == 1 {
			back, ok := doc.Backends[path[0]]
			if !ok {
				return nil, 0, fmt.Errorf("inline: backend %q not found", path[0])
			}
			return back, 0, nil
		}
		newBackends := make(map[string]*document.Document, len(doc.Backends))
		for name, back := range doc.Backends {
			newBack, _, err := inlineAt(name, back, path, diags)
			if err != nil {
				return nil, 0, fmt.Errorf("inline: backend %q: %w", name, err)
			}
			newBackends[name] = newBack
		}
		doc.Backends = newBackends
		return doc, 0, nil
	}

	stepNames := make([]string, len(doc.Steps))
	for i, s := range doc.Steps {
		stepNames[i] = ids.StepName(parentStem, i, s.Key)
	}
	i := indexOf(stepNames, path[0])
	if i < 0 {
		return nil, 0, fmt.Errorf("inline: %q not found among %v", path[0], stepNames)
	}

	ref := doc.Steps[i].Subworkflow()
	if ref == nil {
		return nil, 0, fmt.Errorf("inline: step %q is not a subworkflow reference", doc.Steps[i].Key)
	}

	if len(path) == 1 {
		subtree, err := ApplyArgs(ref.Subtree, ref.ParentArgs, doc.Steps[i].Key, diags)
		if err != nil {
			return nil, 0, err
		}
		arity := len(subtree.Steps)

		newSteps := make([]document.Step, 0, len(doc.Steps)-1+arity)
		newSteps = append(newSteps, doc.Steps[:i]...)
		newSteps = append(newSteps, subtree.Steps...)
		newSteps = append(newSteps, doc.Steps[i+1:]...)

		rewriteMetaAfterSplice(doc, i, subtree, arity)
		doc.Steps = newSteps
		return doc, arity, nil
	}

	newSub, arity, err := inlineAt(doc.Steps[i].Key, ref.Subtree, path[1:], diags)
	if err != nil {
		return nil, 0, err
	}
	doc.Steps[i].Value = &document.SubworkflowRef{Subtree: newSub, ParentArgs: ref.ParentArgs}
	return doc, arity, nil
}

// ApplyArgs substitutes deferred call-site arguments: for each formal
// parameter subtree declares, if parentArgs supplies a concrete value
// under in.<name>, every "~<name>" occurrence in subtree's step inputs
// is replaced by it. The inputs block is then removed. Calling
// ApplyArgs again on its own output is a no-op, since the inputs block
// it would validate against is already gone.
func ApplyArgs(subtree *document.Document, parentArgs map[string]any, subworkflowName string, diags *diag.Collector) (*document.Document, error) {
	inputsWorkflow := subtree.Inputs
	subtree.Inputs = nil
	if len(inputsWorkflow) == 0 {
		return subtree, nil
	}

	inArgs, _ := parentArgs["in"].(map[string]any)

	for argKey := range inputsWorkflow {
		if _, ok := inArgs[argKey]; !ok && diags != nil {
			diags.Warn(diag.UnresolvedFormalParam,
				"formal parameter %q of %q not supplied by the parent call site; edge inference is expected to recover it",
				argKey, subworkflowName)
		}
	}

	for argKey, argVal := range inArgs {
		if _, ok := inputsWorkflow[argKey]; !ok {
			return nil, &wicerr.UnknownFormalParam{Param: argKey, Subworkflow: subworkflowName}
		}
		marker := "~" + argKey
		for _, step := range subtree.Steps {
			var inStep map[string]any
			if ref := step.Subworkflow(); ref != nil {
				inStep, _ = ref.ParentArgs["in"].(map[string]any)
			} else {
				inStep, _ = step.Args()["in"].(map[string]any)
			}
			for inputKey, inputVal := range inStep {
				if s, ok := inputVal.(string); ok && s == marker {
					inStep[inputKey] = argVal
				}
			}
		}
	}

	return subtree, nil
}

// rewriteMetaAfterSplice re-keys doc's per-step meta entries after
// splicing subtree's arity steps in at position i: the spliced
// reference's own entry is dropped, subsequent siblings shift by
// arity-1, and the subtree's own entries are re-indexed by i and
// merged in with the parent's entries winning.
func rewriteMetaAfterSplice(doc *document.Document, i int, subtree *document.Document, arity int) {
	if doc.Meta == nil {
		return
	}

	shiftedParent := map[string]any{}
	for key, val := range doc.MetaSteps() {
		idx, k, err := ids.ParseMetaStepKey(key)
		if err != nil {
			continue
		}
		if idx == i {
			continue // the inlined reference itself; dropped.
		}
		newIdx := idx
		if idx > i {
			newIdx = idx + arity - 1
		}
		shiftedParent[ids.MetaStepKey(newIdx, k)] = val
	}

	reindexedSub := map[string]any{}
	for key, val := range subtree.MetaSteps() {
		idx, k, err := ids.ParseMetaStepKey(key)
		if err != nil {
			continue
		}
		reindexedSub[ids.MetaStepKey(i+idx, k)] = val
	}

	merged, err := merge.TypeSafeReplace("meta.steps", reindexedSub, shiftedParent)
	if err != nil {
		// Bookkeeping merge failures fall back to the parent's own
		// (already reindexed) directives rather than aborting a splice
		// that has otherwise already succeeded.
		merged = shiftedParent
	}
	doc.Meta["steps"] = merged
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
