// Package merge implements override propagation: a single deep,
// type-safe, parent-wins merge law applied to a document's own meta
// block, to each subworkflow body, and to each tool call site's
// arguments.
package merge

import (
	"fmt"
	"log/slog"

	"github.com/polusai/wic/diag"
	"github.com/polusai/wic/document"
	"github.com/polusai/wic/ids"
	"github.com/polusai/wic/wicerr"
)

// TypeSafeReplace deep-merges child under parent with parent-wins
// semantics: where both sides hold a mapping, it recurses; where both
// sides hold the same primitive type, parent wins; where the types
// differ, it fails with MergeTypeMismatch.
func TypeSafeReplace(path string, child, parent map[string]any) (map[string]any, error) {
	result := document.CloneMap(child)
	if result == nil {
		result = map[string]any{}
	}
	for k, pv := range parent {
		keyPath := path + "." + k
		cv, exists := result[k]
		if !exists {
			result[k] = document.CloneValue(pv)
			continue
		}
		merged, err := mergeValue(keyPath, cv, pv)
		if err != nil {
			return nil, err
		}
		result[k] = merged
	}
	return result, nil
}

func mergeValue(path string, childVal, parentVal any) (any, error) {
	childMap, childIsMap := childVal.(map[string]any)
	parentMap, parentIsMap := parentVal.(map[string]any)
	if childIsMap && parentIsMap {
		return TypeSafeReplace(path, childMap, parentMap)
	}
	if childIsMap != parentIsMap {
		return nil, &wicerr.MergeTypeMismatch{Path: path, BaseType: typeName(childVal), OverType: typeName(parentVal)}
	}
	if !sameKind(childVal, parentVal) {
		return nil, &wicerr.MergeTypeMismatch{Path: path, BaseType: typeName(childVal), OverType: typeName(parentVal)}
	}
	return document.CloneValue(parentVal), nil
}

func sameKind(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	_, aSlice := a.([]any)
	_, bSlice := b.([]any)
	if aSlice || bSlice {
		return aSlice == bSlice
	}
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

// Options configures a MergeOverrides call.
type Options struct {
	Diagnostics *diag.Collector
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// MergeOverrides walks a resolved document once, propagating
// parentMeta into the document's own meta, into each subworkflow's
// body, and into each tool call site's arguments. doc is mutated in
// place and also returned.
func MergeOverrides(doc *document.Document, parentMeta map[string]any, opts Options) (*document.Document, error) {
	selfMeta := doc.Meta
	merged, err := TypeSafeReplace("meta", selfMeta, parentMeta)
	if err != nil {
		return nil, fmt.Errorf("merge: document meta: %w", err)
	}
	doc.Meta = merged

	if doc.HasBackends() {
		// Preserve the source's behavior of re-entering each backend with
		// the ORIGINAL parentMeta rather than the freshly merged meta
		// above (see DESIGN.md, Open Question).
		for name, back := range doc.Backends {
			if _, err := MergeOverrides(back, parentMeta, opts); err != nil {
				return nil, fmt.Errorf("merge: backend %q: %w", name, err)
			}
		}
		return doc, nil
	}

	metaSteps := doc.MetaSteps()

	for i := range doc.Steps {
		step := doc.Steps[i]
		metaKey := ids.MetaStepKey(i, step.Key)
		stepMeta := metaSteps[metaKey]

		if step.IsSubworkflow() {
			ref := step.Subworkflow()
			nested := document.StepEntryMeta(stepMeta)
			if _, err := MergeOverrides(ref.Subtree, nested, opts); err != nil {
				return nil, fmt.Errorf("merge: step %q: %w", step.Key, err)
			}
			continue
		}

		overrides, _ := stepMeta.(map[string]any)
		if overrides != nil {
			if _, hasMeta := overrides["meta"]; hasMeta {
				overrides = document.CloneMap(overrides)
				delete(overrides, "meta")
			}
		}

		selfArgs := step.Args()
		merged, err := TypeSafeReplace(fmt.Sprintf("steps[%d]", i), selfArgs, overrides)
		if err != nil {
			return nil, fmt.Errorf("merge: step %q args: %w", step.Key, err)
		}
		if _, stillHasMeta := merged["meta"]; stillHasMeta {
			opts.logger().Error("meta directives found on a tool step", "step", step.Key)
			return nil, &wicerr.MetaOnTool{StepName: step.Key}
		}
		doc.Steps[i].Value = merged
	}

	return doc, nil
}
