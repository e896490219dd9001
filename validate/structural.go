package validate

import (
	"github.com/polusai/wic/document"
	"github.com/polusai/wic/ids"
)

// StructuralValidator checks a Document's shape invariants without a
// full JSON-Schema engine: backends and steps are mutually exclusive,
// step keys are non-empty, and per-step meta keys parse.
type StructuralValidator struct{}

// Validate implements Validator.
func (StructuralValidator) Validate(doc *document.Document) *Diagnostic {
	diag := &Diagnostic{}
	checkDocument(doc, diag)
	if len(diag.Errors) == 0 {
		return nil
	}
	return diag
}

func checkDocument(doc *document.Document, diag *Diagnostic) {
	if doc == nil {
		diag.add("document is nil")
		return
	}

	if doc.HasBackends() {
		if len(doc.Steps) != 0 {
			diag.add("a document with backends must not also declare steps")
		}
		for name, back := range doc.Backends {
			if back == nil {
				diag.add("backend %q is nil", name)
				continue
			}
			checkDocument(back, diag)
		}
		return
	}

	seen := map[string]bool{}
	for i, step := range doc.Steps {
		if step.Key == "" {
			diag.add("step %d has an empty key", i)
		}
		seen[step.Key] = true
	}

	for key, entry := range doc.MetaSteps() {
		if _, _, err := ids.ParseMetaStepKey(key); err != nil {
			diag.add("meta.steps has malformed key %q: %v", key, err)
			continue
		}
		if nested := document.StepEntryMeta(entry); nested != nil {
			if v, ok := nested["inlineable"]; ok {
				if _, ok := v.(bool); !ok {
					diag.add("meta.steps[%q].meta.inlineable must be a boolean", key)
				}
			}
		}
	}
}
