// Package resolve loads a root document and recursively expands every
// referenced subworkflow document into a single in-memory AST, leaving
// a SubworkflowRef marker at each reference so parent call-site
// arguments stay separable from the subworkflow body.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/polusai/wic/catalog"
	"github.com/polusai/wic/document"
	"github.com/polusai/wic/ids"
	"github.com/polusai/wic/validate"
	"github.com/polusai/wic/wicerr"
)

// namespaceChecker is an optional capability a Catalog may implement so
// the resolver can distinguish NamespaceMiss from StemMiss. Catalogs
// that do not implement it always report StemMiss on a failed lookup.
type namespaceChecker interface {
	HasNamespace(namespace string) bool
}

// Options configures a Resolve call.
type Options struct {
	Validator      validate.Validator
	Sink           validate.Sink
	SkipValidation bool
	Logger         *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Resolve recursively expands every subworkflow reference in doc
// against cat, returning the fully resolved document. doc is mutated
// in place and also returned.
func Resolve(ctx context.Context, id document.StepId, doc *document.Document, cat catalog.Catalog, opts Options) (*document.Document, error) {
	if !opts.SkipValidation && opts.Validator != nil {
		if diag := opts.Validator.Validate(doc); diag != nil {
			diagPath := ""
			if opts.Sink != nil {
				if p, err := opts.Sink.Write(id.Stem, diag); err == nil {
					diagPath = p
				}
			}
			opts.logger().Error("validation failed", "stem", id.Stem, "diagnostic", diagPath)
			return nil, &wicerr.ValidationFailed{Stem: id.Stem, DiagnosticPath: diagPath}
		}
	}

	if doc.HasBackends() {
		resolved := make(map[string]*document.Document, len(doc.Backends))
		for backName, back := range doc.Backends {
			backId := document.StepId{Stem: backName, Namespace: doc.Namespace()}
			resolvedBack, err := Resolve(ctx, backId, back, cat, opts)
			if err != nil {
				return nil, fmt.Errorf("resolve backend %q: %w", backName, err)
			}
			resolved[backName] = resolvedBack
		}
		doc.Backends = resolved
		return doc, nil
	}

	metaSteps := doc.MetaSteps()

	for i := range doc.Steps {
		step := doc.Steps[i]
		stem := stepStem(step.Key)

		if _, ok := cat.LookupTool(stem); ok {
			continue
		}

		namespace := doc.Namespace()
		metaKey := ids.MetaStepKey(i, step.Key)
		if nested := document.StepEntryMeta(metaSteps[metaKey]); nested != nil {
			if ns, ok := nested["namespace"].(string); ok && ns != "" {
				namespace = ns
			}
		}

		path, ok := cat.LookupDocumentPath(namespace, stem)
		if !ok {
			if checker, isChecker := cat.(namespaceChecker); isChecker && !checker.HasNamespace(namespace) {
				opts.logger().Error("namespace miss", "namespace", namespace, "parent", id.Stem)
				return nil, &wicerr.NamespaceMiss{Namespace: namespace, Parent: id.Stem}
			}
			hint := ""
			if stem == "in" {
				hint = fmt.Sprintf("(Check that you have properly indented the `in` tag in %s)", id.Stem)
			}
			opts.logger().Error("stem miss", "stem", stem, "namespace", namespace, "parent", id.Stem)
			return nil, &wicerr.StemMiss{Stem: stem, Namespace: namespace, Parent: id.Stem, Hint: hint}
		}

		subDoc, err := cat.LoadDocument(ctx, path)
		if err != nil {
			return nil, &wicerr.DocumentNotFound{Path: path, Reason: err.Error()}
		}

		subId := document.StepId{Stem: step.Key, Namespace: namespace}
		resolvedSub, err := Resolve(ctx, subId, subDoc, cat, opts)
		if err != nil {
			return nil, fmt.Errorf("resolve step %q: %w", step.Key, err)
		}

		parentArgs, _ := step.Value.(map[string]any)
		if parentArgs == nil {
			parentArgs = map[string]any{}
		}

		doc.Steps[i].Value = &document.SubworkflowRef{Subtree: resolvedSub, ParentArgs: parentArgs}
	}

	return doc, nil
}

// stepStem strips a trailing extension from a step key; keys without a
// "." are returned unchanged.
func stepStem(stepKey string) string {
	ext := filepath.Ext(stepKey)
	if ext == "" {
		return stepKey
	}
	return strings.TrimSuffix(stepKey, ext)
}
