// Package compiler orchestrates the pipeline: resolve, merge
// overrides, project the forest; structural inlining and compiled-graph
// inlining are exposed as separate follow-on steps a caller opts into.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/polusai/wic/catalog"
	"github.com/polusai/wic/diag"
	"github.com/polusai/wic/document"
	"github.com/polusai/wic/forest"
	"github.com/polusai/wic/graph"
	"github.com/polusai/wic/inline"
	"github.com/polusai/wic/merge"
	"github.com/polusai/wic/resolve"
	"github.com/polusai/wic/validate"
)

// Options configures a Compile call. A fresh uuid.UUID run ID is
// generated per call and attached to every log record so concurrent
// compiles in the same process can be told apart in shared logs.
type Options struct {
	Validator validate.Validator
	Sink      validate.Sink
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Compile loads root from cat, resolves every subworkflow reference
// into a single AST, merges override directives, and projects the
// result into a Forest. It returns the Forest alongside a
// diag.Collector that accumulates any non-fatal warnings raised during
// the run.
func Compile(ctx context.Context, root document.StepId, cat catalog.Catalog, opts Options) (*forest.Forest, *diag.Collector, error) {
	runID := uuid.New()
	logger := opts.logger().With("run_id", runID.String())
	diags := diag.NewCollector(logger)

	path, ok := cat.LookupDocumentPath(root.Namespace, root.Stem)
	if !ok {
		logger.Error("root document not found", "stem", root.Stem, "namespace", root.Namespace)
		return nil, diags, fmt.Errorf("compiler: root %s not found in catalog", root)
	}

	doc, err := cat.LoadDocument(ctx, path)
	if err != nil {
		logger.Error("failed to load root document", "path", path, "error", err)
		return nil, diags, fmt.Errorf("compiler: load root %s: %w", root, err)
	}

	resolved, err := resolve.Resolve(ctx, root, doc, cat, resolve.Options{
		Validator: opts.Validator,
		Sink:      opts.Sink,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("resolve failed", "stem", root.Stem, "error", err)
		return nil, diags, fmt.Errorf("compiler: resolve %s: %w", root, err)
	}

	merged, err := merge.MergeOverrides(resolved, nil, merge.Options{Diagnostics: diags, Logger: logger})
	if err != nil {
		logger.Error("merge failed", "stem", root.Stem, "error", err)
		return nil, diags, fmt.Errorf("compiler: merge %s: %w", root, err)
	}

	f := forest.Project(root, merged)
	logger.Info("compiled", "stem", root.Stem, "namespace", root.Namespace)
	return f, diags, nil
}

// InlineAll repeatedly discovers and splices every inline-eligible
// subworkflow in doc, until none remain. rootStem names doc
// itself, as the catalog stem under which it was loaded.
func InlineAll(rootStem string, doc *document.Document, diags *diag.Collector) (*document.Document, error) {
	const maxSplices = 100000 // defensive bound; the AST is finite.
	for i := 0; i < maxSplices; i++ {
		paths := inline.InlineablePaths(rootStem, doc)
		if len(paths) == 0 {
			return doc, nil
		}
		next, _, err := inline.InlineAt(rootStem, doc, paths[0], diags)
		if err != nil {
			return nil, fmt.Errorf("compiler: inline %v: %w", paths[0], err)
		}
		doc = next
	}
	return nil, fmt.Errorf("compiler: exceeded %d structural inline splices on %q; suspect a reference cycle", maxSplices, rootStem)
}

// InlineGraph runs the compiled-graph inliner over tree,
// recording any PartialInline or OutputAllDropped warnings into diags.
func InlineGraph(tree *graph.RoseTree, diags *diag.Collector) *graph.RoseTree {
	return graph.InlineGraph(tree, diags)
}
