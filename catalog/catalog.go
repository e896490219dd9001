// Package catalog defines the read-only (namespace, stem) lookup
// contract the resolver consumes. The compiler core never performs
// network or disk I/O itself; a file-backed implementation is included
// as a concrete external collaborator.
package catalog

import (
	"context"

	"github.com/polusai/wic/document"
)

// ToolDescriptor is an opaque handle on a catalog-listed tool. The core
// never inspects its contents; it only checks for presence.
type ToolDescriptor struct {
	Stem string
	Raw  map[string]any
}

// Catalog is the read-only lookup contract the Resolver is given.
type Catalog interface {
	// LookupTool reports whether stem names a tool in the catalog.
	LookupTool(stem string) (*ToolDescriptor, bool)
	// LookupDocumentPath reports the on-disk path of the subworkflow
	// document named stem within namespace.
	LookupDocumentPath(namespace, stem string) (string, bool)
	// LoadDocument loads and parses the document at path.
	LoadDocument(ctx context.Context, path string) (*document.Document, error)
}
