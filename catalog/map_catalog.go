package catalog

import (
	"context"
	"fmt"

	"github.com/polusai/wic/document"
)

// MapCatalog is an in-memory Catalog, useful for tests and for callers
// that assemble their document set programmatically instead of from
// disk.
type MapCatalog struct {
	Tools      map[string]*ToolDescriptor
	Namespaces map[string]map[string]*document.Document
}

// NewMapCatalog returns an empty MapCatalog.
func NewMapCatalog() *MapCatalog {
	return &MapCatalog{
		Tools:      map[string]*ToolDescriptor{},
		Namespaces: map[string]map[string]*document.Document{},
	}
}

// AddTool registers a tool stem.
func (c *MapCatalog) AddTool(stem string) *MapCatalog {
	c.Tools[stem] = &ToolDescriptor{Stem: stem}
	return c
}

// AddDocument registers a subworkflow document under namespace/stem.
func (c *MapCatalog) AddDocument(namespace, stem string, doc *document.Document) *MapCatalog {
	ns, ok := c.Namespaces[namespace]
	if !ok {
		ns = map[string]*document.Document{}
		c.Namespaces[namespace] = ns
	}
	ns[stem] = doc
	return c
}

// LookupTool implements Catalog.
func (c *MapCatalog) LookupTool(stem string) (*ToolDescriptor, bool) {
	t, ok := c.Tools[stem]
	return t, ok
}

// HasNamespace implements the optional namespace-existence capability.
func (c *MapCatalog) HasNamespace(namespace string) bool {
	_, ok := c.Namespaces[namespace]
	return ok
}

// LookupDocumentPath implements Catalog. For MapCatalog the "path" is
// just "namespace/stem"; LoadDocument parses it back out.
func (c *MapCatalog) LookupDocumentPath(namespace, stem string) (string, bool) {
	ns, ok := c.Namespaces[namespace]
	if !ok {
		return "", false
	}
	if _, ok := ns[stem]; !ok {
		return "", false
	}
	return namespace + "/" + stem, true
}

// LoadDocument implements Catalog, returning a Clone of the registered
// document so callers can mutate their own copy freely.
func (c *MapCatalog) LoadDocument(_ context.Context, path string) (*document.Document, error) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			namespace, stem := path[:i], path[i+1:]
			if ns, ok := c.Namespaces[namespace]; ok {
				if doc, ok := ns[stem]; ok {
					return doc.Clone(), nil
				}
			}
			break
		}
	}
	return nil, fmt.Errorf("map catalog: no document at %q", path)
}
