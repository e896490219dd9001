package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/polusai/wic/document"
	"gopkg.in/yaml.v3"
)

// fileCatalogIndex is the on-disk shape of a FileCatalog's index file:
// a namespace -> stem -> path table plus a flat tool stem table.
// Grounded on config.FileSource's "read bytes, unmarshal YAML, wrap
// errors" shape.
type fileCatalogIndex struct {
	Namespaces map[string]map[string]string `yaml:"namespaces"`
	Tools      map[string]map[string]any    `yaml:"tools"`
}

// FileCatalog is a Catalog backed by a single YAML index file and the
// document files it points to.
type FileCatalog struct {
	index fileCatalogIndex
}

// NewFileCatalog loads the index at indexPath.
func NewFileCatalog(_ context.Context, indexPath string) (*FileCatalog, error) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("file catalog: read %s: %w", indexPath, err)
	}
	var idx fileCatalogIndex
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("file catalog: parse %s: %w", indexPath, err)
	}
	return &FileCatalog{index: idx}, nil
}

// LookupTool implements Catalog.
func (c *FileCatalog) LookupTool(stem string) (*ToolDescriptor, bool) {
	raw, ok := c.index.Tools[stem]
	if !ok {
		return nil, false
	}
	return &ToolDescriptor{Stem: stem, Raw: raw}, true
}

// HasNamespace reports whether namespace is known to the catalog,
// independent of any particular stem. Lets callers distinguish a
// missing namespace from a missing stem within a known namespace.
func (c *FileCatalog) HasNamespace(namespace string) bool {
	_, ok := c.index.Namespaces[namespace]
	return ok
}

// LookupDocumentPath implements Catalog.
func (c *FileCatalog) LookupDocumentPath(namespace, stem string) (string, bool) {
	ns, ok := c.index.Namespaces[namespace]
	if !ok {
		return "", false
	}
	path, ok := ns[stem]
	return path, ok
}

// LoadDocument implements Catalog. It rejects paths that are missing or
// whose suffix is not ".yml".
func (c *FileCatalog) LoadDocument(_ context.Context, path string) (*document.Document, error) {
	if filepath.Ext(path) != ".yml" {
		return nil, fmt.Errorf("file catalog: %s is not a .yml file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file catalog: %s does not exist: %w", path, err)
		}
		return nil, fmt.Errorf("file catalog: read %s: %w", path, err)
	}
	var doc document.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("file catalog: parse %s: %w", path, err)
	}
	return &doc, nil
}

// Stem returns the filename component of path without its extension,
// matching the Stem convention used throughout StepId.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
