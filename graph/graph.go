// Package graph implements the compiled-graph data model (CompiledGraph,
// RoseTree) and the compiled-graph inliner that flattens a rose tree of
// compiled subgraphs into a single graph.
package graph

import (
	"fmt"

	"github.com/polusai/wic/document"
	"gopkg.in/yaml.v3"
)

// CompiledGraph is a compiled workflow graph: a CWL-shaped document with
// a steps mapping and an outputs mapping singled out for splicing, and
// every other top-level key (cwlVersion, class, inputs, requirements,
// ...) preserved opaquely in Extra.
type CompiledGraph struct {
	Steps   map[string]any
	Outputs map[string]any
	Extra   map[string]any
}

// UnmarshalYAML decodes a CompiledGraph from its on-disk shape: a plain
// CWL workflow mapping, with "steps" and "outputs" lifted into their
// own fields.
func (g *CompiledGraph) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := CompiledGraphFromRaw(raw)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}

// CompiledGraphFromRaw builds a CompiledGraph from a generically-decoded
// YAML mapping.
func CompiledGraphFromRaw(raw map[string]any) (*CompiledGraph, error) {
	g := &CompiledGraph{Extra: map[string]any{}}
	for k, v := range raw {
		switch k {
		case "steps":
			m, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("graph: steps must be a mapping, got %T", v)
			}
			g.Steps = m
		case "outputs":
			m, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("graph: outputs must be a mapping, got %T", v)
			}
			g.Outputs = m
		default:
			g.Extra[k] = v
		}
	}
	return g, nil
}

// MarshalYAML encodes a CompiledGraph back to its plain CWL mapping
// shape, the inverse of UnmarshalYAML.
func (g *CompiledGraph) MarshalYAML() (any, error) {
	out := document.CloneMap(g.Extra)
	if out == nil {
		out = map[string]any{}
	}
	if g.Steps != nil {
		out["steps"] = g.Steps
	}
	if g.Outputs != nil {
		out["outputs"] = g.Outputs
	}
	return out, nil
}

// Clone returns a deep copy of the graph.
func (g *CompiledGraph) Clone() *CompiledGraph {
	if g == nil {
		return nil
	}
	return &CompiledGraph{
		Steps:   document.CloneMap(g.Steps),
		Outputs: document.CloneMap(g.Outputs),
		Extra:   document.CloneMap(g.Extra),
	}
}

// RoseTree pairs a CompiledGraph with the compiled subgraphs of its
// subworkflow steps, mirroring forest.Forest's shape one compilation
// phase later. Namespace is the step key under which this node was
// invoked by its parent (empty for the root).
type RoseTree struct {
	Namespace string
	Graph     *CompiledGraph
	Children  []*RoseTree
}

type roseTreeYAML struct {
	Namespace string          `yaml:"namespace"`
	Graph     *CompiledGraph  `yaml:"graph"`
	Children  []*roseTreeYAML `yaml:"children"`
}

// UnmarshalYAML decodes a RoseTree fixture: a {namespace, graph,
// children} record, recursively.
func (t *RoseTree) UnmarshalYAML(node *yaml.Node) error {
	var raw roseTreeYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*t = *roseTreeFromYAML(&raw)
	return nil
}

func roseTreeFromYAML(raw *roseTreeYAML) *RoseTree {
	if raw == nil {
		return nil
	}
	children := make([]*RoseTree, len(raw.Children))
	for i, c := range raw.Children {
		children[i] = roseTreeFromYAML(c)
	}
	return &RoseTree{Namespace: raw.Namespace, Graph: raw.Graph, Children: children}
}

// Walk visits t and every descendant rose tree in pre-order.
func Walk(t *RoseTree, visit func(*RoseTree)) {
	if t == nil {
		return
	}
	visit(t)
	for _, c := range t.Children {
		Walk(c, visit)
	}
}
