// Package document implements the Document/StepId/SubworkflowRef data
// model: an ordered sequence of steps, each either a tool call, an
// empty call, or (after resolution) a subworkflow reference.
package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StepId identifies a document or tool by its catalog stem within a
// namespace. Two StepIds are equal iff both components are equal.
type StepId struct {
	Stem      string
	Namespace string
}

func (id StepId) String() string {
	return fmt.Sprintf("%s@%s", id.Stem, id.Namespace)
}

// SubworkflowRef is the resolved-reference marker: the value a step
// entry holds once its key has been resolved to a subworkflow.
// ParentArgs preserves the original call-site argument block so it can
// be applied during structural inlining, after compilation.
type SubworkflowRef struct {
	Subtree    *Document
	ParentArgs map[string]any
}

// Step is a single entry in a Document's step sequence. Value is one of:
// nil (empty call), map[string]any (tool call-site arguments), or
// *SubworkflowRef (a resolved subworkflow reference).
type Step struct {
	Key   string
	Value any
}

// IsSubworkflow reports whether this step has been resolved to a
// subworkflow reference.
func (s Step) IsSubworkflow() bool {
	_, ok := s.Value.(*SubworkflowRef)
	return ok
}

// Args returns this step's value as a tool argument mapping, or nil if
// the step is empty or holds a subworkflow reference.
func (s Step) Args() map[string]any {
	if s.Value == nil {
		return nil
	}
	m, _ := s.Value.(map[string]any)
	return m
}

// Subworkflow returns this step's subworkflow reference, or nil if the
// step does not hold one.
func (s Step) Subworkflow() *SubworkflowRef {
	ref, _ := s.Value.(*SubworkflowRef)
	return ref
}

// Document is a parsed workflow description: an ordered
// Steps sequence (absent for backend-bearing documents), an optional
// Inputs schema mapping, a Meta directive block, and (mutually exclusive
// with Steps) a set of named Backends.
type Document struct {
	Steps    []Step
	Inputs   map[string]any
	Meta     map[string]any
	Backends map[string]*Document
}

// HasBackends reports whether this document represents a backend choice
// rather than a step sequence.
func (d *Document) HasBackends() bool {
	return d.Backends != nil
}

// Namespace returns meta.namespace, defaulting to "global".
func (d *Document) Namespace() string {
	return metaNamespace(d.Meta)
}

func metaNamespace(meta map[string]any) string {
	if meta == nil {
		return "global"
	}
	if ns, ok := meta["namespace"].(string); ok && ns != "" {
		return ns
	}
	return "global"
}

// Inlineable returns meta.inlineable, defaulting to true.
func (d *Document) Inlineable() bool {
	if d.Meta == nil {
		return true
	}
	v, ok := d.Meta["inlineable"]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	if !ok {
		return true
	}
	return b
}

// MetaSteps returns meta.steps, the per-step directive map keyed by the
// literal "(i, step-key)" string, or an empty map if absent.
func (d *Document) MetaSteps() map[string]any {
	return metaSteps(d.Meta)
}

func metaSteps(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	m, ok := meta["steps"].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// StepEntryMeta returns the nested "meta" sub-key of a per-step
// directive entry (the compiler directives for a subworkflow step), or
// nil if absent.
func StepEntryMeta(entry any) map[string]any {
	m, ok := entry.(map[string]any)
	if !ok {
		return nil
	}
	nested, ok := m["meta"].(map[string]any)
	if !ok {
		return nil
	}
	return nested
}

// UnmarshalYAML decodes a Document from its on-disk YAML shape: a
// "steps" sequence of single-key mappings (order preserved), an
// optional "inputs" mapping, and an optional "meta" mapping whose
// "backends" sub-key (if present) is lifted into the Backends field.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromRaw(raw)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// FromRaw builds a Document from a generically-decoded YAML mapping,
// recursively decoding backend bodies into Documents of their own.
func FromRaw(raw map[string]any) (*Document, error) {
	doc := &Document{}

	if rawSteps, ok := raw["steps"]; ok && rawSteps != nil {
		seq, ok := rawSteps.([]any)
		if !ok {
			return nil, fmt.Errorf("document: steps must be a sequence, got %T", rawSteps)
		}
		for idx, entry := range seq {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("document: step %d must be a single-key mapping, got %T", idx, entry)
			}
			if len(m) != 1 {
				return nil, fmt.Errorf("document: step %d must have exactly one key, got %d", idx, len(m))
			}
			for k, v := range m {
				doc.Steps = append(doc.Steps, Step{Key: k, Value: v})
			}
		}
	}

	if rawInputs, ok := raw["inputs"]; ok && rawInputs != nil {
		m, ok := rawInputs.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("document: inputs must be a mapping, got %T", rawInputs)
		}
		doc.Inputs = m
	}

	if rawMeta, ok := raw["meta"]; ok && rawMeta != nil {
		meta, ok := rawMeta.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("document: meta must be a mapping, got %T", rawMeta)
		}
		if rawBackends, ok := meta["backends"]; ok && rawBackends != nil {
			backendsRaw, ok := rawBackends.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("document: meta.backends must be a mapping, got %T", rawBackends)
			}
			backends := make(map[string]*Document, len(backendsRaw))
			for name, bodyRaw := range backendsRaw {
				bodyMap, ok := bodyRaw.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("document: backend %q must be a mapping, got %T", name, bodyRaw)
				}
				sub, err := FromRaw(bodyMap)
				if err != nil {
					return nil, fmt.Errorf("document: backend %q: %w", name, err)
				}
				backends[name] = sub
			}
			doc.Backends = backends
			delete(meta, "backends")
		}
		doc.Meta = meta
	}

	return doc, nil
}

// Clone returns a deep copy of the document, so that transforms which
// must branch from a shared baseline (notably structural inlining) can
// mutate their own copy without aliasing the original.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{
		Inputs: CloneMap(d.Inputs),
		Meta:   CloneMap(d.Meta),
	}
	if d.Steps != nil {
		clone.Steps = make([]Step, len(d.Steps))
		for i, s := range d.Steps {
			clone.Steps[i] = Step{Key: s.Key, Value: CloneValue(s.Value)}
		}
	}
	if d.Backends != nil {
		clone.Backends = make(map[string]*Document, len(d.Backends))
		for k, v := range d.Backends {
			clone.Backends[k] = v.Clone()
		}
	}
	return clone
}

// CloneValue deep-copies an arbitrary decoded-YAML value: maps, slices,
// *SubworkflowRef, *Document, or a passthrough primitive.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case *SubworkflowRef:
		if t == nil {
			return t
		}
		return &SubworkflowRef{
			Subtree:    t.Subtree.Clone(),
			ParentArgs: CloneMap(t.ParentArgs),
		}
	case *Document:
		return t.Clone()
	default:
		return v
	}
}

// CloneMap deep-copies a map[string]any, returning nil for a nil input.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}
