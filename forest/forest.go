// Package forest projects a resolved, merged document into a pure,
// read-only recursive view used by downstream compilation phases as an
// iteration scaffold.
package forest

import (
	"github.com/polusai/wic/document"
)

// Child pairs a subworkflow's StepId with its projected Forest.
type Child struct {
	Id     document.StepId
	Forest *Forest
}

// Forest is a (document, children) pair: children mirror the
// document's subworkflow references in order, or one per backend for a
// backend-bearing document.
type Forest struct {
	Document *document.Document
	Children []Child
}

// Project derives a Forest from a resolved, merged document. It does
// not copy; the returned Forest is a view valid until doc is next
// mutated.
func Project(id document.StepId, doc *document.Document) *Forest {
	if doc.HasBackends() {
		children := make([]Child, 0, len(doc.Backends))
		for name, back := range doc.Backends {
			backId := document.StepId{Stem: name, Namespace: id.Namespace}
			children = append(children, Child{Id: backId, Forest: Project(backId, back)})
		}
		return &Forest{Document: doc, Children: children}
	}

	children := make([]Child, 0)
	for _, step := range doc.Steps {
		ref := step.Subworkflow()
		if ref == nil {
			continue
		}
		childId := document.StepId{Stem: step.Key, Namespace: id.Namespace}
		children = append(children, Child{Id: childId, Forest: Project(childId, ref.Subtree)})
	}
	return &Forest{Document: doc, Children: children}
}

// Walk visits f and every descendant forest in pre-order.
func Walk(f *Forest, visit func(*Forest)) {
	if f == nil {
		return
	}
	visit(f)
	for _, c := range f.Children {
		Walk(c.Forest, visit)
	}
}
