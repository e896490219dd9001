// Package validate defines the schema-validator contract the resolver
// calls before expanding a document, plus a structural (non-schema)
// default implementation and a file sink for rejected-document
// diagnostics.
package validate

import (
	"fmt"
	"strings"

	"github.com/polusai/wic/document"
)

// Diagnostic collects the validation failures found in a single
// document. A nil *Diagnostic means validation passed.
type Diagnostic struct {
	Errors []string
}

func (d *Diagnostic) String() string {
	if d == nil || len(d.Errors) == 0 {
		return "no errors"
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  - %s",
		len(d.Errors), strings.Join(d.Errors, "\n  - "))
}

func (d *Diagnostic) add(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// Validator checks a document before resolution. A nil Diagnostic
// means the document passed.
type Validator interface {
	Validate(doc *document.Document) *Diagnostic
}

// Sink persists a rejected document's diagnostic to an external
// location, conventionally a validation_<stem>.txt sidecar file.
type Sink interface {
	Write(stem string, diag *Diagnostic) (path string, err error)
}
