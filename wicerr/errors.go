// Package wicerr defines the compiler's fatal error kinds as concrete
// Go types with named fields, so callers can errors.As on the specific
// failure they care about.
package wicerr

import "fmt"

// ValidationFailed is returned when the schema validator rejects a
// document. The diagnostic itself is written by an external sink; this
// error only carries enough to locate it.
type ValidationFailed struct {
	Stem           string
	DiagnosticPath string
}

func (e *ValidationFailed) Error() string {
	return fmt.Sprintf("validation failed for %q: see %s for details", e.Stem, e.DiagnosticPath)
}

// NamespaceMiss is returned when a step references a namespace absent
// from the catalog.
type NamespaceMiss struct {
	Namespace string
	Parent    string
}

func (e *NamespaceMiss) Error() string {
	return fmt.Sprintf("namespace %q not found in catalog (referenced from %q)", e.Namespace, e.Parent)
}

// StemMiss is returned when a stem is absent in its namespace. Hint is
// populated with an indentation-mistake suggestion when Stem == "in".
type StemMiss struct {
	Stem      string
	Namespace string
	Parent    string
	Hint      string
}

func (e *StemMiss) Error() string {
	msg := fmt.Sprintf("%q not found in namespace %q when attempting to resolve %q", e.Stem, e.Namespace, e.Parent)
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

// DocumentNotFound is returned when a catalog-listed document path does
// not exist or has the wrong suffix.
type DocumentNotFound struct {
	Path   string
	Reason string
}

func (e *DocumentNotFound) Error() string {
	return fmt.Sprintf("document %q does not exist or is not a .yml file: %s", e.Path, e.Reason)
}

// MergeTypeMismatch is returned when a deep merge encounters two values
// of different types at the same key, including a mapping on one side
// and a non-mapping on the other.
type MergeTypeMismatch struct {
	Path     string
	BaseType string
	OverType string
}

func (e *MergeTypeMismatch) Error() string {
	return fmt.Sprintf("merge type mismatch at %q: base is %s, override is %s", e.Path, e.BaseType, e.OverType)
}

// MetaOnTool is returned when compiler directives are found inside a
// tool step's arguments after the meta sub-key should have been stripped.
type MetaOnTool struct {
	StepName string
}

func (e *MetaOnTool) Error() string {
	return fmt.Sprintf("step %q: a wic meta block was found inside a tool step's arguments", e.StepName)
}

// UnknownFormalParam is returned when a parent supplies in.<x> to a
// subworkflow that does not declare <x> as a formal input.
type UnknownFormalParam struct {
	Param       string
	Subworkflow string
}

func (e *UnknownFormalParam) Error() string {
	return fmt.Sprintf("parent supplied unknown formal parameter %q to subworkflow %q", e.Param, e.Subworkflow)
}
