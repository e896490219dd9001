// Package diag implements the non-fatal diagnostic channel that
// warnings (as opposed to aborting errors, see wicerr) accumulate into
// during a compile.
package diag

import (
	"fmt"
	"log/slog"
)

// Kind identifies the category of a Warning.
type Kind string

const (
	// PartialInline fires when the count of inlined compiled subgraphs
	// did not match the number of child rose trees.
	PartialInline Kind = "PartialInline"
	// UnresolvedFormalParam fires when a subworkflow declares a formal
	// input that the parent's call-site arguments never supplied.
	UnresolvedFormalParam Kind = "UnresolvedFormalParam"
	// OutputAllDropped fires when a compiled-graph output is dropped
	// because its name contains the literal substring "output_all".
	OutputAllDropped Kind = "OutputAllDropped"
)

// Warning is a single non-fatal diagnostic.
type Warning struct {
	Kind    Kind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
}

// Collector accumulates warnings raised during a compile. It
// deliberately does not implement error: a Collector with warnings
// never aborts a compilation.
type Collector struct {
	logger   *slog.Logger
	warnings []Warning
}

// NewCollector creates a Collector that also logs each warning at
// slog.LevelWarn as it is recorded. A nil logger falls back to
// slog.Default().
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Warn records a warning and logs it.
func (c *Collector) Warn(kind Kind, format string, args ...any) {
	w := Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
	c.warnings = append(c.warnings, w)
	c.logger.Warn(w.Message, "kind", string(kind))
}

// Warnings returns the warnings recorded so far, in recording order.
func (c *Collector) Warnings() []Warning {
	return c.warnings
}

// HasKind reports whether any recorded warning has the given kind.
func (c *Collector) HasKind(kind Kind) bool {
	for _, w := range c.warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
