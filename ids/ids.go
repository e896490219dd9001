// Package ids implements canonical construction and parsing of step
// identifiers and cross-step reference flattening. No other package may
// format or parse these strings inline; they all go through here.
package ids

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var stepNamePattern = regexp.MustCompile(`^(.*)__step-([0-9]+)_(.*)$`)

var metaStepKeyPattern = regexp.MustCompile(`^\(([0-9]+), (.*)\)$`)

// StepName builds the canonical globally-unique step identifier
// "{parentStem}__step-{index+1}_{stepKey}". index is 0-based.
func StepName(parentStem string, index int, stepKey string) string {
	return fmt.Sprintf("%s__step-%d_%s", parentStem, index+1, stepKey)
}

// ParseStepName is the total inverse of StepName. The returned index is
// 0-based.
func ParseStepName(s string) (parentStem string, index int, stepKey string, err error) {
	m := stepNamePattern.FindStringSubmatch(s)
	if m == nil {
		return "", 0, "", fmt.Errorf("ids: %q is not a valid step name", s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, "", fmt.Errorf("ids: %q has a malformed step index: %w", s, err)
	}
	return m[1], n - 1, m[3], nil
}

// MetaStepKey builds the literal key used inside meta.steps:
// "(index+1, stepKey)", with a single space after the comma. index is
// 0-based.
func MetaStepKey(index int, stepKey string) string {
	return fmt.Sprintf("(%d, %s)", index+1, stepKey)
}

// ParseMetaStepKey is the inverse of MetaStepKey. The returned index is
// 0-based.
func ParseMetaStepKey(key string) (index int, stepKey string, err error) {
	m := metaStepKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return 0, "", fmt.Errorf("ids: %q is not a valid meta step key", key)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("ids: %q has a malformed index: %w", key, err)
	}
	return n - 1, m[2], nil
}

// MoveSlashLast flattens a multi-level cross-step reference into a
// single-level namespace while preserving the final step/port boundary:
// "a/b/c/port" becomes "a___b___c/port". Idempotent on already-flattened
// strings, and a no-op on strings containing no "/".
func MoveSlashLast(s string) string {
	if !strings.Contains(s, "/") {
		return s
	}
	flattened := strings.ReplaceAll(s, "/", "___")
	parts := strings.Split(flattened, "___")
	return strings.Join(parts[:len(parts)-1], "___") + "/" + parts[len(parts)-1]
}
