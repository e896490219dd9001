package validate

import (
	"fmt"
	"os"
)

// FileSink writes a rejected document's diagnostic to
// validation_<stem>.txt in Dir.
type FileSink struct {
	Dir string
}

// Write implements Sink.
func (s FileSink) Write(stem string, diag *Diagnostic) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	path := fmt.Sprintf("%s/validation_%s.txt", dir, stem)
	if err := os.WriteFile(path, []byte(diag.String()+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("validate: write diagnostic for %q: %w", stem, err)
	}
	return path, nil
}
