// Package testfile owns the pytest output contract: the marker line every
// generated file starts with, the sanitizer applied to model output, the
// offline fallback templates, and the on-disk layout under tests/.
package testfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Marker is the required first line of every generated test file.
const Marker = "import pytest"

// DefaultDir is where generated files are written, relative to the working
// directory.
const DefaultDir = "tests"

// File is a generated test file ready to be written.
type File struct {
	Path    string
	Content string
}

// Name returns the file name for a subject module, e.g. "test_math_funcs.py".
func Name(module string) string {
	return "test_" + module + ".py"
}

// Path joins dir and the file name for module.
func Path(dir, module string) string {
	return filepath.Join(dir, Name(module))
}

// Sanitize drops anything the model wrote before the first marker line.
// Text without the marker is returned unchanged.
func Sanitize(text string) string {
	if idx := strings.Index(text, Marker); idx != -1 {
		return text[idx:]
	}
	return text
}

// HasMarker reports whether content begins with the marker line.
func HasMarker(content string) bool {
	first, _, _ := strings.Cut(content, "\n")
	return strings.TrimRight(first, "\r") == Marker
}

// Write creates the parent directory if needed and writes the content in a
// single call.
func Write(f File) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("testfile: create output dir: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(f.Content), 0o644); err != nil {
		return fmt.Errorf("testfile: write %s: %w", f.Path, err)
	}
	return nil
}
