package generate

import (
	"errors"
	"fmt"
)

// ErrNoFunctions is wrapped by InputError when the source defines no
// top-level functions.
var ErrNoFunctions = errors.New("no top-level functions found")

// InputError reports a source file that cannot be used: unreadable, or
// nothing in it to test.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// WriteError reports that the generated file could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
