// Package llm talks to the remote model that writes test files.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the interface for remote generators.
type Client interface {
	// Complete sends prompt as the user message and returns the raw text of
	// the first completion.
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNoChoices is wrapped by RemoteCallError when the response carries no
// completion.
var ErrNoChoices = errors.New("response has no choices")

// RemoteCallError is returned for any failed remote attempt: transport
// failure, non-success status, or a response missing the expected fields.
// StatusCode is zero when no HTTP response was received.
type RemoteCallError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm: %s failed: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// IsRemoteCallError reports whether err is or wraps a RemoteCallError.
func IsRemoteCallError(err error) bool {
	var rce *RemoteCallError
	return errors.As(err, &rce)
}
