// Package llm contains the text-generation client for the local model
// server and the decoding layer that normalizes its loosely specified
// responses into plain text.
package llm

import (
	"context"
	"fmt"
)

// GenerationRequest carries a single prompt to the completion endpoint.
// A zero MaxTokens falls back to the client's configured default.
type GenerationRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// GenerationResult holds the decoded text of a completion response.
// Text may be empty but is never absent: decoding always resolves to
// some string, degrading to the raw response body if nothing parses.
type GenerationResult struct {
	Text string
}

// Generator is the contract between the review pipeline and the model
// server. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// TransportError is the only error kind the client produces: the HTTP
// call could not be completed (connection failure, timeout, or a non-2xx
// status). Malformed payloads never fail; decoding degrades to a
// raw-text result instead.
type TransportError struct {
	URL    string
	Status int   // non-zero when the server answered with a non-2xx code
	Err    error // non-nil for connection-level failures
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("model request to %s failed with status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }
