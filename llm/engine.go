// Engine interface - the abstract interface for reasoning engines.
// Each implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error handling

package llm

import (
	"context"
	"fmt"
)

// Engine defines the abstract interface for reasoning-engine providers.
// Implementations convert between the Message/ContentBlock model and the
// provider's wire format.
type Engine interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Complete sends one completion request. It returns either content
	// or a CommunicationError, never partial content.
	Complete(ctx context.Context, req Request) (Response, error)
}

// CommunicationError indicates the engine was unreachable or rejected the
// request. It is fatal for the current turn: there is no fallback
// reasoning path.
type CommunicationError struct {
	Provider string
	Err      error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("%s engine request failed: %v", e.Provider, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}
