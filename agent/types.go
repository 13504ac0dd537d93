// Package agent provides the turn orchestrator.
//
// Contains the caller-facing result types for one turn.
package agent

import (
	"encoding/json"
	"fmt"
)

// TurnType indicates how a turn ended.
type TurnType int

const (
	// TurnMessage means the engine completed the turn with text.
	TurnMessage TurnType = iota
	// TurnConfirmationRequired means one or more write operations await
	// user confirmation; the engine will not be called again until they
	// are resolved.
	TurnConfirmationRequired
)

// PendingSummary exposes a pending write to the caller so a
// confirmation UI can render what would be executed.
type PendingSummary struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Params    json.RawMessage `json:"params"`
}

// TurnResult is the tagged result of one turn: either a completed
// message or a confirmation request.
type TurnResult struct {
	Type    TurnType         `json:"type"`
	Text    string           `json:"text,omitempty"`
	Pending []PendingSummary `json:"pending,omitempty"`
}

// IterationLimitError is the loop safety valve: an engine that keeps
// requesting tools past the configured cap fails the turn rather than
// looping forever.
type IterationLimitError struct {
	Iterations int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("agent loop exceeded %d iterations without completing the turn", e.Iterations)
}
