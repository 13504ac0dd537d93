// Package conversation owns per-conversation message history and the
// set of write invocations awaiting user confirmation.
//
// Information Hiding:
// - Pending-invocation bookkeeping hidden behind resolve/has accessors
// - Compaction internals hidden in the Compactor
// - Mutual exclusion: State carries the per-conversation lock; callers
//   (the orchestrator) hold it for a whole turn so no two turns of the
//   same conversation are in flight concurrently
package conversation

import (
	"encoding/json"
	"sync"

	"github.com/richinex/gridagent/llm"
	"github.com/richinex/gridagent/sheets"
)

// PendingInvocation is a write-class tool call awaiting user
// confirmation. An invocation ID is pending in at most one State and
// for at most one open confirmation round.
type PendingInvocation struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// State holds the ordered message log and pending invocations for one
// conversation. Created lazily on the first user message; lives for the
// process lifetime. Methods are not individually synchronized: callers
// serialize whole turns via Lock/Unlock.
type State struct {
	mu sync.Mutex

	id       string
	sheet    sheets.Client
	messages []llm.Message
	pending  map[string]PendingInvocation
	// pendingOrder preserves insertion order so confirmation prompts
	// list operations in the order the engine requested them.
	pendingOrder []string
}

// NewState creates conversation state bound to a spreadsheet handle.
func NewState(id string, sheet sheets.Client) *State {
	return &State{
		id:      id,
		sheet:   sheet,
		pending: make(map[string]PendingInvocation),
	}
}

// Lock acquires the per-conversation turn lock.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the per-conversation turn lock.
func (s *State) Unlock() { s.mu.Unlock() }

// ID returns the conversation identifier.
func (s *State) ID() string { return s.id }

// Sheet returns the spreadsheet handle this conversation operates on.
func (s *State) Sheet() sheets.Client { return s.sheet }

// Append appends a message to the log. Messages are immutable once
// appended; ordering is conversation order.
func (s *State) Append(msg llm.Message) {
	s.messages = append(s.messages, msg)
}

// Messages returns the full message log.
func (s *State) Messages() []llm.Message {
	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AddPending records a write invocation awaiting confirmation.
func (s *State) AddPending(inv llm.ToolUseBlock) {
	if _, exists := s.pending[inv.ID]; exists {
		return
	}
	s.pending[inv.ID] = PendingInvocation{ID: inv.ID, Name: inv.Name, Input: inv.Input}
	s.pendingOrder = append(s.pendingOrder, inv.ID)
}

// ResolvePending removes and returns the pending invocations for the
// given ids, in the given order. Unknown ids are skipped.
func (s *State) ResolvePending(ids []string) []PendingInvocation {
	var resolved []PendingInvocation
	for _, id := range ids {
		p, ok := s.pending[id]
		if !ok {
			continue
		}
		resolved = append(resolved, p)
		delete(s.pending, id)
	}
	if len(resolved) > 0 {
		kept := s.pendingOrder[:0]
		for _, id := range s.pendingOrder {
			if _, ok := s.pending[id]; ok {
				kept = append(kept, id)
			}
		}
		s.pendingOrder = kept
	}
	return resolved
}

// HasPending reports whether any invocation awaits confirmation.
func (s *State) HasPending() bool {
	return len(s.pending) > 0
}

// Pending returns pending invocations in insertion order.
func (s *State) Pending() []PendingInvocation {
	out := make([]PendingInvocation, 0, len(s.pendingOrder))
	for _, id := range s.pendingOrder {
		out = append(out, s.pending[id])
	}
	return out
}
