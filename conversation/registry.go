// Conversation Registry - keyed store of conversation state.

package conversation

import (
	"sync"

	"github.com/richinex/gridagent/sheets"
)

// DefaultID is used when a caller supplies no conversation id.
const DefaultID = "default"

// Registry is a keyed store of State instances. Lookup and creation are
// thread-safe; turn-level mutation is serialized by each State's own
// lock.
type Registry struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[string]*State)}
}

// Get returns the state for the given id, creating it lazily with the
// provided spreadsheet handle. An empty id maps to DefaultID.
func (r *Registry) Get(id string, sheet sheets.Client) *State {
	if id == "" {
		id = DefaultID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.states[id]; ok {
		return st
	}
	st := NewState(id, sheet)
	r.states[id] = st
	return st
}

// Lookup returns existing state without creating it.
func (r *Registry) Lookup(id string) (*State, bool) {
	if id == "" {
		id = DefaultID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.states[id]
	return st, ok
}
