package conversation

import (
	"testing"

	"github.com/richinex/gridagent/llm"
)

func TestStateAppendPreservesOrder(t *testing.T) {
	st := NewState("c1", nil)
	st.Append(llm.UserText("first"))
	st.Append(llm.AssistantText("second"))

	msgs := st.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text() != "first" || msgs[1].Text() != "second" {
		t.Error("message order not preserved")
	}
}

func TestStatePendingLifecycle(t *testing.T) {
	st := NewState("c1", nil)
	if st.HasPending() {
		t.Error("new state should have no pending invocations")
	}

	st.AddPending(llm.ToolUseBlock{ID: "w1", Name: "write_range", Input: []byte(`{"range":"A1"}`)})
	st.AddPending(llm.ToolUseBlock{ID: "w2", Name: "clear_range", Input: []byte(`{"range":"B1"}`)})

	if !st.HasPending() {
		t.Fatal("expected pending invocations")
	}

	pending := st.Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != "w1" || pending[1].ID != "w2" {
		t.Error("pending should be returned in insertion order")
	}

	resolved := st.ResolvePending([]string{"w1"})
	if len(resolved) != 1 || resolved[0].Name != "write_range" {
		t.Fatalf("expected to resolve w1, got %+v", resolved)
	}
	if !st.HasPending() {
		t.Error("w2 should remain pending")
	}

	// Resolving the same id again is a no-op.
	if again := st.ResolvePending([]string{"w1"}); len(again) != 0 {
		t.Errorf("expected already-resolved id to be skipped, got %+v", again)
	}

	st.ResolvePending([]string{"w2"})
	if st.HasPending() {
		t.Error("all pending should be cleared")
	}
}

func TestStateAddPendingDuplicateID(t *testing.T) {
	st := NewState("c1", nil)
	st.AddPending(llm.ToolUseBlock{ID: "w1", Name: "write_range"})
	st.AddPending(llm.ToolUseBlock{ID: "w1", Name: "clear_range"})

	pending := st.Pending()
	if len(pending) != 1 {
		t.Fatalf("duplicate id should not create a second pending entry, got %d", len(pending))
	}
	if pending[0].Name != "write_range" {
		t.Error("first registration should win")
	}
}

func TestRegistryCreatesLazily(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Lookup("c1"); ok {
		t.Error("Lookup should not create state")
	}

	st := r.Get("c1", nil)
	if st == nil {
		t.Fatal("Get should create state")
	}
	if st.ID() != "c1" {
		t.Errorf("expected id c1, got %s", st.ID())
	}

	if again := r.Get("c1", nil); again != st {
		t.Error("Get should return the same instance for the same id")
	}
}

func TestRegistryEmptyIDMapsToDefault(t *testing.T) {
	r := NewRegistry()
	st := r.Get("", nil)
	if st.ID() != DefaultID {
		t.Errorf("expected default id, got %s", st.ID())
	}

	if byName, ok := r.Lookup(DefaultID); !ok || byName != st {
		t.Error("default conversation should be reachable by its explicit id")
	}
}
