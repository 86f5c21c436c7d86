package registry

import (
	"testing"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

func TestRegistry_RegisterGet(t *testing.T) {
	r := New()
	state := orchestrator.NewExecutionState("exec-1", []string{"A"}, 0)
	r.Register(state)

	got, ok := r.Get("exec-1")
	if !ok {
		t.Fatal("expected execution to be found")
	}
	if got.ExecutionID != "exec-1" {
		t.Fatalf("expected exec-1, got %s", got.ExecutionID)
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := New()
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected not found")
	}
}

func TestRegistry_List(t *testing.T) {
	r := New()
	r.Register(orchestrator.NewExecutionState("exec-1", nil, 0))
	r.Register(orchestrator.NewExecutionState("exec-2", nil, 0))

	ids := r.List()
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := New()
	r.Register(orchestrator.NewExecutionState("exec-1", nil, 0))
	r.Remove("exec-1")

	if _, ok := r.Get("exec-1"); ok {
		t.Fatal("expected execution removed")
	}
}
