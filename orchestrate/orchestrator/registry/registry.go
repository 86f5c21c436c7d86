// Package registry implements C2: the process-wide map from execution id to
// live ExecutionState. It is the single owner of that map; every other
// component reaches ExecutionState only through Get/snapshot, following the
// "process-wide mutable registry map -> single owner with guarded
// operations" strategy in spec §9, the same shape as agent.Registry.
package registry

import (
	"sync"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

// Registry owns the live ExecutionState for every in-flight (or retained)
// execution. All methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	executions map[string]*orchestrator.ExecutionState
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		executions: make(map[string]*orchestrator.ExecutionState),
	}
}

// Register inserts state, keyed by state.ExecutionID. Re-registering the
// same id replaces the previous entry.
func (r *Registry) Register(state *orchestrator.ExecutionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions[state.ExecutionID] = state
}

// Get returns the live state for id, or ok=false if not present.
func (r *Registry) Get(id string) (*orchestrator.ExecutionState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.executions[id]
	return state, ok
}

// List returns a snapshot slice of every registered execution id. Callers
// get ids, not references, and must call Get for the live pointer.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.executions))
	for id := range r.executions {
		ids = append(ids, id)
	}
	return ids
}

// Remove deletes id from the registry. Callers are responsible for only
// removing terminal executions (spec §3 lifecycle); Remove itself performs
// no status check since retention policy is a caller concern (spec §6).
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.executions, id)
}
