// Package pathguard implements the workflow-wide deduplication guard from
// spec §5: "Where the core accepts a background driver that keys by path, it
// maintains an active-paths set and rejects re-entries for a path already in
// the set; the set entry is removed on terminal transition regardless of
// success, failure, or cancellation." This covers background jobs outside
// task dispatch proper (e.g. a repository-scoped indexing driver the core
// consumes as an external collaborator) — not the DAG scheduler's own task
// readiness tracking, which dagsched owns.
//
// Grounded on the same "process-wide mutable map -> single owner with
// guarded operations" shape as registry.Registry (C2), narrowed from a
// value-store to a presence-set.
package pathguard

import "sync"

// Guard tracks which paths currently have an in-flight background job.
// Safe for concurrent use.
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// New creates an empty Guard.
func New() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// TryAcquire attempts to mark path as active. It returns true if path was
// not already active (and is now held by the caller), or false if a job for
// path is already in flight — the caller must reject the re-entry rather
// than start a second concurrent job for the same path.
func (g *Guard) TryAcquire(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.active[path]; exists {
		return false
	}
	g.active[path] = struct{}{}
	return true
}

// Release removes path from the active set. Callers must call Release on
// every terminal transition of the job they acquired path for — success,
// failure, or cancellation alike — or the path is permanently blocked from
// re-entry.
func (g *Guard) Release(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, path)
}

// Active reports whether path currently has an in-flight job. Intended for
// diagnostics/tests; callers driving acquire/release logic should rely on
// TryAcquire's return value, not a separate Active check, to avoid a
// check-then-act race.
func (g *Guard) Active(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, exists := g.active[path]
	return exists
}

// Len returns the number of currently active paths. Diagnostics only.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
