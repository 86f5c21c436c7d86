package orchestrator

import "fmt"

// ValidateTasks checks id uniqueness, dependency references, and acyclicity
// per spec §3 invariants and §4.9 step 1. It never mutates tasks.
func ValidateTasks(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateTaskID, t.ID)
		}
		seen[t.ID] = true
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("%w: task %q depends on %q", ErrUnknownDependency, t.ID, dep)
			}
		}
	}

	if cycle := findCycle(tasks); cycle != "" {
		return fmt.Errorf("%w: at %q", ErrCyclicDependency, cycle)
	}

	return nil
}

// findCycle runs a DFS over the dependency graph and returns the id where a
// cycle was detected, or "" if the graph is acyclic.
func findCycle(tasks []Task) string {
	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(tasks))

	var visit func(id string) string
	visit = func(id string) string {
		switch state[id] {
		case done:
			return ""
		case visiting:
			return id
		}
		state[id] = visiting
		for _, dep := range byID[id].Dependencies {
			if found := visit(dep); found != "" {
				return found
			}
		}
		state[id] = done
		return ""
	}

	for _, t := range tasks {
		if state[t.ID] == unvisited {
			if found := visit(t.ID); found != "" {
				return found
			}
		}
	}
	return ""
}
