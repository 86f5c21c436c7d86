// Package dagsched implements C7: topological, bounded-concurrency dispatch
// of a task DAG (spec §4.7). Readiness tracking follows Kahn's algorithm, the
// same approach _examples/other_examples' dag_scheduler.go uses; the bounded
// worker pool follows the semaphore-gated dispatch loop in
// orchestrate/workflows/parallel.go's ProcessParallel. Unlike either source,
// task selection among simultaneously-ready tasks is deterministic by
// original input order (spec §4.7 "Determinism"), not first-ready-first-run,
// and the scheduler wakes on a signal channel instead of polling with
// time.Sleep.
package dagsched

import (
	"fmt"
	"sort"
	"sync"

	"context"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

// DefaultConcurrency is used when Scheduler is constructed with concurrency <= 0.
const DefaultConcurrency = 3

// Dispatch runs one task to completion (including any internal QC retries)
// and returns its final result. Implementations must honor ctx cancellation.
type Dispatch func(ctx context.Context, task orchestrator.Task) orchestrator.ExecutionResult

// EventFunc is notified when a task starts (result == nil) and when it
// reaches a terminal status (result populated), for progress events.
type EventFunc func(task orchestrator.Task, result *orchestrator.ExecutionResult)

// Scheduler dispatches a validated task DAG with bounded concurrency.
type Scheduler struct {
	concurrency int
}

// New creates a Scheduler with the given concurrency (<=0 uses DefaultConcurrency).
func New(concurrency int) *Scheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Scheduler{concurrency: concurrency}
}

type node struct {
	task     orchestrator.Task
	index    int
	indegree int
}

// Run drives tasks to completion against state, invoking dispatch for every
// task whose dependencies all completed successfully, and blocks until every
// task reaches a terminal status or the execution is cancelled and all
// in-flight dispatches have returned (the completion barrier, spec §4.7).
// tasks must already have passed orchestrator.ValidateTasks: Run assumes no
// unknown dependencies and no cycles.
//
// On cancellation, tasks already dispatched are allowed to finish (dispatch
// is expected to honor ctx and return promptly); tasks still pending are
// left in TaskPending and never dispatched, per spec §4.7 cancellation
// semantics.
func (s *Scheduler) Run(ctx context.Context, tasks []orchestrator.Task, state *orchestrator.ExecutionState, dispatch Dispatch, onEvent EventFunc) {
	if onEvent == nil {
		onEvent = func(orchestrator.Task, *orchestrator.ExecutionResult) {}
	}

	nodes := make(map[string]*node, len(tasks))
	dependents := make(map[string][]string)
	for i, t := range tasks {
		nodes[t.ID] = &node{task: t, index: i}
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			nodes[t.ID].indegree++
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var mu sync.Mutex
	ready := make([]string, 0, len(tasks))
	remaining := len(tasks)
	inFlight := 0
	wake := make(chan struct{})

	addReady := func(id string) {
		ready = append(ready, id)
		sort.Slice(ready, func(i, j int) bool { return nodes[ready[i]].index < nodes[ready[j]].index })
	}

	cascadeFail := func(failedID string) {
		queue := []string{failedID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, downID := range dependents[cur] {
				if state.TaskStatus(downID) != orchestrator.TaskPending {
					continue
				}
				state.SetTaskStatus(downID, orchestrator.TaskFailed)
				result := orchestrator.ExecutionResult{
					TaskID: downID,
					Status: orchestrator.ResultFailure,
					Error:  fmt.Sprintf("dependency failed: %s", failedID),
				}
				state.AppendResult(result)
				onEvent(nodes[downID].task, &result)
				remaining--
				queue = append(queue, downID)
			}
		}
	}

	mu.Lock()
	for _, t := range tasks {
		if nodes[t.ID].indegree == 0 {
			addReady(t.ID)
		}
	}
	mu.Unlock()

	var wg sync.WaitGroup

	for {
		mu.Lock()
		if remaining == 0 {
			mu.Unlock()
			break
		}

		cancelled := ctx.Err() != nil || state.IsCancelled()
		if cancelled && inFlight == 0 {
			mu.Unlock()
			break
		}

		dispatchedAny := false
		for !cancelled && len(ready) > 0 && inFlight < s.concurrency {
			id := ready[0]
			ready = ready[1:]
			inFlight++
			dispatchedAny = true
			t := nodes[id].task
			mu.Unlock()

			state.SetTaskStatus(t.ID, orchestrator.TaskExecuting)
			onEvent(t, nil)

			wg.Add(1)
			go func(t orchestrator.Task) {
				defer wg.Done()
				result := dispatch(ctx, t)
				result.TaskID = t.ID

				if result.Status == orchestrator.ResultSuccess {
					state.SetTaskStatus(t.ID, orchestrator.TaskCompleted)
				} else {
					state.SetTaskStatus(t.ID, orchestrator.TaskFailed)
				}
				state.AppendResult(result)
				onEvent(t, &result)

				mu.Lock()
				inFlight--
				remaining--
				if result.Status == orchestrator.ResultSuccess {
					for _, downID := range dependents[t.ID] {
						nodes[downID].indegree--
						if nodes[downID].indegree == 0 {
							addReady(downID)
						}
					}
				} else if ctx.Err() == nil && !state.IsCancelled() {
					// Only cascade a synthetic "dependency failed" result when
					// this is a genuine task failure; a failure produced by
					// cancellation should leave downstream tasks pending, not
					// failed (spec §4.7 cancellation semantics).
					cascadeFail(t.ID)
				}
				close(wake)
				wake = make(chan struct{})
				mu.Unlock()
			}(t)

			mu.Lock()
		}

		w := wake
		mu.Unlock()

		if !dispatchedAny {
			select {
			case <-w:
			case <-ctx.Done():
			}
		}
	}

	wg.Wait()
}
