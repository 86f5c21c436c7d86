// Package workflow implements C9: the top-level coordinator that validates a
// submitted task set, creates and registers its ExecutionState, drives the
// DAG scheduler with a dispatch function that chains the QC loop, artifact
// collector, and persister per task, and finalizes the run (spec §4.9). This
// is the wiring point for every other orchestrator subpackage, the same role
// kernel.Kernel plays for the teacher's session pipeline.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/orchestrator/observability"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/agentrunner"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/artifacts"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/dagsched"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/eventbus"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/persist"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/qcloop"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/registry"
)

const (
	// DefaultPerTaskTimeout is the default deadline for one task's whole
	// worker/QC loop. A single deadline covers every attempt, retries
	// included; it is not reset between attempts.
	DefaultPerTaskTimeout = 10 * time.Minute
)

// ContextProvider builds the FullContext a task's worker/QC agents see.
// Per spec §1, assembling FullContext from a real project/knowledge-graph
// store (file indexing, embeddings, knowledge-graph queries) is out of
// scope; this interface is the seam a caller plugs a real implementation
// into, mirroring how Runtime and GraphClient keep the LLM and database out
// of the core.
type ContextProvider interface {
	BuildContext(ctx context.Context, task orchestrator.Task, workflowRoot string) orchestrator.FullContext
}

// Options tunes one workflow submission. Zero-value Options uses spec
// defaults (concurrency 3, perTaskTimeoutMs 10 minutes).
type Options struct {
	Concurrency      int
	PerTaskTimeoutMs int64
	WorkflowRoot     string
	PlanID           string
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return dagsched.DefaultConcurrency
}

func (o Options) perTaskTimeout() time.Duration {
	if o.PerTaskTimeoutMs > 0 {
		return time.Duration(o.PerTaskTimeoutMs) * time.Millisecond
	}
	return DefaultPerTaskTimeout
}

// Runner coordinates C1-C8 into end-to-end workflow execution.
type Runner struct {
	registry        *registry.Registry
	bus             *eventbus.Bus
	persister       *persist.Persister
	runner          *agentrunner.Runner
	contextProvider ContextProvider
	observer        observability.Observer

	now func() time.Time
}

// Option customizes a Runner at construction, following kernel.Option.
type Option func(*Runner)

// WithObserver overrides the default slog-backed observer. This stream is
// operational telemetry for this binary's own logs, distinct from the
// domain progress events published on bus (spec §4.1); both are emitted at
// every lifecycle milestone the workflow drives.
func WithObserver(o observability.Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// New creates a Runner wired over the given shared components.
func New(reg *registry.Registry, bus *eventbus.Bus, persister *persist.Persister, runner *agentrunner.Runner, contextProvider ContextProvider, opts ...Option) *Runner {
	r := &Runner{
		registry:        reg,
		bus:             bus,
		persister:       persister,
		runner:          runner,
		contextProvider: contextProvider,
		observer:        observability.NewSlogObserver(slog.Default()),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	r.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: r.now(),
		Source:    "orchestrator.workflow",
		Data:      data,
	})
}

// Submission is returned synchronously by Submit (spec §6 "the runner
// returns an executionId synchronously").
type Submission struct {
	ExecutionID string
	Cancel      func()
}

// Submit validates tasks, creates and registers the ExecutionState, and
// starts driving the workflow in the background. It returns immediately;
// callers observe progress via the event bus or by polling the registry.
func (r *Runner) Submit(ctx context.Context, tasks []orchestrator.Task, opts Options) (Submission, error) {
	if err := orchestrator.ValidateTasks(tasks); err != nil {
		return Submission{}, fmt.Errorf("%w: %v", orchestrator.ErrInvalidWorkflow, err)
	}

	startTime := r.now()
	executionID := fmt.Sprintf("exec-%d", startTime.UnixMilli())

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	state := orchestrator.NewExecutionState(executionID, ids, startTime.UnixMilli())
	r.registry.Register(state)

	r.persister.CreateExecution(ctx, executionID, len(tasks), startTime.UnixMilli())
	r.bus.Publish(eventbus.Event{
		ExecutionID: executionID,
		Kind:        eventbus.KindWorkflowStarted,
		Payload:     map[string]any{"tasksTotal": len(tasks), "planId": opts.PlanID},
	})
	r.emit(ctx, "workflow.start", observability.LevelInfo, map[string]any{
		"executionId": executionID, "tasksTotal": len(tasks), "concurrency": opts.concurrency(),
	})

	runCtx, cancelRun := context.WithCancel(ctx)

	go r.run(runCtx, executionID, tasks, state, opts, startTime)

	return Submission{
		ExecutionID: executionID,
		Cancel: func() {
			state.Cancel()
			cancelRun()
		},
	}, nil
}

func (r *Runner) run(ctx context.Context, executionID string, tasks []orchestrator.Task, state *orchestrator.ExecutionState, opts Options, startTime time.Time) {
	loop := qcloop.New(r.runner)

	dispatch := func(taskCtx context.Context, task orchestrator.Task) orchestrator.ExecutionResult {
		attemptCtx, cancelAttempt := context.WithTimeout(taskCtx, opts.perTaskTimeout())
		defer cancelAttempt()

		full := r.contextProvider.BuildContext(attemptCtx, task, opts.WorkflowRoot)

		result := loop.Run(attemptCtx, task, full, r.qcObserver(executionID, task))

		if result.Output != "" {
			if found, err := artifacts.Extract(result.Output); err == nil && len(found) > 0 {
				for _, appended := range state.AppendArtifacts(found...) {
					r.bus.Publish(eventbus.Event{
						ExecutionID: executionID,
						Kind:        eventbus.KindArtifactCaptured,
						Payload: map[string]any{
							"taskId":   task.ID,
							"filename": appended.Artifact.Filename,
							"size":     appended.Artifact.Size,
							"replaced": appended.Replaced,
						},
					})
				}
			}
		}

		r.persister.UpsertTaskExecution(ctx, executionID, result)
		r.persister.UpdateExecutionProgress(ctx, executionID, state.Snapshot())

		completionKind := eventbus.KindTaskCompleted
		if result.Status != orchestrator.ResultSuccess {
			completionKind = eventbus.KindTaskFailed
		}
		r.bus.Publish(eventbus.Event{
			ExecutionID: executionID,
			Kind:        completionKind,
			Payload:     map[string]any{"taskId": task.ID, "status": string(result.Status), "attemptNumber": result.AttemptNumber},
		})

		return result
	}

	scheduler := dagsched.New(opts.concurrency())
	scheduler.Run(ctx, tasks, state, dispatch, r.dagEvent(ctx, executionID))

	endTime := r.now()
	snapshot := state.Snapshot()

	finalStatus := orchestrator.ExecutionCompleted
	switch {
	case state.IsCancelled():
		finalStatus = orchestrator.ExecutionCancelled
	case snapshot.Status == orchestrator.ExecutionFailed:
		finalStatus = orchestrator.ExecutionFailed
	}

	state.Finalize(finalStatus, endTime.UnixMilli())
	r.persister.FinalizeExecution(context.WithoutCancel(ctx), executionID, finalStatus, startTime.UnixMilli(), endTime.UnixMilli())

	completionKind := eventbus.KindWorkflowCompleted
	if finalStatus == orchestrator.ExecutionCancelled {
		completionKind = eventbus.KindWorkflowCancelled
	}
	r.bus.Publish(eventbus.Event{
		ExecutionID: executionID,
		Kind:        completionKind,
		Payload:     map[string]any{"status": string(finalStatus)},
	})
	var tasksSuccessful, tasksFailed int
	for _, res := range snapshot.Results {
		if res.Status == orchestrator.ResultSuccess {
			tasksSuccessful++
		} else {
			tasksFailed++
		}
	}
	r.emit(context.WithoutCancel(ctx), "workflow.end", observability.LevelInfo, map[string]any{
		"executionId": executionID, "status": string(finalStatus),
		"tasksSuccessful": tasksSuccessful, "tasksFailed": tasksFailed,
	})
}

// dagEvent bridges dagsched's task-level notifications into the operator
// observability stream, mirroring kernel.Kernel's per-iteration LevelVerbose
// events.
func (r *Runner) dagEvent(ctx context.Context, executionID string) dagsched.EventFunc {
	return func(task orchestrator.Task, result *orchestrator.ExecutionResult) {
		if result == nil {
			r.emit(ctx, "task.start", observability.LevelVerbose, map[string]any{
				"executionId": executionID, "taskId": task.ID,
			})
			return
		}
		level := observability.LevelVerbose
		if result.Status != orchestrator.ResultSuccess {
			level = observability.LevelWarning
		}
		r.emit(ctx, "task.end", level, map[string]any{
			"executionId": executionID, "taskId": task.ID,
			"status": string(result.Status), "attemptNumber": result.AttemptNumber,
		})
	}
}

// qcObserver translates qcloop state transitions into event-bus progress
// events, per spec §5's ordering guarantee (taskStarted precedes any
// qcStarted/qcCompleted/taskProgress, which precede taskCompleted/taskFailed).
func (r *Runner) qcObserver(executionID string, task orchestrator.Task) qcloop.Observer {
	lastState := qcloop.StateIdle
	return func(state qcloop.State, attempt int, t orchestrator.Task) {
		switch state {
		case qcloop.StateWorkerRunning:
			if attempt == 1 {
				r.bus.Publish(eventbus.Event{
					ExecutionID: executionID,
					Kind:        eventbus.KindTaskStarted,
					Payload:     map[string]any{"taskId": t.ID},
				})
			}
		case qcloop.StateQCRunning:
			r.bus.Publish(eventbus.Event{
				ExecutionID: executionID,
				Kind:        eventbus.KindQCStarted,
				Payload:     map[string]any{"taskId": t.ID, "attempt": attempt},
			})
		case qcloop.StateRetry:
			if lastState == qcloop.StateQCRunning {
				r.bus.Publish(eventbus.Event{
					ExecutionID: executionID,
					Kind:        eventbus.KindQCCompleted,
					Payload:     map[string]any{"taskId": t.ID, "attempt": attempt, "accepted": false},
				})
			}
			r.bus.Publish(eventbus.Event{
				ExecutionID: executionID,
				Kind:        eventbus.KindTaskProgress,
				Payload:     map[string]any{"taskId": t.ID, "attempt": attempt, "retrying": true},
			})
		case qcloop.StateDone:
			if lastState == qcloop.StateQCRunning {
				r.bus.Publish(eventbus.Event{
					ExecutionID: executionID,
					Kind:        eventbus.KindQCCompleted,
					Payload:     map[string]any{"taskId": t.ID, "attempt": attempt, "accepted": true},
				})
			}
		}
		lastState = state
	}
}

// Registry exposes the underlying execution registry for query callers
// (spec §6 "results are retrieved... or by querying the execution registry").
func (r *Runner) Registry() *registry.Registry {
	return r.registry
}
