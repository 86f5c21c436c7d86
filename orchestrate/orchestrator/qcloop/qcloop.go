// Package qcloop implements C6: the per-task state machine that wraps the
// agent runner with QC verification and bounded retries with feedback
// (spec §4.6). States: Idle -> WorkerRunning -> (Done | QCRunning | Retry);
// QCRunning -> (Done | Retry); Retry -> WorkerRunning. Done is terminal.
package qcloop

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/agentrunner"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/ctxfilter"
)

// State names the QC loop's current state, exposed for observability and
// determinism assertions (spec §4.6 "Determinism").
type State string

const (
	StateIdle          State = "Idle"
	StateWorkerRunning State = "WorkerRunning"
	StateQCRunning     State = "QCRunning"
	StateRetry         State = "Retry"
	StateDone          State = "Done"
)

// Observer is notified of every state transition, for progress events and
// logging. fn may be nil.
type Observer func(state State, attempt int, task orchestrator.Task)

// Loop drives one task through its worker/QC attempts.
type Loop struct {
	runner *agentrunner.Runner
}

// New creates a Loop over the given agent runner.
func New(runner *agentrunner.Runner) *Loop {
	return &Loop{runner: runner}
}

// Run executes the state machine for task against full, returning the final
// ExecutionResult. It never returns an error itself: every failure mode is
// captured as a ResultFailure result, matching spec §4.6/§4.5's contract
// that runner failures "are reported as status: failure with a populated
// error," not propagated as Go errors up the call stack.
func (l *Loop) Run(ctx context.Context, task orchestrator.Task, full orchestrator.FullContext, observe Observer) orchestrator.ExecutionResult {
	if observe == nil {
		observe = func(State, int, orchestrator.Task) {}
	}

	attempt := 1
	feedback := ""
	errorContext := ""

	for {
		observe(StateWorkerRunning, attempt, task)

		opts := ctxfilter.Options{}
		if attempt > 1 {
			opts.IncludeErrorContext = true
			opts.AttemptNumber = attempt
			opts.ErrorContext = errorContext
		}
		view := ctxfilter.Filter(full, orchestrator.KindWorker, opts)

		workerResult, err := l.runner.RunWorker(ctx, task, *view.Worker, attempt, feedback)
		if err != nil {
			workerResult.AttemptNumber = attempt
			observe(StateDone, attempt, task)
			return workerResult
		}

		if !task.QCEnabled() {
			observe(StateDone, attempt, task)
			return workerResult
		}

		observe(StateQCRunning, attempt, task)

		qcView := ctxfilter.FilterQC(full, task.VerificationCriteria, workerResult.Output, opts)
		qcResult, err := l.runner.RunQC(ctx, task, qcView, attempt)
		if err != nil {
			qcResult.AttemptNumber = attempt
			observe(StateDone, attempt, task)
			return qcResult
		}

		verification := qcResult.QCVerification
		if verification != nil && verification.Accepted() {
			workerResult.AttemptNumber = attempt
			workerResult.QCVerification = verification
			observe(StateDone, attempt, task)
			return workerResult
		}

		if attempt >= task.MaxRetries+1 {
			workerResult.Status = orchestrator.ResultFailure
			workerResult.AttemptNumber = attempt
			workerResult.QCVerification = verification
			if verification != nil {
				workerResult.Error = fmt.Sprintf("qc rejected after %d attempts: %s", attempt, verification.Feedback)
			}
			observe(StateDone, attempt, task)
			return workerResult
		}

		observe(StateRetry, attempt, task)
		if verification != nil {
			feedback = verification.Feedback
			errorContext = fmt.Sprintf("previous output:\n%s\n\nissues: %v\nrequired fixes: %v", workerResult.Output, verification.Issues, verification.RequiredFixes)
		}
		attempt++
	}
}
