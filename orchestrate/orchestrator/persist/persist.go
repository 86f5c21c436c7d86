// Package persist implements C8: incremental, idempotent, failure-tolerant
// writes of execution and task-execution records through a narrow graph
// interface (spec §4.8, §6). The interface shape follows the
// Document/Graph/Metrics/Cache repository split in
// _examples/other_examples' db-repository-interfaces.go, narrowed to the
// four graph operations spec §6 actually names. Properties are carried as
// *structpb.Struct, the protobuf-native arbitrary-property-bag type, rather
// than a bare map[string]any, to give the unused google.golang.org/protobuf
// teacher dependency a concrete home at this boundary.
package persist

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/eventbus"
)

// GraphClient is the narrow external graph interface the persister writes
// through (spec §6). Implementations must treat createNode on an existing id
// as equivalent to updateNode, and createEdge with an identical
// (from, to, type) as a no-op.
type GraphClient interface {
	CreateNode(ctx context.Context, typ string, props *structpb.Struct) error
	UpdateNode(ctx context.Context, id string, props *structpb.Struct) error
	CreateEdge(ctx context.Context, from, to, typ string, props *structpb.Struct) error
	Close() error
}

// executionStatusString maps orchestrator.ExecutionStatus to the exact
// status strings the persisted orchestration_execution record uses
// (spec §6: running, completed, failed, cancelled — identical to
// orchestrator.ExecutionStatus's own string values, called out explicitly
// so a future divergence between the two enums is caught here, not silently).
func executionStatusString(s orchestrator.ExecutionStatus) string {
	return string(s)
}

// Persister performs the four idempotent writes spec §4.8 defines. Every
// method swallows the graph client's errors: persister failures must never
// change task or workflow status (spec §4.8 "Failure tolerance"); they are
// only surfaced as a persistError event on the bus.
type Persister struct {
	graph GraphClient
	bus   *eventbus.Bus
}

// New creates a Persister writing through graph and reporting failures on bus.
func New(graph GraphClient, bus *eventbus.Bus) *Persister {
	return &Persister{graph: graph, bus: bus}
}

func (p *Persister) report(ctx context.Context, executionID, op string, err error) {
	if err == nil {
		return
	}
	if p.bus != nil {
		p.bus.Publish(eventbus.Event{
			ExecutionID: executionID,
			Kind:        eventbus.KindPersistError,
			Payload: map[string]any{
				"operation": op,
				"error":     fmt.Sprintf("%s: %v", orchestrator.ErrPersistError, err),
			},
		})
	}
}

// CreateExecution inserts the orchestration_execution record at workflow
// start. Re-issuing is a no-op because CreateNode on an existing id must be
// idempotent at the GraphClient boundary.
func (p *Persister) CreateExecution(ctx context.Context, executionID string, tasksTotal int, startTimeMs int64) {
	props, err := structpb.NewStruct(map[string]any{
		"id":              executionID,
		"status":          executionStatusString(orchestrator.ExecutionRunning),
		"tasksTotal":      float64(tasksTotal),
		"tasksSuccessful": float64(0),
		"tasksFailed":     float64(0),
		"tokensInput":     float64(0),
		"tokensOutput":    float64(0),
		"tokensTotal":     float64(0),
		"toolCalls":       float64(0),
		"startTime":       float64(startTimeMs),
	})
	if err != nil {
		p.report(ctx, executionID, "createExecution", err)
		return
	}
	p.report(ctx, executionID, "createExecution", p.graph.CreateNode(ctx, "orchestration_execution", props))
}

// UpsertTaskExecution writes the task_execution record on a task's terminal
// event and, on failure, a failed-task edge back to the parent execution.
func (p *Persister) UpsertTaskExecution(ctx context.Context, executionID string, result orchestrator.ExecutionResult) {
	taskExecutionID := fmt.Sprintf("%s-%s", executionID, result.TaskID)

	fields := map[string]any{
		"id":            taskExecutionID,
		"executionId":   executionID,
		"taskId":        result.TaskID,
		"status":        string(result.Status),
		"output":        result.Output,
		"duration":      float64(result.DurationMs),
		"attemptNumber": float64(result.AttemptNumber),
		"tokensInput":   float64(result.Tokens.Input),
		"tokensOutput":  float64(result.Tokens.Output),
		"toolCalls":     float64(result.ToolCalls),
	}
	if result.Error != "" {
		fields["error"] = result.Error
	}
	if result.QCVerification != nil {
		fields["qcPassed"] = result.QCVerification.Passed
		fields["qcScore"] = float64(result.QCVerification.Score)
		fields["qcFeedback"] = result.QCVerification.Feedback
		fields["qcIssues"] = toAnySlice(result.QCVerification.Issues)
		fields["qcRequiredFixes"] = toAnySlice(result.QCVerification.RequiredFixes)
	}

	props, err := structpb.NewStruct(fields)
	if err != nil {
		p.report(ctx, executionID, "upsertTaskExecution", err)
		return
	}
	if err := p.graph.CreateNode(ctx, "task_execution", props); err != nil {
		p.report(ctx, executionID, "upsertTaskExecution", err)
		return
	}

	p.report(ctx, executionID, "upsertTaskExecution.hasTaskEdge", p.graph.CreateEdge(ctx, executionID, taskExecutionID, "HAS_TASK", nil))
	if result.Status == orchestrator.ResultFailure {
		p.report(ctx, executionID, "upsertTaskExecution.failedTaskEdge", p.graph.CreateEdge(ctx, executionID, taskExecutionID, "FAILED_TASK", nil))
	}
}

// UpdateExecutionProgress aggregates token/tool-call counters and
// success/failure tallies into the orchestration_execution record, and
// transitions its status to failed the first time any task fails.
func (p *Persister) UpdateExecutionProgress(ctx context.Context, executionID string, snapshot orchestrator.ExecutionState) {
	var tokensIn, tokensOut, toolCalls, successful, failed int

	for _, r := range snapshot.Results {
		tokensIn += r.Tokens.Input
		tokensOut += r.Tokens.Output
		toolCalls += r.ToolCalls
		if r.Status == orchestrator.ResultSuccess {
			successful++
		} else {
			failed++
		}
	}

	fields := map[string]any{
		"tasksSuccessful": float64(successful),
		"tasksFailed":     float64(failed),
		"tokensInput":     float64(tokensIn),
		"tokensOutput":    float64(tokensOut),
		"tokensTotal":     float64(tokensIn + tokensOut),
		"toolCalls":       float64(toolCalls),
	}
	if failed > 0 {
		fields["status"] = executionStatusString(orchestrator.ExecutionFailed)
	}

	props, err := structpb.NewStruct(fields)
	if err != nil {
		p.report(ctx, executionID, "updateExecutionProgress", err)
		return
	}
	p.report(ctx, executionID, "updateExecutionProgress", p.graph.UpdateNode(ctx, executionID, props))
}

// FinalizeExecution writes endTime, duration, and the workflow's final
// status on terminal workflow transition.
func (p *Persister) FinalizeExecution(ctx context.Context, executionID string, status orchestrator.ExecutionStatus, startTimeMs, endTimeMs int64) {
	props, err := structpb.NewStruct(map[string]any{
		"status":   executionStatusString(status),
		"endTime":  float64(endTimeMs),
		"duration": float64(endTimeMs - startTimeMs),
	})
	if err != nil {
		p.report(ctx, executionID, "finalizeExecution", err)
		return
	}
	p.report(ctx, executionID, "finalizeExecution", p.graph.UpdateNode(ctx, executionID, props))
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
