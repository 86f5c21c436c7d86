package main

import (
	"context"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

// staticContextProvider builds a FullContext directly from task fields. Real
// deployments plug in a provider backed by file indexing and the
// knowledge-graph query layer (spec §1 non-goals); this one exists only to
// give cmd/orchestrator's demo workflow something to pass through ctxfilter.
type staticContextProvider struct{}

func (staticContextProvider) BuildContext(ctx context.Context, task orchestrator.Task, workflowRoot string) orchestrator.FullContext {
	return orchestrator.FullContext{
		TaskID:       task.ID,
		Title:        task.Title,
		Requirements: task.Prompt,
		Description:  task.Prompt,
		Status:       orchestrator.TaskPending,
	}
}
