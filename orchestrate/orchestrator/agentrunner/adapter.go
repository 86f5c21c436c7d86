package agentrunner

import (
	"context"

	"github.com/tailored-agentic-units/orchestrator/agent"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

// AgentAdapter wraps a single agent.Agent as a Runtime, the minimal
// in-process bridge between the orchestrator's narrow Runtime interface and
// the real HTTP-backed LLM client this repo already ships (spec §1 keeps LLM
// invocation itself out of the core; this adapter is the one concrete place
// that's allowed to know about agent.Agent, for cmd/orchestrator's demo).
type AgentAdapter struct {
	agent agent.Agent
}

// NewAgentAdapter wraps agent as a Runtime.
func NewAgentAdapter(a agent.Agent) *AgentAdapter {
	return &AgentAdapter{agent: a}
}

// Invoke sends inv.Prompt through the wrapped agent's Chat method and maps
// the reply into the Runtime contract's shape.
func (a *AgentAdapter) Invoke(ctx context.Context, inv Invocation) (Reply, error) {
	resp, err := a.agent.Chat(ctx, inv.Prompt)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{Text: resp.Content()}
	if resp.Usage != nil {
		reply.InputTokens = resp.Usage.PromptTokens
		reply.OutputTokens = resp.Usage.CompletionTokens
	}
	return reply, nil
}

// StaticPreamble is the minimal Preamble implementation: it prepends the
// task's own agentRoleDescription/qcRole text without any templating engine,
// since preamble-template loading and role-description generation are
// explicitly out of scope for the core (spec §1).
type StaticPreamble struct{}

func (StaticPreamble) Worker(task orchestrator.Task, view orchestrator.WorkerContext) string {
	role := task.AgentRoleDescription
	if role == "" {
		role = "You are a worker agent completing a single task in a larger workflow."
	}
	return role + "\n\nTask: " + task.Title
}

func (StaticPreamble) QC(task orchestrator.Task, view orchestrator.QCContext) string {
	role := task.QCRole
	if role == "" {
		role = "You are a quality-control agent. Respond with a JSON object: " +
			`{"passed": bool, "score": 0-100, "feedback": string, "issues": [string], "requiredFixes": [string]}.`
	}
	return role
}
