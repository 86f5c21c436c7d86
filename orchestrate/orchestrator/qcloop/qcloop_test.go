package qcloop

import (
	"context"
	"testing"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/agentrunner"
)

type scriptedRuntime struct {
	workerCalls int
	qcCalls     int
	qcReplies   []string
}

func (s *scriptedRuntime) Invoke(ctx context.Context, inv agentrunner.Invocation) (agentrunner.Reply, error) {
	if len(inv.Prompt) >= len("you are a qc agent") && inv.Prompt[:len("you are a qc agent")] == "you are a qc agent" {
		reply := s.qcReplies[s.qcCalls]
		s.qcCalls++
		return agentrunner.Reply{Text: reply}, nil
	}
	s.workerCalls++
	return agentrunner.Reply{Text: "worker output", InputTokens: 100, OutputTokens: 50}, nil
}

type fakePreamble struct{}

func (fakePreamble) Worker(task orchestrator.Task, view orchestrator.WorkerContext) string {
	return "you are a worker agent"
}

func (fakePreamble) QC(task orchestrator.Task, view orchestrator.QCContext) string {
	return "you are a qc agent"
}

func TestLoop_QCDisabled_SingleAttempt(t *testing.T) {
	rt := &scriptedRuntime{}
	loop := New(agentrunner.New(rt, fakePreamble{}))

	task := orchestrator.Task{ID: "A", MaxRetries: 2}
	result := loop.Run(context.Background(), task, orchestrator.FullContext{TaskID: "A"}, nil)

	if result.Status != orchestrator.ResultSuccess {
		t.Fatalf("expected success, got %v", result.Status)
	}
	if result.AttemptNumber != 1 {
		t.Fatalf("expected attemptNumber 1, got %d", result.AttemptNumber)
	}
	if rt.workerCalls != 1 {
		t.Fatalf("expected exactly one worker invocation, got %d", rt.workerCalls)
	}
}

func TestLoop_S3_RetryThenPass(t *testing.T) {
	rt := &scriptedRuntime{
		qcReplies: []string{
			`{"passed": false, "score": 40, "feedback": "fix it", "issues": ["bug"], "requiredFixes": ["fix bug"]}`,
			`{"passed": true, "score": 85, "feedback": "great", "issues": [], "requiredFixes": []}`,
		},
	}
	loop := New(agentrunner.New(rt, fakePreamble{}))

	task := orchestrator.Task{ID: "A", MaxRetries: 2, QCRole: "reviewer"}
	result := loop.Run(context.Background(), task, orchestrator.FullContext{TaskID: "A"}, nil)

	if result.AttemptNumber != 2 {
		t.Fatalf("expected attemptNumber 2, got %d", result.AttemptNumber)
	}
	if result.Status != orchestrator.ResultSuccess {
		t.Fatalf("expected success, got %v", result.Status)
	}
	if result.QCVerification == nil || result.QCVerification.Score != 85 {
		t.Fatalf("unexpected verification: %+v", result.QCVerification)
	}
	if rt.workerCalls != 2 {
		t.Fatalf("expected 2 worker invocations, got %d", rt.workerCalls)
	}
}

func TestLoop_S4_RetryExhausted(t *testing.T) {
	alwaysFails := `{"passed": false, "score": 30, "feedback": "still bad", "issues": ["bug"], "requiredFixes": ["fix"]}`
	rt := &scriptedRuntime{
		qcReplies: []string{alwaysFails, alwaysFails, alwaysFails},
	}
	loop := New(agentrunner.New(rt, fakePreamble{}))

	task := orchestrator.Task{ID: "A", MaxRetries: 2, QCRole: "reviewer"}
	result := loop.Run(context.Background(), task, orchestrator.FullContext{TaskID: "A"}, nil)

	if result.AttemptNumber != task.MaxRetries+1 {
		t.Fatalf("expected attemptNumber %d, got %d", task.MaxRetries+1, result.AttemptNumber)
	}
	if result.Status != orchestrator.ResultFailure {
		t.Fatalf("expected failure, got %v", result.Status)
	}
	if rt.workerCalls != task.MaxRetries+1 || rt.qcCalls != task.MaxRetries+1 {
		t.Fatalf("expected %d worker and QC invocations, got worker=%d qc=%d", task.MaxRetries+1, rt.workerCalls, rt.qcCalls)
	}
}

func TestLoop_StateTransitionsObserved(t *testing.T) {
	rt := &scriptedRuntime{
		qcReplies: []string{
			`{"passed": false, "score": 40}`,
			`{"passed": true, "score": 90}`,
		},
	}
	loop := New(agentrunner.New(rt, fakePreamble{}))

	var states []State
	task := orchestrator.Task{ID: "A", MaxRetries: 2, QCRole: "reviewer"}
	loop.Run(context.Background(), task, orchestrator.FullContext{TaskID: "A"}, func(s State, attempt int, t orchestrator.Task) {
		states = append(states, s)
	})

	want := []State{StateWorkerRunning, StateQCRunning, StateRetry, StateWorkerRunning, StateQCRunning, StateDone}
	if len(states) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(states), states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], states[i])
		}
	}
}
