// Package agentrunner implements C5: the single-task primitive that
// assembles a prompt, invokes the pluggable agent runtime, and parses the
// reply into an ExecutionResult (spec §4.5). The LLM invocation itself is
// explicitly out of scope (spec §1); Runtime is the narrow interface spec §6
// requires from it.
package agentrunner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

// Invocation is the request shape passed to the agent runtime (spec §6).
type Invocation struct {
	Prompt string
	Model  string
}

// Reply is the runtime's response (spec §6).
type Reply struct {
	Text         string
	InputTokens  int
	OutputTokens int
	ToolCalls    int
}

// Runtime is the pluggable LLM-backed callable. Implementations must honor
// ctx cancellation at their next I/O boundary (spec §5 suspension points,
// §6 "must honor the cancellation signal").
type Runtime interface {
	Invoke(ctx context.Context, inv Invocation) (Reply, error)
}

// Preamble supplies the role-specific framing text prepended to every
// prompt the runner assembles. This module never hardcodes role prose: a
// caller-supplied Preamble keeps "preamble-template loading and
// role-description generation" (spec §1 non-goal) outside the core.
type Preamble interface {
	Worker(task orchestrator.Task, view orchestrator.WorkerContext) string
	QC(task orchestrator.Task, view orchestrator.QCContext) string
}

// Runner executes a single worker-or-QC invocation.
type Runner struct {
	runtime  Runtime
	preamble Preamble
}

// New creates a Runner over the given runtime and preamble source.
func New(runtime Runtime, preamble Preamble) *Runner {
	return &Runner{runtime: runtime, preamble: preamble}
}

// RunWorker assembles a worker prompt and returns the resulting result. feedback
// is non-empty only on a retry attempt.
func (r *Runner) RunWorker(ctx context.Context, task orchestrator.Task, view orchestrator.WorkerContext, attemptNumber int, feedback string) (orchestrator.ExecutionResult, error) {
	prompt := r.preamble.Worker(task, view)
	prompt += "\n\n" + task.Prompt
	if feedback != "" {
		prompt += "\n\nFeedback from previous attempt:\n" + feedback
	}

	return r.invoke(ctx, task, prompt, attemptNumber, false)
}

// RunQC assembles a QC prompt and parses the reply's qcVerification object.
func (r *Runner) RunQC(ctx context.Context, task orchestrator.Task, view orchestrator.QCContext, attemptNumber int) (orchestrator.ExecutionResult, error) {
	prompt := r.preamble.QC(task, view)

	return r.invoke(ctx, task, prompt, attemptNumber, true)
}

func (r *Runner) invoke(ctx context.Context, task orchestrator.Task, prompt string, attemptNumber int, isQC bool) (orchestrator.ExecutionResult, error) {
	const maxPromptBytes = 1 << 20 // 1 MiB; guards against unbounded context growth
	if len(prompt) > maxPromptBytes {
		return orchestrator.ExecutionResult{
			TaskID:        task.ID,
			Status:        orchestrator.ResultFailure,
			Error:         fmt.Sprintf("%s: prompt is %d bytes (max %d)", orchestrator.Classify(orchestrator.ErrPromptTooLarge), len(prompt), maxPromptBytes),
			AttemptNumber: attemptNumber,
		}, orchestrator.ErrPromptTooLarge
	}

	start := time.Now()
	reply, err := r.runtime.Invoke(ctx, Invocation{Prompt: prompt, Model: task.RecommendedModel})
	duration := time.Since(start)

	if err != nil {
		sentinel := classifySentinel(ctx, err)
		return orchestrator.ExecutionResult{
			TaskID:        task.ID,
			Status:        orchestrator.ResultFailure,
			Error:         fmt.Sprintf("%s: %v", orchestrator.Classify(sentinel), err),
			DurationMs:    duration.Milliseconds(),
			AttemptNumber: attemptNumber,
		}, sentinel
	}

	result := orchestrator.ExecutionResult{
		TaskID:        task.ID,
		Status:        orchestrator.ResultSuccess,
		Output:        reply.Text,
		DurationMs:    duration.Milliseconds(),
		AttemptNumber: attemptNumber,
		Tokens:        orchestrator.TokenUsage{Input: max0(reply.InputTokens), Output: max0(reply.OutputTokens)},
		ToolCalls:     max0(reply.ToolCalls),
	}

	if isQC {
		verification, perr := ParseQCVerification(reply.Text)
		if perr != nil {
			result.Status = orchestrator.ResultFailure
			result.Error = fmt.Sprintf("%s: %v", orchestrator.Classify(orchestrator.ErrQCSchemaInvalid), perr)
			return result, orchestrator.ErrQCSchemaInvalid
		}
		result.QCVerification = &verification
	}

	return result, nil
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// classifySentinel maps a runtime error to the spec §4.5 failure taxonomy's
// sentinel value; orchestrator.Classify then turns that into the taxonomy
// name stamped onto ExecutionResult.Error.
func classifySentinel(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return orchestrator.ErrAgentTimeout
		}
		return orchestrator.ErrCancelled
	}
	return orchestrator.ErrAgentUnavailable
}

// qcSchema is the JSON shape a QC agent's reply must conform to, embedded
// somewhere in its free-form text as a single JSON object.
type qcSchema struct {
	Passed        bool     `json:"passed"`
	Score         int      `json:"score"`
	Feedback      string   `json:"feedback"`
	Issues        []string `json:"issues"`
	RequiredFixes []string `json:"requiredFixes"`
}

// ParseQCVerification extracts the qcVerification JSON object from a QC
// agent's free-form reply. It scans for the first balanced `{...}` span and
// parses that, tolerating surrounding prose.
func ParseQCVerification(text string) (orchestrator.QCVerification, error) {
	span, ok := firstJSONObject(text)
	if !ok {
		return orchestrator.QCVerification{}, fmt.Errorf("no JSON object found in QC reply")
	}

	var schema qcSchema
	if err := json.Unmarshal([]byte(span), &schema); err != nil {
		return orchestrator.QCVerification{}, fmt.Errorf("invalid qcVerification JSON: %w", err)
	}

	return orchestrator.QCVerification{
		Passed:        schema.Passed,
		Score:         schema.Score,
		Feedback:      schema.Feedback,
		Issues:        schema.Issues,
		RequiredFixes: schema.RequiredFixes,
	}, nil
}

// firstJSONObject returns the first balanced-brace substring of text.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
