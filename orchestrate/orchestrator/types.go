// Package orchestrator defines the shared data model for the multi-agent
// workflow orchestration engine: tasks, execution state, results, artifacts,
// and the context views agents receive. Subpackages (eventbus, registry,
// ctxfilter, artifacts, agentrunner, qcloop, dagsched, persist, workflow)
// each own one pipeline stage and depend on these types, not on each other,
// except where the workflow package wires them together.
package orchestrator

import (
	"slices"
	"sync"
)

// TaskStatus is a task's position in the pending -> executing -> terminal
// lattice. No other transitions are permitted.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskExecuting TaskStatus = "executing"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// ExecutionStatus is the terminal or running status of a whole workflow run.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// ResultStatus is the outcome of one finished task attempt.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailure ResultStatus = "failure"
)

// AgentRole selects which preamble and parsing rules the agent runner uses.
type AgentRole string

const (
	RoleWorker AgentRole = "worker"
	RoleQC     AgentRole = "qc"
)

// AgentKind selects a context filter's allowlist (§4.3). Distinct from
// AgentRole: "pm" has no corresponding runner role, it is the unfiltered view
// used by callers that need the full context (e.g. persistence, debugging).
type AgentKind string

const (
	KindPM     AgentKind = "pm"
	KindWorker AgentKind = "worker"
	KindQC     AgentKind = "qc"
)

// Task is an immutable node in the workflow DAG.
type Task struct {
	ID                   string
	Title                string
	Prompt               string
	Dependencies         []string
	AgentRoleDescription string
	QCRole               string
	VerificationCriteria []string
	MaxRetries           int
	RecommendedModel     string
}

// QCEnabled reports whether this task requires QC verification.
func (t Task) QCEnabled() bool {
	return t.QCRole != ""
}

// TokenUsage tallies prompt/completion tokens reported by an agent call.
type TokenUsage struct {
	Input  int
	Output int
}

// QCVerification is the structured judgment produced by a QC agent.
type QCVerification struct {
	Passed        bool
	Score         int
	Feedback      string
	Issues        []string
	RequiredFixes []string
}

// Accepted applies the fixed acceptance rule: passed and score >= 70.
func (v QCVerification) Accepted() bool {
	return v.Passed && v.Score >= 70
}

// ExecutionResult is the outcome of a task attempt that became final.
type ExecutionResult struct {
	TaskID         string
	Status         ResultStatus
	Output         string
	Error          string
	DurationMs     int64
	AttemptNumber  int
	Tokens         TokenUsage
	ToolCalls      int
	QCVerification *QCVerification
}

// Artifact is a named byte-string produced by a task.
type Artifact struct {
	Filename string
	Content  string
	MimeType string
	Size     int
}

// ExecutionState is the mutable, per-run state owned by the workflow runner.
// Per spec §5, the only shared mutable state is this struct and the
// registry; all field reads/writes happen under its own lock so that the
// DAG scheduler, QC loop, and persister can report task completions
// concurrently without racing on the same execution.
type ExecutionState struct {
	mu sync.Mutex

	ExecutionID   string
	Status        ExecutionStatus
	TaskStatuses  map[string]TaskStatus
	CurrentTaskID string
	Results       []ExecutionResult
	Deliverables  []Artifact
	StartTimeMs   int64
	EndTimeMs     int64
	Error         string
	Cancelled     bool

	// deliverableIndex maps a filename already present in Deliverables to its
	// slice position, so AppendArtifacts can replace in place instead of
	// appending a duplicate (spec §3/§4.4 last-writer-wins uniqueness).
	deliverableIndex map[string]int
}

// NewExecutionState creates a running ExecutionState for the given task ids,
// all initially pending.
func NewExecutionState(executionID string, taskIDs []string, startTimeMs int64) *ExecutionState {
	statuses := make(map[string]TaskStatus, len(taskIDs))
	for _, id := range taskIDs {
		statuses[id] = TaskPending
	}
	return &ExecutionState{
		ExecutionID:  executionID,
		Status:       ExecutionRunning,
		TaskStatuses: statuses,
		StartTimeMs:  startTimeMs,
	}
}

// SetTaskStatus transitions a task's status under the execution lock.
func (s *ExecutionState) SetTaskStatus(taskID string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TaskStatuses[taskID] = status
	s.CurrentTaskID = taskID
}

// TaskStatus returns a task's current status under the execution lock.
func (s *ExecutionState) TaskStatus(taskID string) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TaskStatuses[taskID]
}

// AppendResult records a finished task attempt and marks the workflow
// failed the first time any task fails, under the execution lock.
func (s *ExecutionState) AppendResult(result ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Results = append(s.Results, result)
	if result.Status == ResultFailure && s.Status == ExecutionRunning {
		s.Status = ExecutionFailed
		if s.Error == "" {
			s.Error = result.Error
		}
	}
}

// ArtifactAppendResult reports, for one artifact passed to AppendArtifacts,
// whether it replaced an existing deliverable with the same filename.
type ArtifactAppendResult struct {
	Artifact Artifact
	Replaced bool
}

// AppendArtifacts records deliverables produced by a task, under the
// execution lock. Filenames are unique within a workflow (spec §3): a
// filename already present in Deliverables has its content/size replaced in
// place (last-writer-wins, per spec §4.4) rather than appended as a
// duplicate. The returned slice tells the caller which artifacts replaced an
// existing deliverable, so it can publish artifactCaptured with the right
// replaced flag.
func (s *ExecutionState) AppendArtifacts(artifacts ...Artifact) []ArtifactAppendResult {
	if len(artifacts) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deliverableIndex == nil {
		s.deliverableIndex = make(map[string]int, len(artifacts))
	}

	results := make([]ArtifactAppendResult, 0, len(artifacts))
	for _, a := range artifacts {
		if idx, exists := s.deliverableIndex[a.Filename]; exists {
			s.Deliverables[idx] = a
			results = append(results, ArtifactAppendResult{Artifact: a, Replaced: true})
			continue
		}
		s.Deliverables = append(s.Deliverables, a)
		s.deliverableIndex[a.Filename] = len(s.Deliverables) - 1
		results = append(results, ArtifactAppendResult{Artifact: a, Replaced: false})
	}
	return results
}

// Cancel sets the cancellation latch. Idempotent: repeated calls have no
// additional effect, satisfying spec §5's cancellation-is-idempotent rule.
func (s *ExecutionState) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cancelled = true
}

// IsCancelled reports whether Cancel has been called.
func (s *ExecutionState) IsCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Cancelled
}

// Finalize sets the terminal status and end time exactly once.
func (s *ExecutionState) Finalize(status ExecutionStatus, endTimeMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status == ExecutionRunning {
		s.Status = status
	} else if status == ExecutionCancelled {
		// Cancellation always wins the final label even if a task had
		// already flipped Status to failed, per spec §4.7 cancellation
		// semantics ("the workflow's final status is cancelled").
		s.Status = status
	}
	s.EndTimeMs = endTimeMs
}

// Snapshot returns a value copy of the exported state, safe to read without
// holding the execution's lock afterward. Slices/maps are cloned.
func (s *ExecutionState) Snapshot() ExecutionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make(map[string]TaskStatus, len(s.TaskStatuses))
	for k, v := range s.TaskStatuses {
		statuses[k] = v
	}

	return ExecutionState{
		ExecutionID:   s.ExecutionID,
		Status:        s.Status,
		TaskStatuses:  statuses,
		CurrentTaskID: s.CurrentTaskID,
		Results:       slices.Clone(s.Results),
		Deliverables:  slices.Clone(s.Deliverables),
		StartTimeMs:   s.StartTimeMs,
		EndTimeMs:     s.EndTimeMs,
		Error:         s.Error,
		Cancelled:     s.Cancelled,
	}
}

// FullContext is the unreduced project context given to the context filter.
type FullContext struct {
	TaskID        string
	Title         string
	Requirements  string
	Description   string
	Files         []string
	Research      string
	PlanningNotes string
	AllFiles      []string
	FullSubgraph  string
	Status        TaskStatus
	Priority      int
}

// WorkerContext is the reduced view a worker agent receives.
type WorkerContext struct {
	TaskID        string
	Title         string
	Requirements  string
	Description   string
	Files         []string
	Status        TaskStatus
	Priority      int
	AttemptNumber int
	ErrorContext  string
}

// QCContext is the reduced view a QC agent receives: the worker view plus
// the fields needed to judge the worker's output.
type QCContext struct {
	WorkerContext
	OriginalRequirements string
	VerificationCriteria []string
	WorkerOutput         string
}

// FilterMetrics reports how much a context filter reduced an input.
type FilterMetrics struct {
	OriginalSize     int
	FilteredSize     int
	ReductionPercent float64
	FieldsRemoved    []string
	FieldsRetained   []string
}
