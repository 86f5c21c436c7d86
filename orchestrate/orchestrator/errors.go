package orchestrator

import "errors"

// Sentinel errors forming the closed taxonomy of spec §7. Components wrap
// these with fmt.Errorf("...: %w", Err...) to attach detail; callers use
// errors.Is against these values, never string matching.
var (
	ErrInvalidWorkflow  = errors.New("invalidWorkflow")
	ErrAgentUnavailable = errors.New("agentUnavailable")
	ErrAgentTimeout     = errors.New("agentTimeout")
	ErrPromptTooLarge   = errors.New("promptTooLarge")
	ErrParseError       = errors.New("parseError")
	ErrQCSchemaInvalid  = errors.New("qcSchemaInvalid")
	ErrCapacityExceeded = errors.New("capacityExceeded")
	ErrDependencyFailed = errors.New("dependencyFailed")
	ErrCancelled        = errors.New("cancelled")
	ErrPersistError     = errors.New("persistError")

	ErrExecutionNotFound = errors.New("execution not found")
	ErrDuplicateTaskID   = errors.New("duplicate task id")
	ErrUnknownDependency = errors.New("dependency refers to unknown task")
	ErrCyclicDependency  = errors.New("dependency graph contains a cycle")
)

// taxonomy lists the closed set of spec §7 sentinels in the order Classify
// checks them.
var taxonomy = []error{
	ErrInvalidWorkflow,
	ErrAgentUnavailable,
	ErrAgentTimeout,
	ErrPromptTooLarge,
	ErrParseError,
	ErrQCSchemaInvalid,
	ErrCapacityExceeded,
	ErrDependencyFailed,
	ErrCancelled,
	ErrPersistError,
}

// Classify maps err to its spec §7 taxonomy name via errors.Is, so a wrapped
// sentinel (fmt.Errorf("...: %w", Err...)) classifies the same as the bare
// sentinel. Used by agentrunner to stamp ExecutionResult.Error
// with a consistent prefix. Returns "unknown" for an error outside the
// closed taxonomy.
func Classify(err error) string {
	for _, sentinel := range taxonomy {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "unknown"
}
