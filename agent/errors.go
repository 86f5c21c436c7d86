package agent

import "errors"

var (
	ErrAgentNotFound   = errors.New("agent not found")
	ErrAgentExists     = errors.New("agent already registered")
	ErrEmptyAgentName  = errors.New("agent name must not be empty")
	ErrNoProvider      = errors.New("agent config: provider is required")
	ErrNoModel         = errors.New("agent config: model is required")
	ErrUnsupportedCall = errors.New("agent: protocol not supported by this request")
)
