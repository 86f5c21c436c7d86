// Package model describes LLM models and their per-protocol option overrides.
package model

import "github.com/tailored-agentic-units/orchestrator/core/protocol"

// Model names a concrete LLM model and carries protocol-specific option
// overrides (e.g. chat temperature, tools max_tokens) layered on top of an
// agent's base request options at call time.
type Model struct {
	Name    string
	Options map[protocol.Protocol]map[string]any
}
