// Package mock provides a scriptable agent.Agent implementation for tests
// that exercise kernel and orchestrator logic without a live LLM backend.
package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/orchestrator/core/model"
	"github.com/tailored-agentic-units/orchestrator/core/protocol"
	"github.com/tailored-agentic-units/orchestrator/core/response"
)

// MockAgent is a test double for agent.Agent. Each method delegates to an
// overridable function field when set, and otherwise returns an empty
// successful response. Embed it and override individual methods to build
// more elaborate fixtures (see kernel's sequentialAgent for an example).
type MockAgent struct {
	id    string
	model *model.Model

	ChatFunc       func(ctx context.Context, prompt string, opts ...map[string]any) (*response.ChatResponse, error)
	VisionFunc     func(ctx context.Context, prompt string, images []string, opts ...map[string]any) (*response.ChatResponse, error)
	ToolsFunc      func(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error)
	EmbeddingsFunc func(ctx context.Context, input any, opts ...map[string]any) (*response.EmbeddingsResponse, error)
	AudioFunc      func(ctx context.Context, input string, audioOpts, opts map[string]any) (*response.AudioResponse, error)
}

// Option configures a MockAgent at construction time.
type Option func(*MockAgent)

// WithID sets a fixed agent ID, overriding the generated default.
func WithID(id string) Option {
	return func(m *MockAgent) { m.id = id }
}

// WithModel sets the model this mock reports via Model().
func WithModel(m *model.Model) Option {
	return func(a *MockAgent) { a.model = m }
}

// NewMockAgent creates a MockAgent with a random ID and an empty default
// model. All protocol methods return zero-value successful responses until
// overridden via the exported *Func fields or WithID/WithModel options.
func NewMockAgent(opts ...Option) *MockAgent {
	m := &MockAgent{
		id: uuid.Must(uuid.NewV7()).String(),
		model: &model.Model{
			Name:    "mock",
			Options: make(map[protocol.Protocol]map[string]any),
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockAgent) ID() string          { return m.id }
func (m *MockAgent) Model() *model.Model { return m.model }

func (m *MockAgent) Chat(ctx context.Context, prompt string, opts ...map[string]any) (*response.ChatResponse, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, prompt, opts...)
	}
	return &response.ChatResponse{Model: m.model.Name}, nil
}

func (m *MockAgent) Vision(ctx context.Context, prompt string, images []string, opts ...map[string]any) (*response.ChatResponse, error) {
	if m.VisionFunc != nil {
		return m.VisionFunc(ctx, prompt, images, opts...)
	}
	return &response.ChatResponse{Model: m.model.Name}, nil
}

func (m *MockAgent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	if m.ToolsFunc != nil {
		return m.ToolsFunc(ctx, messages, tools, opts...)
	}
	return &response.ToolsResponse{Model: m.model.Name}, nil
}

func (m *MockAgent) Embeddings(ctx context.Context, input any, opts ...map[string]any) (*response.EmbeddingsResponse, error) {
	if m.EmbeddingsFunc != nil {
		return m.EmbeddingsFunc(ctx, input, opts...)
	}
	return &response.EmbeddingsResponse{Model: m.model.Name}, nil
}

func (m *MockAgent) Audio(ctx context.Context, input string, audioOpts, opts map[string]any) (*response.AudioResponse, error) {
	if m.AudioFunc != nil {
		return m.AudioFunc(ctx, input, audioOpts, opts)
	}
	return &response.AudioResponse{}, nil
}
