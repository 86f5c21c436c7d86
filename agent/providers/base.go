package providers

import (
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/orchestrator/core/config"
	"github.com/tailored-agentic-units/orchestrator/core/protocol"
)

// Provider marshals protocol-specific request data into the wire format a
// concrete backend expects. Implementations are stateless beyond identity
// (name, base URL); actual transport lives in the request package.
type Provider interface {
	// Name returns the provider's identifier (e.g. "ollama").
	Name() string

	// BaseURL returns the provider's API base URL.
	BaseURL() string

	// Marshal converts protocol-specific data into a JSON request body.
	Marshal(p protocol.Protocol, data any) ([]byte, error)
}

// BaseProvider implements Provider for backends whose request bodies follow
// the common OpenAI-compatible shape: a "model" field, a protocol-specific
// payload field, and option maps flattened to top-level keys.
type BaseProvider struct {
	name    string
	baseURL string
}

// NewBaseProvider creates a BaseProvider with the given name and base URL.
func NewBaseProvider(name, baseURL string) *BaseProvider {
	return &BaseProvider{name: name, baseURL: baseURL}
}

// NewOllama creates a Provider configured for an Ollama-compatible backend.
func NewOllama(cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ollama provider: config is nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama provider: base URL is required")
	}
	name := cfg.Name
	if name == "" {
		name = "ollama"
	}
	return NewBaseProvider(name, cfg.BaseURL), nil
}

func (p *BaseProvider) Name() string    { return p.name }
func (p *BaseProvider) BaseURL() string { return p.baseURL }

func (p *BaseProvider) Marshal(proto protocol.Protocol, data any) ([]byte, error) {
	switch proto {
	case protocol.Chat:
		d, ok := data.(*ChatData)
		if !ok {
			return nil, fmt.Errorf("chat marshal: expected *ChatData, got %T", data)
		}
		body := map[string]any{
			"model":    d.Model,
			"messages": d.Messages,
		}
		mergeOptions(body, d.Options)
		return json.Marshal(body)

	case protocol.Vision:
		d, ok := data.(*VisionData)
		if !ok {
			return nil, fmt.Errorf("vision marshal: expected *VisionData, got %T", data)
		}
		body := map[string]any{
			"model":    d.Model,
			"messages": d.Messages,
			"images":   d.Images,
		}
		mergeOptions(body, d.VisionOptions)
		mergeOptions(body, d.Options)
		return json.Marshal(body)

	case protocol.Tools:
		d, ok := data.(*ToolsData)
		if !ok {
			return nil, fmt.Errorf("tools marshal: expected *ToolsData, got %T", data)
		}
		body := map[string]any{
			"model":    d.Model,
			"messages": d.Messages,
			"tools":    d.Tools,
		}
		mergeOptions(body, d.Options)
		return json.Marshal(body)

	case protocol.Embeddings:
		d, ok := data.(*EmbeddingsData)
		if !ok {
			return nil, fmt.Errorf("embeddings marshal: expected *EmbeddingsData, got %T", data)
		}
		body := map[string]any{
			"model": d.Model,
			"input": d.Input,
		}
		mergeOptions(body, d.Options)
		return json.Marshal(body)

	case protocol.Audio:
		d, ok := data.(*AudioData)
		if !ok {
			return nil, fmt.Errorf("audio marshal: expected *AudioData, got %T", data)
		}
		body := map[string]any{
			"model": d.Model,
			"input": d.Input,
		}
		mergeOptions(body, d.AudioOptions)
		mergeOptions(body, d.Options)
		return json.Marshal(body)

	default:
		return nil, fmt.Errorf("unsupported protocol: %s", proto)
	}
}

func mergeOptions(body map[string]any, options map[string]any) {
	for k, v := range options {
		body[k] = v
	}
}
