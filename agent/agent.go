// Package agent implements the HTTP-backed Agent runtime that the kernel and
// orchestrator drive to converse with a configured LLM backend.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/orchestrator/agent/providers"
	"github.com/tailored-agentic-units/orchestrator/agent/request"
	"github.com/tailored-agentic-units/orchestrator/core/config"
	"github.com/tailored-agentic-units/orchestrator/core/model"
	"github.com/tailored-agentic-units/orchestrator/core/protocol"
	"github.com/tailored-agentic-units/orchestrator/core/response"
)

// Agent is a conversational LLM endpoint bound to one model and provider.
// Every method issues a single request/response round trip; callers manage
// conversation history themselves (the kernel does this via session.Session).
type Agent interface {
	// ID returns a stable identifier for this agent instance.
	ID() string

	// Chat sends a single user prompt, prefixed by the agent's system prompt
	// if one is configured, and returns the model's reply.
	Chat(ctx context.Context, prompt string, opts ...map[string]any) (*response.ChatResponse, error)

	// Vision sends a prompt alongside one or more images.
	Vision(ctx context.Context, prompt string, images []string, opts ...map[string]any) (*response.ChatResponse, error)

	// Tools sends a full message history and the available tool definitions,
	// letting the model request tool calls instead of (or before) a final reply.
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error)

	// Embeddings requests a vector embedding for the given input.
	Embeddings(ctx context.Context, input any, opts ...map[string]any) (*response.EmbeddingsResponse, error)

	// Audio requests a transcription of the given audio input.
	Audio(ctx context.Context, input string, audioOpts, opts map[string]any) (*response.AudioResponse, error)

	// Model returns the model configuration this agent was created with.
	Model() *model.Model
}

// httpAgent is the default Agent implementation, issuing JSON-over-HTTP
// requests to an OpenAI-compatible backend via a providers.Provider.
type httpAgent struct {
	id           string
	systemPrompt string
	provider     providers.Provider
	model        *model.Model
	client       *http.Client
}

// New creates an Agent from configuration. The provider is resolved from
// cfg.Provider; only Ollama-compatible backends are supported today.
func New(cfg *config.AgentConfig) (Agent, error) {
	if cfg.Provider == nil {
		return nil, ErrNoProvider
	}
	if cfg.Model == nil {
		return nil, ErrNoModel
	}

	p, err := providers.NewOllama(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	timeout := 30 * time.Second
	if cfg.Client != nil && cfg.Client.Timeout > 0 {
		timeout = cfg.Client.Timeout
	}

	id := cfg.Name
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	return &httpAgent{
		id:           id,
		systemPrompt: cfg.SystemPrompt,
		provider:     p,
		model:        newModel(cfg.Model),
		client:       &http.Client{Timeout: timeout},
	}, nil
}

func newModel(cfg *config.ModelConfig) *model.Model {
	opts := make(map[protocol.Protocol]map[string]any, len(cfg.Capabilities))
	for key, defaults := range cfg.Capabilities {
		if !protocol.IsValid(key) {
			continue
		}
		merged := make(map[string]any, len(defaults))
		for k, v := range defaults {
			merged[k] = v
		}
		opts[protocol.Protocol(key)] = merged
	}
	return &model.Model{Name: cfg.Name, Options: opts}
}

func (a *httpAgent) ID() string          { return a.id }
func (a *httpAgent) Model() *model.Model { return a.model }

func (a *httpAgent) mergedOptions(p protocol.Protocol, overrides ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for k, v := range a.model.Options[p] {
		merged[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}

func (a *httpAgent) history(prompt string) []protocol.Message {
	messages := make([]protocol.Message, 0, 2)
	if a.systemPrompt != "" {
		messages = append(messages, protocol.NewMessage(protocol.RoleSystem, a.systemPrompt))
	}
	messages = append(messages, protocol.NewMessage(protocol.RoleUser, prompt))
	return messages
}

func (a *httpAgent) Chat(ctx context.Context, prompt string, opts ...map[string]any) (*response.ChatResponse, error) {
	body, err := a.provider.Marshal(protocol.Chat, &providers.ChatData{
		Model:    a.model.Name,
		Messages: a.history(prompt),
		Options:  a.mergedOptions(protocol.Chat, opts...),
	})
	if err != nil {
		return nil, fmt.Errorf("agent chat: marshal failed: %w", err)
	}

	respBody, err := a.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, fmt.Errorf("agent chat: %w", err)
	}

	return response.ParseChat(respBody)
}

func (a *httpAgent) Vision(ctx context.Context, prompt string, images []string, opts ...map[string]any) (*response.ChatResponse, error) {
	body, err := a.provider.Marshal(protocol.Vision, &providers.VisionData{
		Model:    a.model.Name,
		Messages: a.history(prompt),
		Images:   images,
		Options:  a.mergedOptions(protocol.Vision, opts...),
	})
	if err != nil {
		return nil, fmt.Errorf("agent vision: marshal failed: %w", err)
	}

	respBody, err := a.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, fmt.Errorf("agent vision: %w", err)
	}

	return response.ParseChat(respBody)
}

func (a *httpAgent) Tools(ctx context.Context, messages []protocol.Message, toolDefs []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	history := messages
	if a.systemPrompt != "" && (len(messages) == 0 || messages[0].Role != protocol.RoleSystem) {
		history = append([]protocol.Message{protocol.NewMessage(protocol.RoleSystem, a.systemPrompt)}, messages...)
	}

	body, err := a.provider.Marshal(protocol.Tools, &providers.ToolsData{
		Model:    a.model.Name,
		Messages: history,
		Tools:    toolDefs,
		Options:  a.mergedOptions(protocol.Tools, opts...),
	})
	if err != nil {
		return nil, fmt.Errorf("agent tools: marshal failed: %w", err)
	}

	respBody, err := a.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, fmt.Errorf("agent tools: %w", err)
	}

	return response.ParseTools(respBody)
}

func (a *httpAgent) Embeddings(ctx context.Context, input any, opts ...map[string]any) (*response.EmbeddingsResponse, error) {
	body, err := a.provider.Marshal(protocol.Embeddings, &providers.EmbeddingsData{
		Model:   a.model.Name,
		Input:   input,
		Options: a.mergedOptions(protocol.Embeddings, opts...),
	})
	if err != nil {
		return nil, fmt.Errorf("agent embeddings: marshal failed: %w", err)
	}

	respBody, err := a.post(ctx, "/v1/embeddings", body)
	if err != nil {
		return nil, fmt.Errorf("agent embeddings: %w", err)
	}

	return response.ParseEmbeddings(respBody)
}

func (a *httpAgent) Audio(ctx context.Context, input string, audioOpts, opts map[string]any) (*response.AudioResponse, error) {
	mergedAudioOpts := a.mergedOptions(protocol.Audio, audioOpts)

	req := request.NewAudio(a.provider, a.model, input, mergedAudioOpts, opts)
	body, err := req.Marshal()
	if err != nil {
		return nil, fmt.Errorf("agent audio: marshal failed: %w", err)
	}

	respBody, err := a.post(ctx, "/v1/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("agent audio: %w", err)
	}

	return response.ParseAudio(respBody)
}

func (a *httpAgent) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.provider.BaseURL()+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
