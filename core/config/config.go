// Package config holds the JSON-serializable configuration for agents,
// their providers, models, and HTTP clients, following the same
// default-then-Merge convention used by every other subsystem in this module.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ClientConfig holds HTTP client initialization parameters shared by every
// provider request.
type ClientConfig struct {
	Timeout    time.Duration `json:"timeout,omitempty"`
	MaxRetries int           `json:"max_retries,omitempty"`
}

// DefaultClientConfig returns sensible HTTP client defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}

// Merge applies non-zero values from source into c.
func (c *ClientConfig) Merge(source *ClientConfig) {
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
}

// ProviderConfig identifies a backend and where to reach it.
type ProviderConfig struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

// Merge applies non-zero values from source into c.
func (c *ProviderConfig) Merge(source *ProviderConfig) {
	if source == nil {
		return
	}
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
}

// ModelConfig names the model to call and the protocols it supports.
// Capabilities maps a protocol name (e.g. "chat", "tools") to its default
// request options; an entry's presence is what Registry.Capabilities reports,
// regardless of whether its option map is empty.
type ModelConfig struct {
	Name         string                    `json:"name"`
	Capabilities map[string]map[string]any `json:"capabilities,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *ModelConfig) Merge(source *ModelConfig) {
	if source == nil {
		return
	}
	if source.Name != "" {
		c.Name = source.Name
	}
	if len(source.Capabilities) > 0 {
		c.Capabilities = source.Capabilities
	}
}

// AgentConfig holds everything needed to instantiate a single agent: which
// backend to call, which model to request, and the system prompt that frames
// every conversation it holds.
type AgentConfig struct {
	Name         string          `json:"name,omitempty"`
	SystemPrompt string          `json:"system_prompt,omitempty"`
	Client       *ClientConfig   `json:"client,omitempty"`
	Provider     *ProviderConfig `json:"provider,omitempty"`
	Model        *ModelConfig    `json:"model,omitempty"`
}

// DefaultAgentConfig returns an AgentConfig pointed at a local Ollama
// instance running a small default model, with chat capability enabled.
// Callers override Provider/Model via Merge or functional options to target
// a real backend.
func DefaultAgentConfig() AgentConfig {
	client := DefaultClientConfig()
	return AgentConfig{
		Client: &client,
		Provider: &ProviderConfig{
			Name:    "ollama",
			BaseURL: "http://localhost:11434",
		},
		Model: &ModelConfig{
			Name: "llama3",
			Capabilities: map[string]map[string]any{
				"chat": {},
			},
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}

	if source.Client != nil {
		if c.Client == nil {
			client := DefaultClientConfig()
			c.Client = &client
		}
		c.Client.Merge(source.Client)
	}

	if source.Provider != nil {
		if c.Provider == nil {
			c.Provider = &ProviderConfig{}
		}
		c.Provider.Merge(source.Provider)
	}

	if source.Model != nil {
		if c.Model == nil {
			c.Model = &ModelConfig{}
		}
		c.Model.Merge(source.Model)
	}
}

// LoadAgentConfig reads a JSON agent config file, merges it over
// DefaultAgentConfig, and returns the result.
func LoadAgentConfig(filename string) (*AgentConfig, error) {
	cfg := DefaultAgentConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent config file: %w", err)
	}

	var loaded AgentConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse agent config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
