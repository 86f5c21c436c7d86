// Command orchestrator wires the orchestrate/orchestrator package's C1-C9
// components to a real agent.Agent and submits a small sample workflow,
// printing progress events as they arrive. This is demonstration wiring, not
// part of the core (spec §1/§5: CLI surface and LLM invocation internals are
// both out of scope) — the same role cmd/kernel plays for the single-agent
// runtime.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tailored-agentic-units/orchestrator/agent"
	"github.com/tailored-agentic-units/orchestrator/core/config"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/agentrunner"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/eventbus"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/persist"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/registry"
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator/workflow"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Path to orchestrator config JSON file (uses defaults if empty)")
		agentConfig  = flag.String("agent-config", "", "Path to agent config JSON file (required)")
		workflowRoot = flag.String("workflow-root", ".", "Filesystem root artifacts are relative to")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if *agentConfig == "" {
		fmt.Fprintln(os.Stderr, "Usage: orchestrator -agent-config <file> [-config <file>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := orchestrator.DefaultConfig()
	if *configFile != "" {
		loaded, err := orchestrator.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load orchestrator config: %v", err)
		}
		cfg = *loaded
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	agentCfg, err := loadAgentConfig(*agentConfig)
	if err != nil {
		log.Fatalf("failed to load agent config: %v", err)
	}
	workerAgent, err := agent.New(agentCfg)
	if err != nil {
		log.Fatalf("failed to create agent: %v", err)
	}

	bus := eventbus.New(cfg.EventBufferSize)
	reg := registry.New()
	graph := newLogGraph(logger)
	persister := persist.New(graph, bus)
	runner := agentrunner.New(agentrunner.NewAgentAdapter(workerAgent), agentrunner.StaticPreamble{})

	wfRunner := workflow.New(reg, bus, persister, runner, staticContextProvider{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sub := bus.Subscribe(eventbus.Filter{})
	done := make(chan struct{})
	go func() {
		for ev := range sub.Events() {
			logger.Info("event", "kind", string(ev.Kind), "executionId", ev.ExecutionID, "payload", ev.Payload)
			if ev.Kind == eventbus.KindWorkflowCompleted || ev.Kind == eventbus.KindWorkflowCancelled {
				close(done)
				return
			}
		}
	}()

	tasks := sampleWorkflow()

	submission, err := wfRunner.Submit(ctx, tasks, workflow.Options{
		Concurrency:      cfg.Concurrency,
		PerTaskTimeoutMs: cfg.PerTaskTimeoutMs,
		WorkflowRoot:     *workflowRoot,
	})
	if err != nil {
		log.Fatalf("failed to submit workflow: %v", err)
	}
	fmt.Printf("submitted execution %s\n", submission.ExecutionID)

	select {
	case <-ctx.Done():
		submission.Cancel()
		<-done
	case <-done:
	}
}

func loadAgentConfig(filename string) (*config.AgentConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := config.DefaultAgentConfig()
	var loaded config.AgentConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}
	cfg.Merge(&loaded)
	return &cfg, nil
}

// sampleWorkflow mirrors spec §8's S1 scenario: a three-task linear chain
// with QC disabled, exercising the scheduler's dependency ordering.
func sampleWorkflow() []orchestrator.Task {
	return []orchestrator.Task{
		{ID: "A", Title: "Draft outline", Prompt: "Draft a short outline for a blog post about Go concurrency."},
		{ID: "B", Title: "Write body", Prompt: "Expand the outline into full paragraphs.", Dependencies: []string{"A"}},
		{ID: "C", Title: "Polish", Prompt: "Proofread and tighten the prose.", Dependencies: []string{"B"}},
	}
}
