package main

import (
	"context"
	"log/slog"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"
)

// logGraph is a minimal in-process stand-in for the external graph database
// spec §6 keeps out of the core: it logs every write and tracks which ids
// and edges it has already seen so CreateNode/CreateEdge stay idempotent,
// the contract persist.Persister depends on. Not part of the orchestrator
// itself; it exists only so cmd/orchestrator has something to wire in place
// of a real graph-DB client.
type logGraph struct {
	logger *slog.Logger

	mu    sync.Mutex
	nodes map[string]bool
	edges map[string]bool
}

func newLogGraph(logger *slog.Logger) *logGraph {
	return &logGraph{
		logger: logger,
		nodes:  make(map[string]bool),
		edges:  make(map[string]bool),
	}
}

func (g *logGraph) CreateNode(ctx context.Context, typ string, props *structpb.Struct) error {
	var id string
	if v, ok := props.Fields["id"]; ok {
		id = v.GetStringValue()
	}

	g.mu.Lock()
	existed := g.nodes[id]
	g.nodes[id] = true
	g.mu.Unlock()

	if existed {
		return g.UpdateNode(ctx, id, props)
	}
	g.logger.Info("graph.createNode", "type", typ, "id", id)
	return nil
}

func (g *logGraph) UpdateNode(ctx context.Context, id string, props *structpb.Struct) error {
	g.logger.Info("graph.updateNode", "id", id)
	return nil
}

func (g *logGraph) CreateEdge(ctx context.Context, from, to, typ string, props *structpb.Struct) error {
	key := from + "|" + to + "|" + typ

	g.mu.Lock()
	existed := g.edges[key]
	g.edges[key] = true
	g.mu.Unlock()

	if existed {
		return nil
	}
	g.logger.Info("graph.createEdge", "from", from, "to", to, "type", typ)
	return nil
}

func (g *logGraph) Close() error { return nil }
