package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/metrics"
	"github.com/d23ai/sahay-gateway/internal/turn"
)

// End is the terminal sentinel. An edge returning End finishes the walk.
const End = "__end__"

// maxSteps bounds one walk so a miswired edge table cannot spin forever.
const maxSteps = 32

// HandlerFunc is the single signature every node handler conforms to.
// Capability-specific parameters travel inside the state's entity map.
type HandlerFunc func(ctx context.Context, state *turn.State) turn.Update

// EdgeFunc selects the next node name from the current turn state.
// It must be a pure function of the state and total over its inputs.
type EdgeFunc func(state *turn.State) string

type node struct {
	handler HandlerFunc
	sub     *Graph
	timeout time.Duration
}

// Graph is a validated routing graph. Build once at startup, then walk
// per turn. A Graph is immutable after Build and safe for concurrent use.
type Graph struct {
	name   string
	entry  string
	nodes  map[string]node
	edges  map[string]edge
	logger *slog.Logger
}

type edge struct {
	fn      EdgeFunc
	targets []string
}

// Builder assembles a Graph. Validation happens in Build: an unchecked
// graph is a startup error, never a runtime fallback.
type Builder struct {
	name  string
	entry string
	nodes map[string]node
	edges map[string]edge
	errs  []error
}

// New creates a graph builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]node),
		edges: make(map[string]edge),
	}
}

// AddNode registers a handler node.
func (b *Builder) AddNode(name string, h HandlerFunc) *Builder {
	if _, dup := b.nodes[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate node %q", name))
		return b
	}
	b.nodes[name] = node{handler: h}
	return b
}

// AddSubgraph registers a nested graph as a node. The nested walk is
// bounded by timeout; on expiry the node synthesizes a user-facing
// timeout message instead of propagating an error.
func (b *Builder) AddSubgraph(name string, sub *Graph, timeout time.Duration) *Builder {
	if _, dup := b.nodes[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate node %q", name))
		return b
	}
	b.nodes[name] = node{sub: sub, timeout: timeout}
	return b
}

// AddEdge registers an unconditional edge from one node to the next.
func (b *Builder) AddEdge(from, to string) *Builder {
	return b.AddConditionalEdge(from, func(*turn.State) string { return to }, to)
}

// AddConditionalEdge registers a conditional edge. The edge function may
// only return names listed in targets (or End); Build verifies every
// target exists.
func (b *Builder) AddConditionalEdge(from string, fn EdgeFunc, targets ...string) *Builder {
	if _, dup := b.edges[from]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate edge from %q", from))
		return b
	}
	b.edges[from] = edge{fn: fn, targets: targets}
	return b
}

// SetEntry sets the node the walk starts from.
func (b *Builder) SetEntry(name string) *Builder {
	b.entry = name
	return b
}

// Build validates the graph and returns it. Every edge source and every
// declared edge target must name a registered node or End, and the entry
// node must exist.
func (b *Builder) Build() (*Graph, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.entry == "" {
		return nil, fmt.Errorf("graph %s: entry node not set", b.name)
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("graph %s: entry node %q not registered", b.name, b.entry)
	}
	for from, e := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("graph %s: edge from unknown node %q", b.name, from)
		}
		for _, to := range e.targets {
			if to == End {
				continue
			}
			if _, ok := b.nodes[to]; !ok {
				return nil, fmt.Errorf("graph %s: edge %q -> unknown node %q", b.name, from, to)
			}
		}
	}
	for name := range b.nodes {
		if _, ok := b.edges[name]; !ok {
			return nil, fmt.Errorf("graph %s: node %q has no outgoing edge", b.name, name)
		}
	}
	return &Graph{
		name:   b.name,
		entry:  b.entry,
		nodes:  b.nodes,
		edges:  b.edges,
		logger: logging.WithComponent("graph." + b.name),
	}, nil
}

// Run walks the graph from the entry node to End, invoking handlers and
// merging their updates into state. Handler panics are recovered at the
// node boundary and surface as a fallback turn, never as a crash.
func (g *Graph) Run(ctx context.Context, state *turn.State) error {
	current := g.entry
	for step := 0; step < maxSteps; step++ {
		n, ok := g.nodes[current]
		if !ok {
			return fmt.Errorf("graph %s: walk reached unknown node %q", g.name, current)
		}

		g.invoke(ctx, current, n, state)

		e, ok := g.edges[current]
		if !ok {
			return fmt.Errorf("graph %s: node %q has no outgoing edge", g.name, current)
		}
		next := e.fn(state)
		if next == End {
			return nil
		}
		current = next
	}
	return fmt.Errorf("graph %s: walk exceeded %d steps", g.name, maxSteps)
}

func (g *Graph) invoke(ctx context.Context, name string, n node, state *turn.State) {
	start := time.Now()
	defer func() {
		metrics.HandlerDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if n.sub != nil {
		state.Apply(g.runSubgraph(ctx, name, n, state))
		return
	}
	if n.handler == nil {
		return
	}
	state.Apply(g.safeInvoke(ctx, name, n.handler, state))
}

// safeInvoke runs a handler with panic recovery. A handler failure is
// recorded into the state and routed through the fallback node; the
// original error text is kept for logging only.
func (g *Graph) safeInvoke(ctx context.Context, name string, h HandlerFunc, state *turn.State) (u turn.Update) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerErrors.WithLabelValues(name).Inc()
			g.logger.Error("handler panicked", "node", name, "panic", fmt.Sprint(r))
			u = turn.Update{
				ShouldFallback: true,
				Err:            fmt.Sprintf("panic in node %s: %v", name, r),
			}
		}
	}()
	return h(ctx, state)
}

// runSubgraph executes a nested graph on a copy of the state under the
// node's time ceiling. On success the copy's outcome fields are merged
// back; on timeout the copy is abandoned and a timeout message is
// synthesized.
func (g *Graph) runSubgraph(ctx context.Context, name string, n node, state *turn.State) turn.Update {
	timeout := n.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	subCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	copied := state.Clone()
	done := make(chan error, 1)
	go func() {
		done <- n.sub.Run(subCtx, copied)
	}()

	select {
	case err := <-done:
		if err != nil {
			metrics.HandlerErrors.WithLabelValues(name).Inc()
			g.logger.Error("sub-graph failed", "node", name, "error", err)
			return turn.Update{
				ShouldFallback: true,
				Err:            fmt.Sprintf("sub-graph %s: %v", name, err),
			}
		}
		return turn.Update{
			Intent:         copied.Intent,
			Entities:       copied.Entities,
			ResponseText:   copied.ResponseText,
			ResponseKind:   copied.ResponseKind,
			ShouldFallback: copied.ShouldFallback,
			Err:            copied.Err,
			ToolResult:     copied.ToolResult,
		}
	case <-subCtx.Done():
		metrics.SubgraphTimeouts.Inc()
		g.logger.Error("sub-graph timed out", "node", name, "timeout", timeout)
		return turn.Update{
			ResponseText: "Sorry, the request took too long. Please try again.",
			ResponseKind: "text",
			Err:          "timeout",
		}
	}
}

// Entry returns the entry node name.
func (g *Graph) Entry() string { return g.entry }

// HasNode reports whether the graph contains the named node.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}
