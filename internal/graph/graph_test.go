package graph

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/d23ai/sahay-gateway/internal/turn"
)

func setText(text string) HandlerFunc {
	return func(_ context.Context, _ *turn.State) turn.Update {
		return turn.Update{ResponseText: text}
	}
}

func TestBuild_RequiresEntry(t *testing.T) {
	_, err := New("g").AddNode("a", setText("x")).AddEdge("a", End).Build()
	if err == nil || !strings.Contains(err.Error(), "entry") {
		t.Fatalf("expected entry error, got %v", err)
	}
}

func TestBuild_RejectsUnknownEdgeTarget(t *testing.T) {
	_, err := New("g").
		AddNode("a", setText("x")).
		AddEdge("a", "ghost").
		SetEntry("a").
		Build()
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected unknown target error, got %v", err)
	}
}

func TestBuild_RejectsNodeWithoutEdge(t *testing.T) {
	_, err := New("g").
		AddNode("a", setText("x")).
		AddNode("b", setText("y")).
		AddEdge("a", "b").
		SetEntry("a").
		Build()
	if err == nil || !strings.Contains(err.Error(), "no outgoing edge") {
		t.Fatalf("expected missing edge error, got %v", err)
	}
}

func TestBuild_RejectsDuplicateNode(t *testing.T) {
	_, err := New("g").
		AddNode("a", setText("x")).
		AddNode("a", setText("y")).
		AddEdge("a", End).
		SetEntry("a").
		Build()
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestRun_WalksToEnd(t *testing.T) {
	g, err := New("g").
		AddNode("a", func(_ context.Context, _ *turn.State) turn.Update {
			return turn.Update{Entities: map[string]any{"step": "a"}}
		}).
		AddNode("b", setText("done")).
		AddEdge("a", "b").
		AddEdge("b", End).
		SetEntry("a").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	state := &turn.State{}
	if err := g.Run(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if state.ResponseText != "done" || state.Entities["step"] != "a" {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestRun_RouterNodeHasNoHandler(t *testing.T) {
	g, err := New("g").
		AddNode("router", nil).
		AddNode("a", setText("left")).
		AddNode("b", setText("right")).
		AddConditionalEdge("router", func(s *turn.State) string {
			if s.Intent == "a" {
				return "a"
			}
			return "b"
		}, "a", "b").
		AddEdge("a", End).
		AddEdge("b", End).
		SetEntry("router").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	state := &turn.State{Intent: "a"}
	if err := g.Run(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if state.ResponseText != "left" {
		t.Errorf("expected left, got %q", state.ResponseText)
	}
}

func TestRun_PanicRecoveredAsFallback(t *testing.T) {
	g, err := New("g").
		AddNode("boom", func(_ context.Context, _ *turn.State) turn.Update {
			panic("kaboom")
		}).
		AddEdge("boom", End).
		SetEntry("boom").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	state := &turn.State{}
	if err := g.Run(context.Background(), state); err != nil {
		t.Fatalf("panic must not surface as error: %v", err)
	}
	if !state.ShouldFallback {
		t.Error("expected ShouldFallback after panic")
	}
	if !strings.Contains(state.Err, "kaboom") {
		t.Errorf("expected panic text in Err, got %q", state.Err)
	}
}

func TestRun_CyclicWalkBounded(t *testing.T) {
	g, err := New("g").
		AddNode("a", nil).
		AddNode("b", nil).
		AddEdge("a", "b").
		AddEdge("b", "a").
		SetEntry("a").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Run(context.Background(), &turn.State{}); err == nil {
		t.Fatal("expected step-bound error on cyclic graph")
	}
}

func TestSubgraph_ResultMergedBack(t *testing.T) {
	sub, err := New("sub").
		AddNode("inner", setText("from inner")).
		AddEdge("inner", End).
		SetEntry("inner").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	g, err := New("g").
		AddSubgraph("nested", sub, time.Second).
		AddEdge("nested", End).
		SetEntry("nested").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	state := &turn.State{}
	if err := g.Run(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if state.ResponseText != "from inner" {
		t.Errorf("expected inner response, got %q", state.ResponseText)
	}
}

func TestSubgraph_TimeoutSynthesizesMessage(t *testing.T) {
	sub, err := New("sub").
		AddNode("slow", func(ctx context.Context, _ *turn.State) turn.Update {
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
			}
			return turn.Update{ResponseText: "too late"}
		}).
		AddEdge("slow", End).
		SetEntry("slow").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	g, err := New("g").
		AddSubgraph("nested", sub, 20*time.Millisecond).
		AddEdge("nested", End).
		SetEntry("nested").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	state := &turn.State{}
	if err := g.Run(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(state.ResponseText, "took too long") {
		t.Errorf("expected timeout message, got %q", state.ResponseText)
	}
	if state.Err != "timeout" {
		t.Errorf("expected timeout err marker, got %q", state.Err)
	}
}
