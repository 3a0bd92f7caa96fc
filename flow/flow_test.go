package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func addOne(_ context.Context, n int) (int, error)  { return n + 1, nil }
func double(_ context.Context, n int) (int, error)  { return n * 2, nil }
func explode(_ context.Context, n int) (int, error) { return n, errors.New("boom") }

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*Machine[int], error)
		wantErr string
	}{
		{
			name: "empty builder",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().Build()
			},
			wantErr: "at least one node",
		},
		{
			name: "missing entry",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddEdge("a", End).
					Build()
			},
			wantErr: "entry node not set",
		},
		{
			name: "entry does not exist",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddEdge("a", End).
					SetEntry("ghost").
					Build()
			},
			wantErr: "does not exist",
		},
		{
			name: "duplicate node ID",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddNode("a", double).
					AddEdge("a", End).
					SetEntry("a").
					Build()
			},
			wantErr: "duplicate node ID",
		},
		{
			name: "nil node",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", nil).
					SetEntry("a").
					Build()
			},
			wantErr: "must not be nil",
		},
		{
			name: "reserved node ID",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode(End, addOne).
					SetEntry(End).
					Build()
			},
			wantErr: "reserved",
		},
		{
			name: "self loop",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddEdge("a", "a").
					SetEntry("a").
					Build()
			},
			wantErr: "self-loop",
		},
		{
			name: "second outgoing edge",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddNode("b", double).
					AddEdge("a", "b").
					AddEdge("a", End).
					AddEdge("b", End).
					SetEntry("a").
					Build()
			},
			wantErr: "already has an outgoing edge",
		},
		{
			name: "no edge into End",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddNode("b", double).
					AddEdge("a", "b").
					SetEntry("a").
					Build()
			},
			wantErr: "exactly one edge into the End marker",
		},
		{
			name: "edge targets unknown node",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddEdge("a", "ghost").
					SetEntry("a").
					Build()
			},
			wantErr: "non-existent node",
		},
		{
			name: "orphan node unreachable from entry",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddNode("orphan", double).
					AddEdge("a", End).
					AddEdge("orphan", End).
					SetEntry("a").
					Build()
			},
			wantErr: "exactly one edge into the End marker",
		},
		{
			name: "dead-end node",
			build: func() (*Machine[int], error) {
				return NewBuilder[int]().
					AddNode("a", addOne).
					AddNode("b", double).
					AddEdge("a", End).
					SetEntry("b").
					Build()
			},
			wantErr: "no outgoing edge",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			machine, err := test.build()
			if err == nil {
				t.Fatalf("Build() succeeded, want error containing %q", test.wantErr)
			}
			if machine != nil {
				t.Error("Build() returned a machine alongside an error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Build() error = %v, want substring %q", err, test.wantErr)
			}
		})
	}
}

func TestRunThreadsState(t *testing.T) {
	machine, err := NewBuilder[int]().
		AddNode("double", double).
		AddNode("inc", addOne).
		AddEdge("double", "inc").
		AddEdge("inc", End).
		SetEntry("double").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	final, trace, err := machine.Run(context.Background(), 20)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if final != 41 {
		t.Errorf("final state = %d, want 41", final)
	}

	wantOrder := []string{"double", "inc"}
	if len(trace.Steps) != len(wantOrder) {
		t.Fatalf("trace has %d steps, want %d", len(trace.Steps), len(wantOrder))
	}
	for i, step := range trace.Steps {
		if step.Node != wantOrder[i] {
			t.Errorf("step %d = %q, want %q", i, step.Node, wantOrder[i])
		}
		if step.Status != StatusCompleted {
			t.Errorf("step %q status = %q", step.Node, step.Status)
		}
	}
	if _, failed := trace.Failed(); failed {
		t.Error("trace reports a failure on a clean run")
	}
}

func TestRunStopsOnNodeError(t *testing.T) {
	machine, err := NewBuilder[int]().
		AddNode("inc", addOne).
		AddNode("explode", explode).
		AddNode("never", double).
		AddEdge("inc", "explode").
		AddEdge("explode", "never").
		AddEdge("never", End).
		SetEntry("inc").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	final, trace, err := machine.Run(context.Background(), 1)
	if err == nil {
		t.Fatal("Run() succeeded, want node failure")
	}
	if !strings.Contains(err.Error(), `node "explode" failed`) {
		t.Errorf("Run() error = %v", err)
	}
	// State reflects the last successful node.
	if final != 2 {
		t.Errorf("final state = %d, want 2", final)
	}

	failedStep, found := trace.Failed()
	if !found {
		t.Fatal("trace is missing the failed step")
	}
	if failedStep.Node != "explode" || failedStep.Status != StatusFailed || failedStep.Err == nil {
		t.Errorf("failed step = %+v", failedStep)
	}
	if len(trace.Steps) != 2 {
		t.Errorf("trace has %d steps, want 2 (the third node must not run)", len(trace.Steps))
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	machine, err := NewBuilder[int]().
		AddNode("inc", addOne).
		AddEdge("inc", End).
		SetEntry("inc").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, trace, err := machine.Run(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(trace.Steps) != 0 {
		t.Errorf("no node should run after cancellation, trace = %+v", trace.Steps)
	}
}

func TestOrderIsACopy(t *testing.T) {
	machine, err := NewBuilder[int]().
		AddNode("a", addOne).
		AddNode("b", double).
		AddEdge("a", "b").
		AddEdge("b", End).
		SetEntry("a").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	order := machine.Order()
	order[0] = "tampered"
	if machine.Order()[0] != "a" {
		t.Error("Order() must return a copy")
	}
}
