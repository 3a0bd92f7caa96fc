// Package flow implements a small linear state machine for chaining
// processing steps over a shared state value. Nodes are named, connected
// by unconditional edges, and validated at build time; execution threads
// the state from the entry node to the [End] marker, recording per-node
// status and timing in a [Trace].
//
// The machine is deliberately restricted to a single linear path: no
// branches, no retries, no cycles. Steps that want to skip work do so by
// encoding the decision in the state they pass forward, which keeps the
// execution order total and the trace trivially readable.
//
// Example:
//
//	machine, err := flow.NewBuilder[int]().
//	    AddNode("double", func(ctx context.Context, n int) (int, error) { return n * 2, nil }).
//	    AddNode("inc", func(ctx context.Context, n int) (int, error) { return n + 1, nil }).
//	    AddEdge("double", "inc").
//	    AddEdge("inc", flow.End).
//	    SetEntry("double").
//	    Build()
//
//	final, trace, err := machine.Run(ctx, 20) // final == 41
package flow

import (
	"context"
	"fmt"
	"time"
)

// End is the terminal edge target. Every machine must have exactly one
// edge pointing at it.
const End = "__end__"

// Node is one processing step. It receives the current state and returns
// the next state; returning an error aborts the run.
type Node[S any] func(ctx context.Context, state S) (S, error)

// Status is the lifecycle status of a node within one run.
type Status string

const (
	// StatusPending indicates the node has not started yet.
	StatusPending Status = "pending"

	// StatusRunning indicates the node is currently executing.
	StatusRunning Status = "running"

	// StatusCompleted indicates the node finished successfully.
	StatusCompleted Status = "completed"

	// StatusFailed indicates the node returned an error.
	StatusFailed Status = "failed"
)

// Step is the per-node record within a Trace.
type Step struct {
	// Node is the node ID.
	Node string

	// Status is the node's final status for this run.
	Status Status

	// Duration is the node's wall-clock execution time.
	Duration time.Duration

	// Err is the node's error, set only when Status is StatusFailed.
	Err error
}

// Trace records one run of the machine, in execution order. It is a value
// returned per run, so concurrent runs of the same machine never share
// mutable state.
type Trace struct {
	// Steps are the executed nodes in order.
	Steps []Step
}

// Failed returns the first failed step, if any.
func (trace Trace) Failed() (Step, bool) {
	for _, step := range trace.Steps {
		if step.Status == StatusFailed {
			return step, true
		}
	}
	return Step{}, false
}

// Machine is a validated, executable linear chain of nodes. Build one with
// [Builder.Build]. A Machine is immutable after construction and safe for
// concurrent Run calls.
type Machine[S any] struct {
	nodes map[string]Node[S]
	next  map[string]string
	order []string
	entry string
}

// Order returns the node IDs in execution order.
func (machine *Machine[S]) Order() []string {
	order := make([]string, len(machine.order))
	copy(order, machine.order)
	return order
}

// Run executes the machine from its entry node, threading state through
// every node until the End marker. The returned Trace covers the nodes
// that ran; on node failure the run stops and the node's error is
// returned alongside the state produced so far.
//
// Context cancellation is checked between nodes; a node that ignores its
// context can still run to completion once started.
func (machine *Machine[S]) Run(ctx context.Context, initial S) (S, Trace, error) {
	state := initial
	trace := Trace{Steps: make([]Step, 0, len(machine.order))}

	for current := machine.entry; current != End; current = machine.next[current] {
		if err := ctx.Err(); err != nil {
			return state, trace, fmt.Errorf("run canceled before node %q: %w", current, err)
		}

		node := machine.nodes[current]
		started := time.Now()

		nextState, err := node(ctx, state)
		elapsed := time.Since(started)

		if err != nil {
			trace.Steps = append(trace.Steps, Step{
				Node:     current,
				Status:   StatusFailed,
				Duration: elapsed,
				Err:      err,
			})
			return state, trace, fmt.Errorf("node %q failed: %w", current, err)
		}

		state = nextState
		trace.Steps = append(trace.Steps, Step{
			Node:     current,
			Status:   StatusCompleted,
			Duration: elapsed,
		})
	}

	return state, trace, nil
}
