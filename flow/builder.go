package flow

import (
	"errors"
	"fmt"
)

// Builder constructs a validated Machine[S] using a fluent API. Nodes and
// edges are added incrementally; Build performs structural validation and
// reports every accumulated problem at once via errors.Join.
//
// The builder enforces:
//   - node IDs are unique, non-empty and not the reserved End marker
//   - every edge references existing nodes (the target may be End)
//   - each node has exactly one outgoing edge (the chain is linear)
//   - exactly one edge targets End
//   - the entry node exists and the chain from it visits every node
//     exactly once before reaching End (no cycles, no orphans)
type Builder[S any] struct {
	nodes       map[string]Node[S]
	nodeOrder   []string
	edges       map[string]string
	entry       string
	buildErrors []error
}

// NewBuilder creates an empty Builder.
func NewBuilder[S any]() *Builder[S] {
	return &Builder[S]{
		nodes: make(map[string]Node[S]),
		edges: make(map[string]string),
	}
}

// AddNode registers a node under a unique ID. Returns the builder for
// chaining; problems are recorded and reported at Build time.
func (builder *Builder[S]) AddNode(id string, node Node[S]) *Builder[S] {
	switch {
	case id == "":
		builder.fail("node ID must not be empty")
	case id == End:
		builder.fail("node ID %q is reserved for the terminal marker", End)
	case node == nil:
		builder.fail("node %q must not be nil", id)
	default:
		if _, exists := builder.nodes[id]; exists {
			builder.fail("duplicate node ID %q", id)
			return builder
		}
		builder.nodes[id] = node
		builder.nodeOrder = append(builder.nodeOrder, id)
	}
	return builder
}

// AddEdge connects from to to. The target may be the End marker; each
// node may have only one outgoing edge.
func (builder *Builder[S]) AddEdge(from, to string) *Builder[S] {
	switch {
	case from == "" || to == "":
		builder.fail("edge endpoints must not be empty (from=%q, to=%q)", from, to)
	case from == to:
		builder.fail("self-loop detected on node %q", from)
	default:
		if _, exists := builder.edges[from]; exists {
			builder.fail("node %q already has an outgoing edge", from)
			return builder
		}
		builder.edges[from] = to
	}
	return builder
}

// SetEntry designates the node execution starts from.
func (builder *Builder[S]) SetEntry(id string) *Builder[S] {
	if builder.entry != "" {
		builder.fail("entry node already set to %q", builder.entry)
		return builder
	}
	builder.entry = id
	return builder
}

// Build validates the structure and returns an executable Machine.
func (builder *Builder[S]) Build() (*Machine[S], error) {
	if len(builder.buildErrors) > 0 {
		return nil, fmt.Errorf("flow build errors: %w", errors.Join(builder.buildErrors...))
	}

	if len(builder.nodes) == 0 {
		return nil, errors.New("flow must contain at least one node")
	}
	if builder.entry == "" {
		return nil, errors.New("flow entry node not set")
	}
	if _, exists := builder.nodes[builder.entry]; !exists {
		return nil, fmt.Errorf("entry node %q does not exist", builder.entry)
	}

	// Every edge must leave a known node and land on a known node or End.
	endEdges := 0
	for from, to := range builder.edges {
		if _, exists := builder.nodes[from]; !exists {
			return nil, fmt.Errorf("edge leaves non-existent node %q", from)
		}
		if to == End {
			endEdges++
			continue
		}
		if _, exists := builder.nodes[to]; !exists {
			return nil, fmt.Errorf("edge targets non-existent node %q", to)
		}
	}
	if endEdges != 1 {
		return nil, fmt.Errorf("flow must have exactly one edge into the End marker, found %d", endEdges)
	}

	// Walk the chain from the entry: every node exactly once, then End.
	order, err := builder.walk()
	if err != nil {
		return nil, err
	}

	return &Machine[S]{
		nodes: builder.nodes,
		next:  builder.edges,
		order: order,
		entry: builder.entry,
	}, nil
}

// walk follows the single outgoing edges from the entry node and verifies
// the path covers all nodes without revisiting any.
func (builder *Builder[S]) walk() ([]string, error) {
	order := make([]string, 0, len(builder.nodes))
	visited := make(map[string]bool, len(builder.nodes))

	for current := builder.entry; current != End; {
		if visited[current] {
			return nil, fmt.Errorf("cycle detected at node %q", current)
		}
		visited[current] = true
		order = append(order, current)

		next, exists := builder.edges[current]
		if !exists {
			return nil, fmt.Errorf("node %q has no outgoing edge", current)
		}
		current = next
	}

	if len(order) != len(builder.nodes) {
		unreached := make([]string, 0)
		for _, id := range builder.nodeOrder {
			if !visited[id] {
				unreached = append(unreached, id)
			}
		}
		return nil, fmt.Errorf("nodes unreachable from entry %q: %v", builder.entry, unreached)
	}

	return order, nil
}

// fail records a build error for later reporting.
func (builder *Builder[S]) fail(format string, args ...any) {
	builder.buildErrors = append(builder.buildErrors, fmt.Errorf(format, args...))
}
