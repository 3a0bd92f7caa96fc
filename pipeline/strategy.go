package pipeline

import (
	"context"

	"github.com/docsift/docsift/core/state"
	"github.com/docsift/docsift/flow"
)

// Strategy executes the fixed stage sequence over a pipeline state. The
// two implementations — graph-backed and plain sequential — must be
// observationally equivalent: given the same collaborators and query they
// produce the same final outcome. Which one runs is a capability choice,
// never a semantic one.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Run drives the state from entry to the terminal phase. The returned
	// error is reserved for runtime misuse (a broken machine); stage
	// failures are always encoded in the state.
	Run(ctx context.Context, st state.Pipeline) (state.Pipeline, error)
}

// Strategy selection values for [Config.Strategy].
const (
	// StrategyAuto prefers the graph runtime and falls back to sequential
	// if the machine cannot be built. This is the default.
	StrategyAuto = "auto"

	// StrategyGraph forces the graph-backed executor.
	StrategyGraph = "graph"

	// StrategySequential forces the plain sequential executor.
	StrategySequential = "sequential"
)

// sequentialStrategy calls the steps directly in the fixed order.
type sequentialStrategy struct {
	steps *steps
}

var _ Strategy = (*sequentialStrategy)(nil)

func (s *sequentialStrategy) Name() string { return StrategySequential }

func (s *sequentialStrategy) Run(ctx context.Context, st state.Pipeline) (state.Pipeline, error) {
	st = s.steps.retrieve(ctx, st)
	st = s.steps.summarize(ctx, st)
	st = s.steps.analyze(ctx, st)
	st = s.steps.finalize(ctx, st)
	return st, nil
}

// graphStrategy runs the same steps as nodes of a flow machine.
type graphStrategy struct {
	machine *flow.Machine[state.Pipeline]
}

var _ Strategy = (*graphStrategy)(nil)

// newGraphStrategy assembles the linear stage machine:
// retrieve → summarize → analyze → finalize → End.
func newGraphStrategy(s *steps) (*graphStrategy, error) {
	asNode := func(step func(context.Context, state.Pipeline) state.Pipeline) flow.Node[state.Pipeline] {
		return func(ctx context.Context, st state.Pipeline) (state.Pipeline, error) {
			return step(ctx, st), nil
		}
	}

	machine, err := flow.NewBuilder[state.Pipeline]().
		AddNode("retrieve", asNode(s.retrieve)).
		AddNode("summarize", asNode(s.summarize)).
		AddNode("analyze", asNode(s.analyze)).
		AddNode("finalize", asNode(s.finalize)).
		AddEdge("retrieve", "summarize").
		AddEdge("summarize", "analyze").
		AddEdge("analyze", "finalize").
		AddEdge("finalize", flow.End).
		SetEntry("retrieve").
		Build()
	if err != nil {
		return nil, err
	}

	return &graphStrategy{machine: machine}, nil
}

func (g *graphStrategy) Name() string { return StrategyGraph }

func (g *graphStrategy) Run(ctx context.Context, st state.Pipeline) (state.Pipeline, error) {
	final, _, err := g.machine.Run(ctx, st)
	if err != nil {
		return final, err
	}
	return final, nil
}
