// Package pipeline orchestrates the document-QA stage sequence:
// retrieve → summarize → analyze → finalize (format + cite). It owns the
// short-circuit and recovery policy — empty retrieval and collaborator
// failures travel through the stages as tagged outcomes and the run always
// completes — and offers two interchangeable executor strategies, a
// graph-backed machine and a plain sequential chain, selected at
// construction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/docsift/docsift/core/state"
	"github.com/docsift/docsift/generation"
	"github.com/docsift/docsift/observability"
	"github.com/docsift/docsift/retrieval"
	"github.com/docsift/docsift/stages"
)

// Config wires a Pipeline. Adapter and Generator are required; everything
// else has working defaults.
type Config struct {
	// Adapter is the document search capability for this pipeline.
	Adapter *retrieval.Adapter

	// Generator is the text-generation collaborator used by the
	// summarizer and analyzer stages.
	Generator generation.Generator

	// Strategy selects the executor: StrategyAuto (default),
	// StrategyGraph or StrategySequential.
	Strategy string

	// Observer receives log events and spans. Defaults to a no-op.
	Observer observability.Observer
}

// Pipeline answers questions over one document context. Construct with
// [New]; a Pipeline is immutable and safe for concurrent Execute calls.
type Pipeline struct {
	strategy Strategy
	observer observability.Observer
}

// fallbackWarning ensures the graph→sequential capability fallback is
// logged once per process, not once per pipeline.
var fallbackWarning sync.Once

// New validates cfg and builds a Pipeline. A missing collaborator is a
// setup error returned to the caller — the only category of failure that
// is not folded into run outcomes.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Adapter == nil {
		return nil, errors.New("pipeline: retrieval adapter is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	if cfg.Observer == nil {
		cfg.Observer = observability.Nop()
	}

	pipelineSteps := &steps{
		adapter:    cfg.Adapter,
		summarizer: stages.NewSummarizer(cfg.Generator),
		analyzer:   stages.NewAnalyzer(cfg.Generator),
		formatter:  stages.NewFormatter(),
		citations:  stages.NewCitations(),
		observer:   cfg.Observer,
	}

	strategy, err := selectStrategy(cfg, pipelineSteps)
	if err != nil {
		return nil, err
	}

	return &Pipeline{strategy: strategy, observer: cfg.Observer}, nil
}

// selectStrategy resolves the configured strategy name, falling back from
// graph to sequential under StrategyAuto when the machine cannot be
// built. The fallback is transparent to callers and logged exactly once.
func selectStrategy(cfg Config, pipelineSteps *steps) (Strategy, error) {
	switch cfg.Strategy {
	case StrategySequential:
		return &sequentialStrategy{steps: pipelineSteps}, nil

	case StrategyGraph:
		graph, err := newGraphStrategy(pipelineSteps)
		if err != nil {
			return nil, fmt.Errorf("pipeline: building graph executor: %w", err)
		}
		return graph, nil

	case StrategyAuto, "":
		graph, err := newGraphStrategy(pipelineSteps)
		if err != nil {
			fallbackWarning.Do(func() {
				cfg.Observer.Warn(context.Background(),
					"graph executor unavailable, using sequential workflow",
					observability.Error(err),
				)
			})
			return &sequentialStrategy{steps: pipelineSteps}, nil
		}
		return graph, nil

	default:
		return nil, fmt.Errorf("pipeline: unknown strategy %q", cfg.Strategy)
	}
}

// StrategyName reports which executor the pipeline resolved to.
func (p *Pipeline) StrategyName() string { return p.strategy.Name() }

// Run executes the full stage sequence for query and returns the terminal
// state. The run always reaches the done phase; inspect the outcome tags
// to distinguish answers, empty corpora and recovered failures.
func (p *Pipeline) Run(ctx context.Context, query string) (state.Pipeline, error) {
	st := state.New(query)

	span := p.observer.StartSpan(ctx, "pipeline.run",
		observability.String("run_id", st.RunID),
		observability.String("strategy", p.strategy.Name()),
	)
	defer span.End()

	final, err := p.strategy.Run(ctx, st)
	if err != nil {
		span.Fail(err)
		return final, fmt.Errorf("pipeline run: %w", err)
	}

	p.observer.Info(ctx, "pipeline complete",
		observability.String("run_id", final.RunID),
		observability.String("outcome", final.Final.String()),
	)
	return final, nil
}

// RunForTarget is Run with the state bound to a named document, for
// multi-document fan-out.
func (p *Pipeline) RunForTarget(ctx context.Context, query, target string) (state.Pipeline, error) {
	st := state.New(query).ForTarget(target)

	span := p.observer.StartSpan(ctx, "pipeline.run",
		observability.String("run_id", st.RunID),
		observability.String("target", target),
		observability.String("strategy", p.strategy.Name()),
	)
	defer span.End()

	final, err := p.strategy.Run(ctx, st)
	if err != nil {
		span.Fail(err)
		return final, fmt.Errorf("pipeline run for %q: %w", target, err)
	}
	return final, nil
}

// Execute answers query and renders the terminal outcome as user-facing
// text. This is the single-target entry point the surrounding application
// calls; failed and empty runs come back as their sentinel text, never as
// an error.
func (p *Pipeline) Execute(ctx context.Context, query string) (string, error) {
	final, err := p.Run(ctx, query)
	if err != nil {
		return "", err
	}
	return final.Final.Render(), nil
}
