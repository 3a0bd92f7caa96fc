// Package coordinator fans a single query out across multiple document
// contexts. Each target gets its own pipeline run over its own retrieval
// adapter; failures are isolated per target and results always come back
// in the caller's target order, regardless of completion order.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/docsift/docsift/core/result"
	"github.com/docsift/docsift/generation"
	"github.com/docsift/docsift/observability"
	"github.com/docsift/docsift/pipeline"
	"github.com/docsift/docsift/retrieval"
)

// Coordinator runs multi-document queries against a shared, read-only
// adapter registry. Construct with [New]; a Coordinator is safe for
// concurrent use.
type Coordinator struct {
	registry    *retrieval.Registry
	generator   generation.Generator
	strategy    string
	observer    observability.Observer
	concurrency int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConcurrency sets the worker-pool width for target fan-out. The
// default of 1 processes documents one at a time; higher values
// parallelise the fan-out while result ordering stays tied to the input
// order.
func WithConcurrency(workers int) Option {
	return func(c *Coordinator) {
		if workers > 0 {
			c.concurrency = workers
		}
	}
}

// WithStrategy sets the executor strategy for the per-target pipelines.
func WithStrategy(strategy string) Option {
	return func(c *Coordinator) { c.strategy = strategy }
}

// WithObserver sets the observer shared by the coordinator and its
// pipelines.
func WithObserver(observer observability.Observer) Option {
	return func(c *Coordinator) { c.observer = observer }
}

// New creates a Coordinator over the given registry and generator.
func New(registry *retrieval.Registry, generator generation.Generator, opts ...Option) *Coordinator {
	coordinator := &Coordinator{
		registry:    registry,
		generator:   generator,
		observer:    observability.Nop(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(coordinator)
	}
	return coordinator
}

// ExecuteMulti answers query once per target and collects the results in
// target order. A failing target — unknown name, setup error, or a panic
// inside its run — contributes an error placeholder naming the target and
// never disturbs its siblings. ExecuteMulti itself does not fail.
func (c *Coordinator) ExecuteMulti(ctx context.Context, query string, targets []string) *ResultSet {
	resultSet := &ResultSet{
		RunID:   uuid.NewString(),
		Query:   query,
		results: make([]TargetResult, len(targets)),
	}

	span := c.observer.StartSpan(ctx, "coordinator.execute_multi",
		observability.String("run_id", resultSet.RunID),
		observability.Int("targets", len(targets)),
	)
	defer span.End()

	if c.concurrency <= 1 || len(targets) <= 1 {
		for i, target := range targets {
			resultSet.results[i] = c.processTarget(ctx, query, target)
		}
		return resultSet
	}

	// Bounded fan-out. Results are slotted by input index, so collection
	// order never depends on completion order.
	indices := make(chan int)
	var workers sync.WaitGroup
	for worker := 0; worker < c.concurrency; worker++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for i := range indices {
				resultSet.results[i] = c.processTarget(ctx, query, targets[i])
			}
		}()
	}
	for i := range targets {
		indices <- i
	}
	close(indices)
	workers.Wait()

	return resultSet
}

// processTarget runs one target's pipeline, converting every failure mode
// into a placeholder outcome that names the target.
func (c *Coordinator) processTarget(ctx context.Context, query, target string) (targetResult TargetResult) {
	targetResult = TargetResult{Target: target}

	// A panicking adapter or stage must not take down sibling targets.
	defer func() {
		if recovered := recover(); recovered != nil {
			c.observer.Error(ctx, "target processing panicked",
				observability.String("target", target),
				observability.String("panic", fmt.Sprint(recovered)),
			)
			targetResult.Outcome = result.Failf("processing %s: %v", target, recovered)
		}
	}()

	adapter, found := c.registry.Lookup(target)
	if !found {
		targetResult.Outcome = result.Failf("processing %s: no retrieval adapter bound", target)
		return targetResult
	}

	targetPipeline, err := pipeline.New(pipeline.Config{
		Adapter:   adapter,
		Generator: c.generator,
		Strategy:  c.strategy,
		Observer:  c.observer,
	})
	if err != nil {
		targetResult.Outcome = result.Failf("processing %s: %v", target, err)
		return targetResult
	}

	finalState, err := targetPipeline.RunForTarget(ctx, query, target)
	if err != nil {
		targetResult.Outcome = result.Failf("processing %s: %v", target, err)
		return targetResult
	}

	targetResult.Outcome = finalState.Final
	return targetResult
}
