// Command docsift is an interactive document question-answering CLI. It
// binds one retrieval adapter per document (a Qdrant vector search when
// configured, otherwise a local keyword searcher over plain files) and
// drives the multi-stage pipeline for each question.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/docsift/docsift/coordinator"
	"github.com/docsift/docsift/generation"
	"github.com/docsift/docsift/generation/ollama"
	"github.com/docsift/docsift/generation/openai"
	"github.com/docsift/docsift/observability"
	"github.com/docsift/docsift/pipeline"
	"github.com/docsift/docsift/retrieval"
	"github.com/docsift/docsift/retrieval/qdrant"
)

var (
	backend     = flag.String("backend", "ollama", "Generation backend: ollama or openai")
	modelName   = flag.String("model", "llama3", "Model name for the generation backend")
	embedModel  = flag.String("embed-model", "nomic-embed-text", "Embedding model (ollama backend)")
	ollamaHost  = flag.String("ollama-host", "", "Ollama server URL (defaults to OLLAMA_HOST)")
	openaiBase  = flag.String("openai-base-url", "", "Override base URL for the openai backend")
	qdrantAddr  = flag.String("qdrant", "", "Qdrant gRPC address; empty uses local keyword search over -docs")
	collection  = flag.String("collection", "documents", "Qdrant collection name")
	topK        = flag.Int("top-k", 5, "Number of chunks to retrieve per query")
	strategy    = flag.String("strategy", pipeline.StrategyAuto, "Executor strategy: auto, graph or sequential")
	concurrency = flag.Int("concurrency", 1, "Worker-pool width for multi-document queries")
	throttle    = flag.Duration("throttle", 0, "Minimum delay between generation calls")
	callTimeout = flag.Duration("timeout", 2*time.Minute, "Per-generation-call timeout")
	question    = flag.String("q", "", "Ask a single question and exit")
	targetList  = flag.String("targets", "", "Comma-separated documents to query; empty queries all")
)

func main() {
	// .env is optional; flags and the environment win.
	_ = godotenv.Load()
	flag.Parse()

	observer := observability.NewSlog(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		fmt.Println("\nShutting down...")
		cancel()
	}()

	generator, embedder, err := buildGenerator()
	if err != nil {
		fatal(err)
	}

	registry, err := buildRegistry(embedder, flag.Args())
	if err != nil {
		fatal(err)
	}
	if registry.Len() == 0 {
		fatal(fmt.Errorf("no documents bound: pass file paths as arguments or configure -qdrant"))
	}

	multi := coordinator.New(registry, generator,
		coordinator.WithStrategy(*strategy),
		coordinator.WithConcurrency(*concurrency),
		coordinator.WithObserver(observer),
	)

	targets, err := selectTargets(registry)
	if err != nil {
		fatal(err)
	}

	if *question != "" {
		printResults(multi.ExecuteMulti(ctx, *question, targets))
		return
	}

	runInteractive(ctx, multi, targets)
}

// selectTargets resolves the -targets filter against the bound documents.
func selectTargets(registry *retrieval.Registry) ([]string, error) {
	if *targetList == "" {
		return registry.Documents(), nil
	}

	var targets []string
	for _, target := range strings.Split(*targetList, ",") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, found := registry.Lookup(target); !found {
			return nil, fmt.Errorf("unknown target %q; bound documents: %s",
				target, strings.Join(registry.Documents(), ", "))
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// buildGenerator wires the configured generation backend, decorated with
// the caller-level timeout and optional throttle.
func buildGenerator() (generation.Generator, generation.Embedder, error) {
	var generator generation.Generator
	var embedder generation.Embedder

	switch *backend {
	case "ollama":
		client, err := ollama.New(*ollamaHost, *modelName, *embedModel)
		if err != nil {
			return nil, nil, err
		}
		generator, embedder = client, client

	case "openai":
		client := openai.New(*modelName).WithAPIKey(os.Getenv("OPENAI_API_KEY"))
		if *openaiBase != "" {
			client.WithBaseURL(*openaiBase)
		}
		generator = client
		// Embeddings still come from ollama; only needed for -qdrant.
		if *qdrantAddr != "" {
			embedClient, err := ollama.New(*ollamaHost, *embedModel, *embedModel)
			if err != nil {
				return nil, nil, err
			}
			embedder = embedClient
		}

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", *backend)
	}

	generator = generation.WithTimeout(generator, *callTimeout)
	if *throttle > 0 {
		generator = generation.WithThrottle(generator, *throttle)
	}
	return generator, embedder, nil
}

// buildRegistry binds one adapter per document. With -qdrant set, the
// whole collection is bound under its name; otherwise each file argument
// gets a local keyword searcher.
func buildRegistry(embedder generation.Embedder, files []string) (*retrieval.Registry, error) {
	registry := retrieval.NewRegistry()

	if *qdrantAddr != "" {
		if embedder == nil {
			return nil, fmt.Errorf("qdrant retrieval needs an embedding backend")
		}
		searcher, err := qdrant.Connect(*qdrantAddr, *collection, embedder, qdrant.WithLimit(*topK))
		if err != nil {
			return nil, err
		}
		adapter, err := retrieval.NewAdapter(searcher)
		if err != nil {
			return nil, err
		}
		registry.Bind(*collection, adapter)
		return registry, nil
	}

	for _, path := range files {
		searcher, err := newFileSearcher(path, *topK)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		adapter, err := retrieval.NewAdapter(searcher)
		if err != nil {
			return nil, err
		}
		registry.Bind(searcher.name, adapter)
	}
	return registry, nil
}

func runInteractive(ctx context.Context, multi *coordinator.Coordinator, targets []string) {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Println(boldGreen("docsift: document question answering"))
	fmt.Printf("Documents: %s\n", boldCyan(strings.Join(targets, ", ")))
	fmt.Println("Type your question and press Enter. Type 'exit' to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "exit") || strings.EqualFold(query, "quit") {
			fmt.Println("Goodbye!")
			return
		}
		if ctx.Err() != nil {
			return
		}

		printResults(multi.ExecuteMulti(ctx, query, targets))
	}
}

func printResults(results *coordinator.ResultSet) {
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, targetResult := range results.Results() {
		fmt.Printf("\n%s\n", boldCyan("=== "+targetResult.Target+" ==="))
		if targetResult.Outcome.IsFailed() {
			fmt.Println(red(targetResult.Answer()))
			continue
		}
		fmt.Println(targetResult.Answer())
	}
	fmt.Println()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("error: ", err.Error()))
	os.Exit(1)
}
