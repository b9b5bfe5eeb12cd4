// Command conexus wires together the catalog, merkle, chunker, embedding,
// lexical, refresh, and retrieval components into a single refresh-then-query
// run, the way the teacher's main.go wired its MCP server together from its
// own component set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ferg-cod3s/conexus-index/internal/catalog"
	"github.com/ferg-cod3s/conexus-index/internal/config"
	"github.com/ferg-cod3s/conexus-index/internal/embedding"
	"github.com/ferg-cod3s/conexus-index/internal/embedding/providerlimit"
	"github.com/ferg-cod3s/conexus-index/internal/indexer"
	"github.com/ferg-cod3s/conexus-index/internal/lexical"
	"github.com/ferg-cod3s/conexus-index/internal/observability"
	"github.com/ferg-cod3s/conexus-index/internal/refresh"
	"github.com/ferg-cod3s/conexus-index/internal/search"
	"github.com/ferg-cod3s/conexus-index/internal/vectorstore"
	"github.com/ferg-cod3s/conexus-index/internal/vectorstore/sqlite"
	"github.com/getsentry/sentry-go"
)

const Version = "0.2.0-alpha"

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var query string
	var branch string
	flag.StringVar(&query, "query", "", "run a retrieval query against the index after refreshing")
	flag.StringVar(&branch, "branch", "", "branch tag to refresh and query under (default: the workspace's current git branch, or \"-\" outside git)")
	flag.Parse()

	root := cfg.Indexer.RootPath
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve root path: %v\n", err)
		os.Exit(1)
	}
	if branch == "" {
		branch = indexer.CurrentBranch(root)
		if branch == "" {
			branch = "-"
		}
	}

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		Output:        os.Stderr,
		AddSource:     true,
		SentryEnabled: cfg.Observability.Sentry.Enabled,
	})

	logger.Info("conexus starting",
		"version", Version,
		"root", root,
		"branch", branch,
		"database", cfg.Database.Path,
	)

	var metrics *observability.MetricsCollector
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.NewMetricsCollector("conexus")
		logger.Info("metrics collection enabled", "port", cfg.Observability.Metrics.Port)
	}

	var tracerProvider *observability.TracerProvider
	if cfg.Observability.Tracing.Enabled {
		tracerProvider, err = observability.NewTracerProvider(observability.TracerConfig{
			ServiceName:    "conexus",
			ServiceVersion: Version,
			Environment:    "development",
			OTLPEndpoint:   cfg.Observability.Tracing.Endpoint,
			SamplingRate:   cfg.Observability.Tracing.SampleRate,
			Enabled:        true,
		})
		if err != nil {
			logger.Error("failed to initialize tracing provider", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	if cfg.Observability.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Observability.Sentry.DSN,
			Environment:      cfg.Observability.Sentry.Environment,
			Release:          cfg.Observability.Sentry.Release,
			TracesSampleRate: cfg.Observability.Sentry.SampleRate,
			EnableTracing:    true,
			EnableLogs:       true,
		}); err != nil {
			logger.Error("failed to initialize sentry", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	errorHandler := observability.NewErrorHandler(logger, metrics, cfg.Observability.Sentry.Enabled)

	embedder, err := newEmbedder(cfg.EmbeddingsProvider)
	if err != nil {
		logger.Error("failed to initialize embedder", "error", err)
		os.Exit(1)
	}
	logger.Info("embedder initialized",
		"provider", cfg.EmbeddingsProvider.Provider,
		"model", embedder.Model(),
		"dimensions", embedder.Dimensions(),
	)

	catalogStore, err := catalog.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open catalog store", "error", err)
		os.Exit(1)
	}
	defer catalogStore.Close()

	lexicalIndex, err := lexical.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open lexical index", "error", err)
		os.Exit(1)
	}
	defer lexicalIndex.Close()

	ns := vectorstore.Namespace{
		ProviderID: cfg.EmbeddingsProvider.Provider,
		Model:      embedder.Model(),
		Dim:        embedder.Dimensions(),
	}
	vectorStore, err := sqlite.NewStore(cfg.Database.Path, ns)
	if err != nil {
		logger.Error("failed to open vector store", "error", err)
		os.Exit(1)
	}
	defer vectorStore.Close()
	logger.Info("vector store namespaced", "namespace", ns.Key())

	walker := indexer.NewFileWalker(cfg.Indexer.MaxFileSize)
	merkle := indexer.NewTagMerkle(indexer.NewMerkleTree(walker), root)

	batcher := embedding.NewBatcher(embedding.DefaultBatcherConfig(), func(ctx context.Context, batch []string) ([]*embedding.Embedding, error) {
		return embedder.EmbedBatch(ctx, batch)
	})

	limiter := providerlimit.New(providerlimit.Config{MaxConcurrent: cfg.Indexer.ProviderConcurrency})

	overlap := cfg.EmbeddingsProvider.MaxChunkSize / 10
	if overlap <= 0 {
		overlap = 1
	}

	tokenizer := indexer.WhitespaceTokenizer{}
	chunkers := []indexer.Chunker{
		indexer.NewCodeChunkerWithTokenizer(cfg.EmbeddingsProvider.MaxChunkSize, overlap, tokenizer),
		indexer.NewMarkdownChunker(tokenizer, cfg.EmbeddingsProvider.MaxChunkSize, overlap),
		indexer.NewLineChunkerAdapter(tokenizer, cfg.EmbeddingsProvider.MaxChunkSize, overlap),
	}

	orchestrator := &refresh.Orchestrator{
		Catalog:     catalogStore,
		Merkle:      merkle,
		Walker:      walker,
		Chunkers:    chunkers,
		Embedder:    embedder,
		Batcher:     batcher,
		Limiter:     limiter,
		Vectors:     vectorStore,
		Lexical:     lexicalIndex,
		MaxFileSize: cfg.Indexer.MaxFileSize,
		Progress:    make(chan refresh.ProgressEvent, 16),
	}

	ignorePatterns, _ := indexer.ResolveIgnorePatterns(root)
	ignorePatterns = append(ignorePatterns, cfg.Indexer.IgnorePatterns...)

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for ev := range orchestrator.Progress {
			logger.Debug("refresh progress",
				"phase", ev.Phase,
				"subIndex", ev.SubIndex,
				"filesProcessed", ev.FilesProcessed,
				"totalFiles", ev.TotalFiles,
			)
			if ev.Err != nil {
				errorHandler.HandleError(ctx, ev.Err, observability.ErrorContext{Method: "refresh", ErrorType: string(ev.SubIndex)})
			}
		}
	}()

	logger.Info("refresh starting", "root", root, "branch", branch)
	if err := orchestrator.Refresh(ctx, root, branch, ignorePatterns); err != nil {
		logger.Error("refresh failed", "error", err)
		errorHandler.HandleError(ctx, err, observability.ErrorContext{Method: "refresh"})
		os.Exit(1)
	}
	close(orchestrator.Progress)
	<-progressDone
	logger.Info("refresh complete")

	if query == "" {
		return
	}

	var reranker search.Reranker
	if cfg.ContextProvider.UseReranking && cfg.Reranker.Name != "" {
		reranker = search.NewCrossEncoderReranker(cfg.Reranker.Name, cfg.Reranker.Model, cfg.Reranker.APIKey)
	}

	pipeline := search.NewPipeline(vectorStore, embedder, search.NewWeightedFusion(search.DefaultWeightedFusionConfig()), reranker)
	pipeline.Lexical = lexicalIndex
	pipeline.Tags = catalogStore

	results, err := pipeline.Search(ctx, search.Query{
		Text:       query,
		Limit:      cfg.ContextProvider.NFinal,
		HybridMode: search.HybridModeWeighted,
	})
	if err != nil {
		logger.Error("search failed", "error", err)
		errorHandler.HandleError(ctx, err, observability.ErrorContext{Method: "search"})
		os.Exit(1)
	}

	for i, r := range results {
		fmt.Printf("%d. [%0.4f] %s\n", i+1, r.Score, r.Document.ID)
		fmt.Printf("   %s\n", truncateString(r.Document.Content, 160))
	}
}

func newEmbedder(cfg config.EmbeddingsProviderConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "", "mock":
		return embedding.NewMock(768), nil
	case "anthropic":
		return embedding.NewAnthropic(cfg.APIKey, cfg.Model, 768), nil
	default:
		provider, err := embedding.Get(cfg.Provider)
		if err != nil {
			return nil, fmt.Errorf("embedding provider %q: %w", cfg.Provider, err)
		}
		return provider.Create(map[string]interface{}{
			"api_key": cfg.APIKey,
			"model":   cfg.Model,
		})
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
