// Package search provides hybrid search and reranking capabilities.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ferg-cod3s/conexus-index/internal/catalog"
	"github.com/ferg-cod3s/conexus-index/internal/embedding"
	"github.com/ferg-cod3s/conexus-index/internal/lexical"
	"github.com/ferg-cod3s/conexus-index/internal/vectorstore"
)

// ErrRetrievalUnavailable is returned when both the sparse and dense
// retrieval paths fail, per spec.md §7's RetrievalUnavailable error kind.
var ErrRetrievalUnavailable = errors.New("search: retrieval unavailable")

// Query represents a search query with optional filters and parameters.
type Query struct {
	Text       string                 // Search query text
	Filters    map[string]interface{} // Metadata filters
	Limit      int                    // Maximum results to return
	Threshold  float32                // Minimum relevance score
	HybridMode HybridMode             // How to combine sparse and dense results

	// TagFilter, when non-empty, excludes any result whose cacheKey has no
	// current tag among these (directory, branch) pairs, even though the
	// underlying vectors or postings remain on disk until the next refresh's
	// deletion sweep (spec.md §4.5/§4.6/§4.8). Only Directory and Branch are
	// compared; Artifact is ignored since the filter describes a content
	// scope, not a sub-index.
	TagFilter []catalog.Tag
}

// HybridMode controls how sparse (BM25) and dense (vector) results are combined.
type HybridMode string

const (
	HybridModeRRF      HybridMode = "rrf"      // Reciprocal Rank Fusion
	HybridModeWeighted HybridMode = "weighted" // Weighted sum of scores
	HybridModeSparse   HybridMode = "sparse"   // BM25 only
	HybridModeDense    HybridMode = "dense"    // Vector only
)

// Result represents a search result with provenance information.
type Result struct {
	Document     vectorstore.Document   // The matched document
	Score        float32                // Final relevance score
	SparseScore  float32                // BM25 score (if applicable)
	DenseScore   float32                // Vector similarity score (if applicable)
	RerankedFrom int                    // Original rank before reranking (-1 if not reranked)
}

// Retriever performs hybrid search over a vector store.
type Retriever interface {
	// Retrieve performs a hybrid search query.
	Retrieve(ctx context.Context, query Query) ([]Result, error)
}

// Reranker re-scores and re-orders search results.
type Reranker interface {
	// Rerank re-scores results based on the original query.
	// Returns re-ordered results (may change the list length if filtering).
	Rerank(ctx context.Context, query string, results []Result) ([]Result, error)
}

// FusionStrategy combines multiple ranked lists into a single ranking.
type FusionStrategy interface {
	// Fuse combines sparse and dense search results.
	Fuse(ctx context.Context, sparseResults, denseResults []vectorstore.SearchResult, mode HybridMode) ([]Result, error)
}

// LexicalSearcher is the subset of lexical.Index that Pipeline needs,
// letting the dedicated C6 lexical index (internal/lexical) be queried
// alongside the vector store's own SearchBM25 rather than sitting unused
// once Orchestrator has written to it.
type LexicalSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]lexical.Result, error)
}

// TagLookup is the subset of catalog.Store that Pipeline needs to resolve
// query-time tag filtering.
type TagLookup interface {
	TagsForCacheKey(ctx context.Context, cacheKey string) ([]catalog.Tag, error)
}

// Pipeline orchestrates the full retrieval pipeline: search â†’ fuse â†’ rerank.
type Pipeline struct {
	Store    vectorstore.VectorStore
	Embedder embedding.Embedder
	Fusion   FusionStrategy
	Reranker Reranker // Optional

	Lexical LexicalSearcher // Optional; C6 query-time search alongside Store.SearchBM25
	Tags    TagLookup       // Optional; enables Query.TagFilter
}

// NewPipeline creates a new search pipeline. Lexical and Tags are left
// unset; assign them on the returned Pipeline to enable the C6 lexical
// query path and tag filtering respectively.
func NewPipeline(store vectorstore.VectorStore, embedder embedding.Embedder, fusion FusionStrategy, reranker Reranker) *Pipeline {
	return &Pipeline{
		Store:    store,
		Embedder: embedder,
		Fusion:   fusion,
		Reranker: reranker,
	}
}

// Search executes the full search pipeline.
func (p *Pipeline) Search(ctx context.Context, query Query) ([]Result, error) {
	// Generate query embedding
	emb, err := p.Embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, err
	}
	
	// Perform hybrid search based on mode
	searchOpts := vectorstore.SearchOptions{
		Limit:     query.Limit * 2, // Get more candidates for reranking
		Threshold: query.Threshold,
		Filters:   query.Filters,
	}
	
	wantSparse := query.HybridMode == HybridModeSparse || query.HybridMode == HybridModeRRF || query.HybridMode == HybridModeWeighted
	wantDense := query.HybridMode == HybridModeDense || query.HybridMode == HybridModeRRF || query.HybridMode == HybridModeWeighted

	var sparseResults, denseResults, lexicalResults []vectorstore.SearchResult
	var sparseErr, denseErr, lexicalErr error
	var wg sync.WaitGroup

	// Each retrieval stage fails in isolation (spec.md §4.8/§7): only when
	// both the sparse and dense paths fail does retrieval surface as
	// unavailable to the caller. The three stages run concurrently per
	// spec.md §4.8 step 2 ("Lexical.search(...) in parallel").
	if wantSparse {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sparseResults, sparseErr = p.Store.SearchBM25(ctx, query.Text, searchOpts)
		}()
	}

	if wantDense {
		wg.Add(1)
		go func() {
			defer wg.Done()
			denseResults, denseErr = p.Store.SearchVector(ctx, emb.Vector, searchOpts)
		}()
	}

	if wantSparse && p.Lexical != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, err := p.Lexical.Search(ctx, query.Text, searchOpts.Limit)
			if err != nil {
				lexicalErr = err
				return
			}
			lexicalResults = lexicalResultsToSearchResults(hits)
		}()
	}

	wg.Wait()

	if sparseErr != nil && denseErr != nil {
		return nil, fmt.Errorf("%w: sparse: %v, dense: %v", ErrRetrievalUnavailable, sparseErr, denseErr)
	}
	if lexicalErr != nil {
		// C6 failing independently must not fail retrieval when the vector
		// store's own sparse and/or dense paths already succeeded.
		lexicalResults = nil
	}
	sparseResults = append(sparseResults, lexicalResults...)

	// Fuse results
	results, err := p.Fusion.Fuse(ctx, sparseResults, denseResults, query.HybridMode)
	if err != nil {
		return nil, err
	}

	// Apply reranking if configured
	if p.Reranker != nil {
		results, err = p.Reranker.Rerank(ctx, query.Text, results)
		if err != nil {
			return nil, err
		}
	}

	// Deduplicate by file path, expanding the surviving result's line
	// range to cover every duplicate's range, before trimming to nFinal.
	results = dedupeByFile(results)

	if len(query.TagFilter) > 0 && p.Tags != nil {
		results, err = p.filterByTag(ctx, results, query.TagFilter)
		if err != nil {
			return nil, err
		}
	}

	// Trim to requested limit
	if len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return results, nil
}

// lexicalResultsToSearchResults adapts C6 lexical.Result hits into the
// vectorstore.SearchResult shape the fusion strategies already consume,
// using the same cacheKey#chunkIndex document ID scheme as
// refresh.chunkDocument so the two sparse sources line up by ID.
func lexicalResultsToSearchResults(hits []lexical.Result) []vectorstore.SearchResult {
	if len(hits) == 0 {
		return nil
	}
	out := make([]vectorstore.SearchResult, len(hits))
	for i, h := range hits {
		out[i] = vectorstore.SearchResult{
			Document: vectorstore.Document{
				ID:      fmt.Sprintf("%s#%d", h.Posting.CacheKey, h.Posting.ChunkIndex),
				Content: h.Posting.Content,
				Metadata: map[string]interface{}{
					"filePath":  h.Posting.FilePath,
					"startLine": h.Posting.StartLine,
					"endLine":   h.Posting.EndLine,
					"cacheKey":  h.Posting.CacheKey,
				},
			},
			Score:  h.Score,
			Method: "lexical",
		}
	}
	return out
}

// filterByTag excludes any result whose cacheKey carries none of tagFilter's
// (directory, branch) pairs, per Query.TagFilter's contract.
func (p *Pipeline) filterByTag(ctx context.Context, results []Result, tagFilter []catalog.Tag) ([]Result, error) {
	wanted := make(map[string]struct{}, len(tagFilter))
	for _, t := range tagFilter {
		wanted[tagScope(t)] = struct{}{}
	}

	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		cacheKey, _ := r.Document.Metadata["cacheKey"].(string)
		if cacheKey == "" {
			// No cacheKey to check (e.g. a store that doesn't stamp one) —
			// pass it through rather than silently dropping it.
			filtered = append(filtered, r)
			continue
		}

		tags, err := p.Tags.TagsForCacheKey(ctx, cacheKey)
		if err != nil {
			return nil, fmt.Errorf("tag lookup for %s: %w", cacheKey, err)
		}
		for _, t := range tags {
			if _, ok := wanted[tagScope(t)]; ok {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered, nil
}

// tagScope reduces a Tag to its (directory, branch) content scope, ignoring
// Artifact: a query-time tag filter describes what content is in play, not
// which sub-index currently holds it.
func tagScope(t catalog.Tag) string {
	return t.Directory + "|" + t.Branch
}

// dedupeByFile collapses multiple results from the same file path into one,
// keeping the highest-scoring result and expanding its metadata line range
// to the union of every duplicate's range, so a caller never sees two
// entries for the same file.
func dedupeByFile(results []Result) []Result {
	type span struct {
		idx        int
		start, end int
	}

	byPath := make(map[string]*span)

	lineRange := func(r Result) (int, int) {
		start, _ := r.Document.Metadata["startLine"].(int)
		end, _ := r.Document.Metadata["endLine"].(int)
		return start, end
	}

	deduped := make([]Result, 0, len(results))
	for _, r := range results {
		path, _ := r.Document.Metadata["filePath"].(string)
		if path == "" {
			deduped = append(deduped, r)
			continue
		}

		start, end := lineRange(r)
		if sp, ok := byPath[path]; ok {
			existing := &deduped[sp.idx]
			if start < sp.start || sp.start == 0 {
				sp.start = start
			}
			if end > sp.end {
				sp.end = end
			}
			if existing.Document.Metadata == nil {
				existing.Document.Metadata = map[string]interface{}{}
			}
			existing.Document.Metadata["startLine"] = sp.start
			existing.Document.Metadata["endLine"] = sp.end
			if r.Score > existing.Score {
				keepMeta := existing.Document.Metadata
				*existing = r
				existing.Document.Metadata = keepMeta
			}
			continue
		}

		deduped = append(deduped, r)
		byPath[path] = &span{idx: len(deduped) - 1, start: start, end: end}
	}

	return deduped
}
