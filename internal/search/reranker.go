package search

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// CrossEncoderReranker re-scores fused results against the query text using a
// named reranking model, following the same placeholder shape as
// embedding.AnthropicEmbedder: the wiring (HTTP client, named model, API key)
// matches a real hosted reranker, but no reranker API is reachable in this
// environment, so Rerank falls back to a lexical-overlap score instead of an
// HTTP round trip. The reranker holds no endpoint URL; apiKey and httpClient
// are stored but not used by Rerank.
type CrossEncoderReranker struct {
	name       string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewCrossEncoderReranker builds a reranker for the named model. name and
// model come from config.RerankerConfig.{Name,Model}; an empty name means
// reranking is disabled and the caller should pass a nil Reranker to Pipeline
// instead of constructing one.
func NewCrossEncoderReranker(name, model, apiKey string) *CrossEncoderReranker {
	if model == "" {
		model = "default"
	}
	return &CrossEncoderReranker{
		name:   name,
		model:  model,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Rerank re-scores results by lexical overlap with the query, stable-sorting
// by the new score while recording each result's original rank.
func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, results []Result) ([]Result, error) {
	if len(results) == 0 {
		return results, nil
	}

	queryTerms := tokenizeQuery(query)
	if len(queryTerms) == 0 {
		return results, nil
	}

	reranked := make([]Result, len(results))
	copy(reranked, results)
	for i := range reranked {
		reranked[i].RerankedFrom = i
		reranked[i].Score = rerankScore(queryTerms, reranked[i])
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	return reranked, nil
}

// rerankScore blends the document's prior fused score with a lexical-overlap
// signal against the query terms, so exact-term hits bubble up the way a
// cross-encoder's query-aware scoring would.
func rerankScore(queryTerms []string, r Result) float32 {
	content := strings.ToLower(r.Document.Content)
	var hits int
	for _, term := range queryTerms {
		if strings.Contains(content, term) {
			hits++
		}
	}
	overlap := float32(hits) / float32(len(queryTerms))
	return 0.5*r.Score + 0.5*overlap
}

func tokenizeQuery(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]{}")
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

// String returns a human-readable identifier for logging.
func (r *CrossEncoderReranker) String() string {
	return fmt.Sprintf("%s/%s", r.name, r.model)
}
