package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferg-cod3s/conexus-index/internal/embedding"
	"github.com/ferg-cod3s/conexus-index/internal/vectorstore"
	"github.com/stretchr/testify/require"
)

func TestWeightedFusion_CombinesScoresByWeights(t *testing.T) {
	f := NewWeightedFusion(WeightedFusionConfig{CosineWeight: 0.6, BM25Weight: 0.3, RecencyWeight: 0})
	dense := []vectorstore.SearchResult{{Document: vectorstore.Document{ID: "1"}, Score: 1.0}}
	sparse := []vectorstore.SearchResult{{Document: vectorstore.Document{ID: "1"}, Score: 1.0}}

	results, err := f.Fuse(context.Background(), sparse, dense, HybridModeWeighted)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.InDelta(t, 0.9, results[0].Score, 1e-6)
}

func TestWeightedFusion_RecencyBoostsNewerDocs(t *testing.T) {
	f := NewWeightedFusion(WeightedFusionConfig{CosineWeight: 0, BM25Weight: 0, RecencyWeight: 1, RecencyHalfLife: 24 * time.Hour})
	f.now = func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }

	dense := []vectorstore.SearchResult{
		{Document: vectorstore.Document{ID: "old", UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, Score: 0.5},
		{Document: vectorstore.Document{ID: "new", UpdatedAt: time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)}, Score: 0.5},
	}

	results, err := f.Fuse(context.Background(), nil, dense, HybridModeWeighted)
	require.NoError(t, err)
	require.Equal(t, "new", results[0].Document.ID)
}

func TestDedupeByFile_MergesLineRanges(t *testing.T) {
	results := []Result{
		{Score: 0.9, Document: vectorstore.Document{ID: "a", Metadata: map[string]interface{}{"filePath": "x.go", "startLine": 10, "endLine": 20}}},
		{Score: 0.5, Document: vectorstore.Document{ID: "b", Metadata: map[string]interface{}{"filePath": "x.go", "startLine": 30, "endLine": 40}}},
	}

	deduped := dedupeByFile(results)
	require.Len(t, deduped, 1)
	require.Equal(t, 10, deduped[0].Document.Metadata["startLine"])
	require.Equal(t, 40, deduped[0].Document.Metadata["endLine"])
	require.Equal(t, "a", deduped[0].Document.ID, "higher-scoring duplicate should survive")
}

func TestDedupeByFile_NoDuplicatesUnaffected(t *testing.T) {
	results := []Result{
		{Document: vectorstore.Document{ID: "a", Metadata: map[string]interface{}{"filePath": "x.go"}}},
		{Document: vectorstore.Document{ID: "b", Metadata: map[string]interface{}{"filePath": "y.go"}}},
	}
	require.Len(t, dedupeByFile(results), 2)
}

func TestPipeline_Search_BothStagesFailReturnsRetrievalUnavailable(t *testing.T) {
	store := &mockVectorStore{
		searchBM25Func: func(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
			return nil, errors.New("bm25 down")
		},
		searchVectorFunc: func(ctx context.Context, vector embedding.Vector, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
			return nil, errors.New("vector store down")
		},
	}
	pipeline := NewPipeline(store, &mockEmbedder{}, &mockFusion{}, nil)

	_, err := pipeline.Search(context.Background(), Query{Text: "test", Limit: 5, HybridMode: HybridModeRRF})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRetrievalUnavailable)
}

func TestPipeline_Search_OneStageFailsStillReturnsResults(t *testing.T) {
	store := &mockVectorStore{
		searchBM25Func: func(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
			return nil, errors.New("bm25 down")
		},
		searchVectorFunc: func(ctx context.Context, vector embedding.Vector, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
			return []vectorstore.SearchResult{{Document: vectorstore.Document{ID: "1"}, Score: 0.9}}, nil
		},
	}
	pipeline := NewPipeline(store, &mockEmbedder{}, &mockFusion{}, nil)

	results, err := pipeline.Search(context.Background(), Query{Text: "test", Limit: 5, HybridMode: HybridModeRRF})
	require.NoError(t, err)
	require.Len(t, results, 1)
}
