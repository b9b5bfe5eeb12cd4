package search

import (
	"context"
	"math"
	"time"

	"github.com/ferg-cod3s/conexus-index/internal/vectorstore"
)

// WeightedFusionConfig holds the α·cosine + β·bm25 + γ·recency weights.
type WeightedFusionConfig struct {
	CosineWeight   float64
	BM25Weight     float64
	RecencyWeight  float64
	RecencyHalfLife time.Duration // how quickly recency weight decays
}

// DefaultWeightedFusionConfig matches spec.md's default weights (0.6, 0.3, 0.1).
func DefaultWeightedFusionConfig() WeightedFusionConfig {
	return WeightedFusionConfig{
		CosineWeight:    0.6,
		BM25Weight:      0.3,
		RecencyWeight:   0.1,
		RecencyHalfLife: 30 * 24 * time.Hour,
	}
}

// WeightedFusion combines sparse and dense candidate lists with a fixed
// linear weighting rather than the teacher's rank-based RRF, grounded on
// internal/vectorstore/sqlite/hybrid.go's computeMetadataBoost/applyRRF
// shape but scoring by weighted sum of normalized scores plus a recency
// term instead of reciprocal rank.
type WeightedFusion struct {
	cfg WeightedFusionConfig
	now func() time.Time
}

// NewWeightedFusion builds a WeightedFusion with cfg.
func NewWeightedFusion(cfg WeightedFusionConfig) *WeightedFusion {
	return &WeightedFusion{cfg: cfg, now: time.Now}
}

// Fuse implements FusionStrategy.
func (f *WeightedFusion) Fuse(ctx context.Context, sparseResults, denseResults []vectorstore.SearchResult, mode HybridMode) ([]Result, error) {
	byID := make(map[string]*Result)
	order := make([]string, 0, len(sparseResults)+len(denseResults))

	upsert := func(id string, build func(r *Result)) {
		r, ok := byID[id]
		if !ok {
			r = &Result{RerankedFrom: -1}
			byID[id] = r
			order = append(order, id)
		}
		build(r)
	}

	for _, sr := range denseResults {
		sr := sr
		upsert(sr.Document.ID, func(r *Result) {
			r.Document = sr.Document
			r.DenseScore = sr.Score
		})
	}
	for _, sr := range sparseResults {
		sr := sr
		upsert(sr.Document.ID, func(r *Result) {
			r.Document = sr.Document
			r.SparseScore = sr.Score
		})
	}

	now := f.now()
	results := make([]Result, 0, len(order))
	for _, id := range order {
		r := byID[id]
		r.Score = float32(
			f.cfg.CosineWeight*float64(r.DenseScore) +
				f.cfg.BM25Weight*float64(r.SparseScore) +
				f.cfg.RecencyWeight*f.recencyScore(r.Document.UpdatedAt, now),
		)
		results = append(results, *r)
	}

	sortResultsByScoreDesc(results)
	return results, nil
}

// recencyScore applies exponential decay based on RecencyHalfLife, yielding
// 1.0 for a document updated right now and 0.5 at exactly one half-life ago.
func (f *WeightedFusion) recencyScore(updatedAt, now time.Time) float64 {
	if updatedAt.IsZero() || f.cfg.RecencyHalfLife <= 0 {
		return 0
	}
	age := now.Sub(updatedAt)
	if age < 0 {
		age = 0
	}
	halfLives := float64(age) / float64(f.cfg.RecencyHalfLife)
	return math.Pow(2, -halfLives)
}

func sortResultsByScoreDesc(results []Result) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}
