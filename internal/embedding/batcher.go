package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrProviderPermanent marks a batch failure the caller should not retry.
// Transient failures are retried with backoff; any other error is treated as
// permanent on its first occurrence and is not retried.
var ErrProviderPermanent = errors.New("embedding: permanent provider error")

// Transient wraps an underlying error to mark it retryable, matching the
// ProviderTransient/ProviderPermanent taxonomy.
type Transient struct{ Err error }

func (t *Transient) Error() string { return fmt.Sprintf("embedding: transient provider error: %v", t.Err) }
func (t *Transient) Unwrap() error { return t.Err }

// BatcherConfig controls the bounded exponential backoff retry policy.
type BatcherConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxBatch    int
}

// DefaultBatcherConfig mirrors the teacher's rate-limiter defaults (bounded
// retry, capped delay) adapted to embedding batch submission.
func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		MaxRetries: 5,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		MaxBatch:   64,
	}
}

// EmbedFunc embeds one batch of texts, returning a *Transient-wrapped error
// for retryable failures and any other error for permanent ones.
type EmbedFunc func(ctx context.Context, batch []string) ([]*Embedding, error)

// Batcher splits a set of texts into provider-sized batches and submits each
// through embedOne with bounded exponential backoff on transient failures,
// grounded on the teacher's token-bucket backoff shape in
// internal/security/ratelimit, generalized from rate-limiting HTTP requests
// to retrying embedding-provider batches.
type Batcher struct {
	cfg      BatcherConfig
	embedOne EmbedFunc
}

// NewBatcher builds a Batcher. A zero-value cfg.MaxBatch uses
// DefaultBatcherConfig's value.
func NewBatcher(cfg BatcherConfig, embedOne EmbedFunc) *Batcher {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultBatcherConfig().MaxBatch
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultBatcherConfig().MaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBatcherConfig().BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultBatcherConfig().MaxDelay
	}
	return &Batcher{cfg: cfg, embedOne: embedOne}
}

// EmbedAll embeds every text in texts, submitting provider-sized batches in
// order and concatenating their results.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string) ([]*Embedding, error) {
	var out []*Embedding

	for start := 0; start < len(texts); start += b.cfg.MaxBatch {
		end := start + b.cfg.MaxBatch
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := b.embedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch [%d:%d]: %w", start, end, err)
		}
		out = append(out, embeddings...)
	}

	return out, nil
}

func (b *Batcher) embedWithRetry(ctx context.Context, batch []string) ([]*Embedding, error) {
	var lastErr error

	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := b.backoffDelay(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := b.embedOne(ctx, batch)
		if err == nil {
			return result, nil
		}

		var transient *Transient
		if !errors.As(err, &transient) {
			return nil, fmt.Errorf("%w: %v", ErrProviderPermanent, err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("exhausted %d retries: %w", b.cfg.MaxRetries, lastErr)
}

// backoffDelay returns a bounded exponential delay for the given attempt
// number (1-indexed).
func (b *Batcher) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(float64(b.cfg.BaseDelay) * math.Pow(2, float64(attempt-1)))
	if delay > b.cfg.MaxDelay {
		delay = b.cfg.MaxDelay
	}
	return delay
}
