package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBatcher_EmbedAll_SplitsIntoBatches(t *testing.T) {
	var calls [][]string
	b := NewBatcher(BatcherConfig{MaxBatch: 2}, func(ctx context.Context, batch []string) ([]*Embedding, error) {
		calls = append(calls, batch)
		out := make([]*Embedding, len(batch))
		for i, text := range batch {
			out[i] = &Embedding{Text: text}
		}
		return out, nil
	})

	result, err := b.EmbedAll(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	require.Len(t, result, 5)
	require.Len(t, calls, 3)
	require.Len(t, calls[0], 2)
	require.Len(t, calls[2], 1)
}

func TestBatcher_RetriesTransientFailures(t *testing.T) {
	var attempts int32
	b := NewBatcher(BatcherConfig{MaxBatch: 10, BaseDelay: time.Millisecond, MaxRetries: 3}, func(ctx context.Context, batch []string) ([]*Embedding, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return nil, &Transient{Err: errors.New("rate limited")}
		}
		return []*Embedding{{Text: batch[0]}}, nil
	})

	result, err := b.EmbedAll(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestBatcher_PermanentFailureDoesNotRetry(t *testing.T) {
	var attempts int32
	b := NewBatcher(BatcherConfig{MaxBatch: 10, BaseDelay: time.Millisecond}, func(ctx context.Context, batch []string) ([]*Embedding, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("invalid api key")
	})

	_, err := b.EmbedAll(context.Background(), []string{"x"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrProviderPermanent))
	require.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestBatcher_ExhaustsRetriesAndFails(t *testing.T) {
	b := NewBatcher(BatcherConfig{MaxBatch: 10, BaseDelay: time.Millisecond, MaxRetries: 2}, func(ctx context.Context, batch []string) ([]*Embedding, error) {
		return nil, &Transient{Err: errors.New("still rate limited")}
	})

	_, err := b.EmbedAll(context.Background(), []string{"x"})
	require.Error(t, err)
}
