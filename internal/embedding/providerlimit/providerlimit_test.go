package providerlimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiter_CapsLocalConcurrency(t *testing.T) {
	l := New(Config{MaxConcurrent: 2})
	ctx := context.Background()

	var inFlight int32
	var maxObserved int32
	done := make(chan struct{})

	for i := 0; i < 6; i++ {
		go func() {
			release, err := l.Acquire(ctx, "openai")
			require.NoError(t, err)
			defer release()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				max := atomic.LoadInt32(&maxObserved)
				if n <= max || atomic.CompareAndSwapInt32(&maxObserved, max, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			done <- struct{}{}
		}()
	}

	for i := 0; i < 6; i++ {
		<-done
	}

	require.LessOrEqual(t, atomic.LoadInt32(&maxObserved), int32(2))
}

func TestLimiter_AcquireRespectsCancellation(t *testing.T) {
	l := New(Config{MaxConcurrent: 1})
	release, err := l.Acquire(context.Background(), "p")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "p")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_DefaultsMaxConcurrent(t *testing.T) {
	l := New(Config{})
	require.Equal(t, DefaultMaxConcurrent, l.cfg.MaxConcurrent)
}
