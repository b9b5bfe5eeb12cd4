package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestErrorHandler(t *testing.T, sentryEnabled bool) *ErrorHandler {
	t.Helper()
	logger := NewLogger(LoggerConfig{Level: "debug", Format: "text"})
	return NewErrorHandler(logger, nil, sentryEnabled)
}

func TestHashMessage_DeterministicAndDistinguishing(t *testing.T) {
	a := hashMessage("provider timeout: embeddings")
	b := hashMessage("provider timeout: embeddings")
	c := hashMessage("provider timeout: lexical")

	assert.Equal(t, a, b, "identical messages must hash identically")
	assert.NotEqual(t, a, c, "different messages must hash differently")
}

func TestErrorHandler_SeenBeforeDedups(t *testing.T) {
	eh := newTestErrorHandler(t, false)

	hash := hashMessage("boom")
	assert.False(t, eh.seenBefore(hash), "first occurrence should not be marked seen")
	assert.True(t, eh.seenBefore(hash), "second occurrence of the same hash should be seen")
}

func TestErrorHandler_HandleError_NilErrorDoesNotPanic(t *testing.T) {
	eh := newTestErrorHandler(t, false)
	require.NotPanics(t, func() {
		eh.HandleError(context.Background(), nil, ErrorContext{Method: "refresh"})
	})
}

func TestErrorHandler_HandleError_SentryDisabledSkipsReport(t *testing.T) {
	eh := newTestErrorHandler(t, false)
	require.NotPanics(t, func() {
		eh.HandleError(context.Background(), errors.New("boom"), ErrorContext{ErrorType: "provider_transient"})
	})
}
