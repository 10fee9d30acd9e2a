package retry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		Attempts:       3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return io.ErrUnexpectedEOF
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("syntax error")
	calls := 0
	err := Do(context.Background(), fastConfig(), "test", func(context.Context) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "test", func(context.Context) error {
		calls++
		return io.EOF
	})
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastConfig(), "test", func(context.Context) error {
		calls++
		cancel()
		return io.EOF
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTransient(t *testing.T) {
	assert.False(t, Transient(nil))
	assert.False(t, Transient(errors.New("duplicate key value")))
	assert.False(t, Transient(context.Canceled))

	assert.True(t, Transient(io.EOF))
	assert.True(t, Transient(errors.New("dial tcp: connection refused")))

	assert.True(t, Transient(&pgconn.PgError{Code: "08006"}))
	assert.True(t, Transient(&pgconn.PgError{Code: "57P01"}))
	assert.False(t, Transient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, Transient(&pgconn.PgError{Code: "42601"}))
}

func TestBackoffCapped(t *testing.T) {
	cfg := applyDefaults(Config{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		Multiplier:     10,
		JitterFraction: 0,
	})
	assert.Equal(t, 2*time.Second, backoff(5, cfg))
}
