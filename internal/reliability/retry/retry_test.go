package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errConflict = errors.New("conflict")

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastConfig() *Config {
	return &Config{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, BackoffMultiplier: 2}
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(), quiet(), "op", func(ctx context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, errConflict
		}
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestDo_GivesUp(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(), quiet(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, errConflict
	})
	assert.ErrorIs(t, err, errConflict)
	assert.Equal(t, 3, calls)
}

func TestDo_RetryIfStopsOnOtherErrors(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryIf = func(err error) bool { return errors.Is(err, errConflict) }

	calls := 0
	other := errors.New("boom")
	_, err := Do(context.Background(), cfg, quiet(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, other
	})
	assert.Same(t, other, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, fastConfig(), quiet(), "op", func(ctx context.Context) (int, error) {
		t.Fatal("must not be called")
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoff(t *testing.T) {
	cfg := &Config{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, BackoffMultiplier: 2}
	assert.Equal(t, 100*time.Millisecond, calculateBackoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, calculateBackoff(1, cfg))
	assert.Equal(t, 300*time.Millisecond, calculateBackoff(2, cfg))
}
