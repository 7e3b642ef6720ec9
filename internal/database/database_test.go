package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPingWithRetryRecovers(t *testing.T) {
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	err := pingWithRetry(context.Background(), ping, 5, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPingWithRetryGivesUp(t *testing.T) {
	calls := 0
	ping := func(context.Context) error {
		calls++
		return errors.New("connection refused")
	}

	err := pingWithRetry(context.Background(), ping, 2, time.Millisecond)
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Equal(t, 2, calls)

	calls = 0
	err = pingWithRetry(context.Background(), ping, 0, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPingWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ping := func(context.Context) error {
		cancel()
		return errors.New("connection refused")
	}

	err := pingWithRetry(ctx, ping, 10, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
