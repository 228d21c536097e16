// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateSkipsRefreshWhenTokenMovedOn(t *testing.T) {
	var calls atomic.Int32
	g := &refreshGate{
		refresh: func(context.Context) (string, error) { calls.Add(1); return "x", nil },
		current: func() string { return "fresh" },
	}

	tok, err := g.await(context.Background(), "stale")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Zero(t, calls.Load())
}

func TestGateSharesOutcomeWithWaiters(t *testing.T) {
	release := make(chan struct{})
	g := &refreshGate{
		refresh: func(context.Context) (string, error) {
			<-release
			return "", errors.New("boom")
		},
		current: func() string { return "" },
	}

	leaderDone := make(chan error, 1)
	go func() {
		_, err := g.await(context.Background(), "")
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return g.state() == Refreshing }, time.Second, time.Millisecond)

	const waiters = 3
	results := make(chan int, waiters)
	for i := range waiters {
		go func() {
			_, err := g.await(context.Background(), "")
			assert.EqualError(t, err, "boom")
			results <- i
		}()
		require.Eventually(t, func() bool {
			g.mu.Lock()
			defer g.mu.Unlock()
			return len(g.waiters) == i+1
		}, time.Second, time.Millisecond)
	}

	close(release)
	assert.EqualError(t, <-leaderDone, "boom")
	for range waiters {
		<-results
	}
	assert.Equal(t, Idle, g.state())
}

func TestGateWaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	var queued atomic.Int32
	g := &refreshGate{
		refresh:  func(context.Context) (string, error) { <-release; return "t", nil },
		current:  func() string { return "" },
		onQueued: func() { queued.Add(1) },
	}
	go g.await(context.Background(), "")
	require.Eventually(t, func() bool { return g.state() == Refreshing }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.await(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), queued.Load())
}

func TestLeaderCancellationDoesNotAbortRefresh(t *testing.T) {
	g := &refreshGate{
		refresh: func(ctx context.Context) (string, error) {
			return "t", ctx.Err()
		},
		current: func() string { return "" },
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tok, err := g.await(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "t", tok)
}
