// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"sync"
)

// State is the refresh gate's state.
type State int

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

type outcome struct {
	token string
	err   error
}

// refreshGate admits one physical refresh at a time. Callers that arrive
// while a refresh is in flight are parked in arrival order and released,
// in that order, with the single outcome once it settles.
type refreshGate struct {
	mu       sync.Mutex
	inflight bool
	waiters  []chan outcome

	// refresh performs the physical refresh and returns the new access token.
	refresh func(ctx context.Context) (string, error)
	// current returns the access token the session holds now.
	current func() string
	// onQueued is called for each parked caller.
	onQueued func()
}

func (g *refreshGate) state() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight {
		return Refreshing
	}
	return Idle
}

// await returns an access token to retry with. stale is the token the
// caller's rejected request carried. If the session has already moved
// past it and nothing is in flight, the current token is returned without
// a new refresh.
func (g *refreshGate) await(ctx context.Context, stale string) (string, error) {
	g.mu.Lock()
	if g.inflight {
		ch := make(chan outcome, 1)
		g.waiters = append(g.waiters, ch)
		g.mu.Unlock()
		if g.onQueued != nil {
			g.onQueued()
		}

		select {
		case out := <-ch:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if cur := g.current(); cur != "" && cur != stale {
		g.mu.Unlock()
		return cur, nil
	}
	g.inflight = true
	g.mu.Unlock()

	// The refresh outlives the leader's context; parked callers share its outcome.
	token, err := g.refresh(context.WithoutCancel(ctx))

	g.mu.Lock()
	waiters := g.waiters
	g.waiters = nil
	g.inflight = false
	g.mu.Unlock()

	for _, ch := range waiters {
		ch <- outcome{token: token, err: err}
	}
	return token, err
}
