// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the authenticated session: the token pair, the
// user profile, and the two storage tiers they persist in.
//
// Exactly one tier is authoritative at a time. Logging in with remember
// writes the durable tier and clears the session tier; logging in without
// it does the reverse. Logout clears both.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/pkg/types"
)

// Keys under which each tier stores the session.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserInfo     = "user_info"
)

var allKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserInfo}

// Tier identifies a storage tier.
type Tier int

const (
	TierNone Tier = iota
	TierSession
	TierDurable
)

func (t Tier) String() string {
	switch t {
	case TierSession:
		return "session"
	case TierDurable:
		return "durable"
	default:
		return "none"
	}
}

// Session is the authenticated session context. It is safe for concurrent
// use; the gateway reads tokens from it while refreshes replace them.
type Session struct {
	mu     sync.RWMutex
	tokens types.Tokens
	user   *types.UserProfile
	tier   Tier

	sessionTier Store
	durableTier Store
	log         zerolog.Logger
}

// New returns a logged-out Session over the two tiers.
func New(sessionTier, durableTier Store, log zerolog.Logger) *Session {
	return &Session{sessionTier: sessionTier, durableTier: durableTier, log: log}
}

func (s *Session) store(t Tier) Store {
	if t == TierDurable {
		return s.durableTier
	}
	return s.sessionTier
}

// Restore loads a previously persisted session, preferring the session
// tier over the durable tier. Finding nothing is not an error.
func (s *Session) Restore(ctx context.Context) error {
	for _, t := range []Tier{TierSession, TierDurable} {
		st := s.store(t)
		access, ok, err := st.Get(ctx, KeyAccessToken)
		if err != nil {
			return fmt.Errorf("restoring %s tier: %w", t, err)
		}
		if !ok || access == "" {
			continue
		}
		refresh, _, err := st.Get(ctx, KeyRefreshToken)
		if err != nil {
			return fmt.Errorf("restoring %s tier: %w", t, err)
		}

		var user *types.UserProfile
		if raw, ok, err := st.Get(ctx, KeyUserInfo); err == nil && ok && raw != "" {
			var u types.UserProfile
			if err := json.Unmarshal([]byte(raw), &u); err != nil {
				s.log.Warn().Err(err).Str("tier", t.String()).Msg("discarding unreadable user_info")
			} else {
				user = &u
			}
		}

		s.mu.Lock()
		s.tokens = types.Tokens{AccessToken: access, RefreshToken: refresh}
		s.user = user
		s.tier = t
		s.mu.Unlock()
		s.log.Debug().Str("tier", t.String()).Msg("session restored")
		return nil
	}
	return nil
}

// Login stores tokens and user in the tier selected by remember and
// clears the other tier.
func (s *Session) Login(ctx context.Context, tokens types.Tokens, user *types.UserProfile, remember bool) error {
	if tokens.AccessToken == "" {
		return errors.New("login: empty access token")
	}
	target, stale := TierSession, TierDurable
	if remember {
		target, stale = TierDurable, TierSession
	}

	kv := map[string]string{
		KeyAccessToken:  tokens.AccessToken,
		KeyRefreshToken: tokens.RefreshToken,
	}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}
		kv[KeyUserInfo] = string(data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store(target).Set(ctx, kv); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if user == nil {
		if err := s.store(target).Delete(ctx, KeyUserInfo); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}
	if err := s.store(stale).Delete(ctx, allKeys...); err != nil {
		return fmt.Errorf("clearing %s tier: %w", stale, err)
	}

	s.tokens = tokens
	s.user = cloneUser(user)
	s.tier = target
	return nil
}

// SetTokens replaces both tokens together in the authoritative tier.
func (s *Session) SetTokens(ctx context.Context, tokens types.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier := s.tier
	if tier == TierNone {
		tier = TierSession
	}
	err := s.store(tier).Set(ctx, map[string]string{
		KeyAccessToken:  tokens.AccessToken,
		KeyRefreshToken: tokens.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("saving tokens: %w", err)
	}
	s.tokens = tokens
	s.tier = tier
	return nil
}

// SetUser replaces the stored profile.
func (s *Session) SetUser(ctx context.Context, user *types.UserProfile) error {
	if user == nil {
		return errors.New("set user: nil profile")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tier := s.tier
	if tier == TierNone {
		tier = TierSession
	}
	if err := s.store(tier).Set(ctx, map[string]string{KeyUserInfo: string(data)}); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	s.user = cloneUser(user)
	return nil
}

// Logout clears the in-memory session and both tiers.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = types.Tokens{}
	s.user = nil
	s.tier = TierNone

	errSession := s.sessionTier.Delete(ctx, allKeys...)
	errDurable := s.durableTier.Delete(ctx, allKeys...)
	if err := errors.Join(errSession, errDurable); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Tokens returns the current token pair.
func (s *Session) Tokens() types.Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// AccessToken returns the current access token, empty when logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken
}

// User returns a copy of the profile, or nil.
func (s *Session) User() *types.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// Tier reports which tier is authoritative.
func (s *Session) Tier() Tier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tier
}

// IsLoggedIn reports whether an access token is held.
func (s *Session) IsLoggedIn() bool {
	return s.AccessToken() != ""
}

// HasRole reports whether the user holds any of roles.
func (s *Session) HasRole(roles ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AnyRole(s.user, roles...)
}

// HasAllRoles reports whether the user holds every one of roles.
func (s *Session) HasAllRoles(roles ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	held := userRoles(s.user)
	for _, r := range roles {
		if !slices.Contains(held, r) {
			return false
		}
	}
	return true
}

// AnyRole reports whether user holds at least one of roles.
func AnyRole(user *types.UserProfile, roles ...string) bool {
	if user == nil {
		return false
	}
	held := userRoles(user)
	for _, r := range roles {
		if slices.Contains(held, r) {
			return true
		}
	}
	return false
}

func userRoles(u *types.UserProfile) []string {
	if u.Role == "" || slices.Contains(u.Roles, u.Role) {
		return u.Roles
	}
	return append(slices.Clone(u.Roles), u.Role)
}

func cloneUser(u *types.UserProfile) *types.UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
