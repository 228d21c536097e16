// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pdiddy/research-admin/pkg/types"
)

// refreshTTLFactor sets refresh-token lifetime relative to access tokens.
const refreshTTLFactor = 48

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

type claims struct {
	jwt.RegisteredClaims
	UserID            string `json:"uid"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Role              string `json:"role,omitempty"`
	Department        string `json:"department,omitempty"`
	RealmAccess       realm  `json:"realm_access"`
	Use               string `json:"use"`
}

type realm struct {
	Roles []string `json:"roles"`
}

// tokenIssuer signs and checks HS256 tokens.
type tokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func (t *tokenIssuer) issue(u *account, use string) (string, error) {
	ttl := t.ttl
	if use == useRefresh {
		ttl *= refreshTTLFactor
	}
	now := t.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			Issuer:    "research-admin-mock",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:            u.ID,
		PreferredUsername: u.Username,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		Department:        u.Department,
		RealmAccess:       realm{Roles: u.Roles},
		Use:               use,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.key)
}

func (t *tokenIssuer) pair(u *account) (types.Tokens, error) {
	access, err := t.issue(u, useAccess)
	if err != nil {
		return types.Tokens{}, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := t.issue(u, useRefresh)
	if err != nil {
		return types.Tokens{}, fmt.Errorf("signing refresh token: %w", err)
	}
	return types.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

var errWrongUse = errors.New("token used for the wrong purpose")

// parse verifies signature, expiry and purpose.
func (t *tokenIssuer) parse(token, use string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if c.Use != use {
		return nil, errWrongUse
	}
	return &c, nil
}

// authenticate resolves the caller. No bearer means anonymous; a bearer
// that fails verification is answered with 401.
func (e *Engine) authenticate(call Call) (*account, *Reply) {
	token := call.bearer()
	if token == "" {
		return nil, nil
	}
	c, err := e.tokens.parse(token, useAccess)
	if err != nil {
		e.log.Debug().Err(err).Msg("rejecting bearer token")
		r := fail(http.StatusUnauthorized, "token expired or invalid")
		return nil, &r
	}
	u := e.store.accountByID(c.UserID)
	if u == nil {
		r := fail(http.StatusUnauthorized, "unknown user")
		return nil, &r
	}
	return u, nil
}

func requireUser(r *request) *Reply {
	if r.user == nil {
		rep := fail(http.StatusUnauthorized, "login required")
		return &rep
	}
	return nil
}

func profileOf(u *account) types.UserProfile {
	p := u.UserProfile
	p.Roles = append([]string{}, u.Roles...)
	return p
}

func (e *Engine) login(r *request) Reply {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := r.decode(&body); err != nil {
		return fail(http.StatusBadRequest, "malformed login request")
	}
	u := e.store.account(strings.TrimSpace(body.Username), body.Password)
	if u == nil {
		return fail(http.StatusUnauthorized, "wrong username or password")
	}
	tokens, err := e.tokens.pair(u)
	if err != nil {
		return fail(http.StatusInternalServerError, err.Error())
	}
	p := profileOf(u)
	return success(types.AuthReply{Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: &p}, "login successful")
}

func (e *Engine) refresh(r *request) Reply {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := r.decode(&body); err != nil || body.RefreshToken == "" {
		return fail(http.StatusUnauthorized, "refresh token required")
	}
	c, err := e.tokens.parse(body.RefreshToken, useRefresh)
	if err != nil {
		return fail(http.StatusUnauthorized, "refresh token expired or invalid")
	}
	u := e.store.accountByID(c.UserID)
	if u == nil {
		return fail(http.StatusUnauthorized, "unknown user")
	}
	tokens, err := e.tokens.pair(u)
	if err != nil {
		return fail(http.StatusInternalServerError, err.Error())
	}
	return success(types.AuthReply{Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, "token refreshed")
}

func (e *Engine) verify(r *request) Reply {
	u, denied := e.authenticate(r.Call)
	if denied != nil {
		return *denied
	}
	if u == nil {
		return fail(http.StatusUnauthorized, "login required")
	}
	return success(profileOf(u), "")
}

func (e *Engine) logout(*request) Reply {
	return success(true, "logged out")
}

func (e *Engine) current(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	return success(profileOf(r.user), "")
}
