// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/internal/apperr"
	"github.com/pdiddy/research-admin/internal/envelope"
	"github.com/pdiddy/research-admin/internal/gateway"
	"github.com/pdiddy/research-admin/internal/session"
	"github.com/pdiddy/research-admin/pkg/types"
)

// PasswordGranter performs the resource-owner password grant.
// *gateway.OIDCClient satisfies it.
type PasswordGranter interface {
	Password(ctx context.Context, username, password string) (types.Tokens, error)
}

// Authenticator logs users in and out of a session.
type Authenticator struct {
	gw      *gateway.Gateway
	session *session.Session
	idp     PasswordGranter
	log     zerolog.Logger
}

// NewAuthenticator returns an Authenticator. With a nil idp, credentials
// are posted to the backend's own /auth/login.
func NewAuthenticator(gw *gateway.Gateway, idp PasswordGranter, log zerolog.Logger) *Authenticator {
	return &Authenticator{gw: gw, session: gw.Session(), idp: idp, log: log}
}

// Login exchanges credentials for tokens, resolves the caller's profile
// and stores both in the session tier chosen by remember.
func (a *Authenticator) Login(ctx context.Context, username, password string, remember bool) (*types.UserProfile, error) {
	if username == "" || password == "" {
		return nil, apperr.New(apperr.KindValidation, "", "username and password are required")
	}

	var (
		tokens types.Tokens
		user   *types.UserProfile
		err    error
	)
	if a.idp != nil && !a.gw.MockEnabled() {
		tokens, err = a.idp.Password(ctx, username, password)
		if err != nil {
			return nil, apperr.New(apperr.KindPermission, "401", "login failed").Wrap(err)
		}
		user = a.gw.Identity(ctx, tokens.AccessToken)
	} else {
		tokens, user, err = a.backendLogin(ctx, username, password)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, apperr.New(apperr.KindPermission, "401", "login returned no identity")
	}

	if err := a.session.Login(ctx, tokens, user, remember); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	a.log.Info().Str("user", user.Username).Strs("roles", user.Roles).Str("tier", a.session.Tier().String()).Msg("logged in")
	return a.session.User(), nil
}

func (a *Authenticator) backendLogin(ctx context.Context, username, password string) (types.Tokens, *types.UserProfile, error) {
	res, err := a.gw.Do(ctx, gateway.Request{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Body:     map[string]string{"username": username, "password": password},
		SkipAuth: true,
	})
	if err != nil {
		return types.Tokens{}, nil, err
	}
	reply, err := envelope.Into[types.AuthReply](res)
	if err != nil {
		return types.Tokens{}, nil, err
	}
	if reply.Token == "" {
		return types.Tokens{}, nil, errors.New("login returned an empty token")
	}
	tokens := types.Tokens{AccessToken: reply.Token, RefreshToken: reply.RefreshToken}
	user := reply.User
	if user == nil {
		user = a.gw.Identity(ctx, reply.Token)
	}
	return tokens, user, nil
}

// Logout tells the backend, then clears the session whatever it said.
func (a *Authenticator) Logout(ctx context.Context) error {
	if a.session.IsLoggedIn() {
		if _, err := a.gw.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/auth/logout", Silent: true}); err != nil {
			a.log.Debug().Err(err).Msg("backend logout failed")
		}
	}
	return a.session.Logout(ctx)
}
