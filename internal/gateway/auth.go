// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pdiddy/research-admin/pkg/types"
)

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (types.Tokens, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (types.Tokens, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (types.Tokens, error) {
	return f(ctx, refreshToken)
}

// tokenResponse is the OAuth2 token endpoint reply (RFC 6749 §5.1, §5.2).
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// OIDCClient talks to an OpenID Connect token endpoint with form-encoded
// password and refresh_token grants.
type OIDCClient struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client
}

// NewOIDCClient returns a client for cfg.
func NewOIDCClient(cfg types.AuthConfig) *OIDCClient {
	return &OIDCClient{
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		HTTP:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Refresh implements Refresher.
func (c *OIDCClient) Refresh(ctx context.Context, refreshToken string) (types.Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.grant(ctx, form)
}

// Password performs the resource-owner password grant.
func (c *OIDCClient) Password(ctx context.Context, username, password string) (types.Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	return c.grant(ctx, form)
}

func (c *OIDCClient) grant(ctx context.Context, form url.Values) (types.Tokens, error) {
	if c.TokenURL == "" {
		return types.Tokens{}, errors.New("token endpoint not configured")
	}
	form.Set("client_id", c.ClientID)
	if c.ClientSecret != "" {
		form.Set("client_secret", c.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return types.Tokens{}, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return types.Tokens{}, fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return types.Tokens{}, fmt.Errorf("reading token response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return types.Tokens{}, fmt.Errorf("decoding token response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		msg := tr.ErrorDescription
		if msg == "" {
			msg = tr.Error
		}
		return types.Tokens{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, msg)
	}
	if tr.AccessToken == "" {
		return types.Tokens{}, errors.New("token endpoint returned an empty access_token")
	}
	return types.Tokens{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}, nil
}

// tokenClaims covers both identity-provider tokens and the mock's tokens.
type tokenClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	Department        string `json:"department"`
	UserID            string `json:"uid"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// ProfileFromToken extracts a partial identity from an access token
// without verifying its signature. The backend remains the authority;
// this only seeds the session until the verify call answers.
func ProfileFromToken(token string) (*types.UserProfile, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	roles := BusinessRoles(claims.RealmAccess.Roles)
	if claims.Role != "" && !slices.Contains(roles, claims.Role) {
		roles = append(roles, claims.Role)
	}
	p := &types.UserProfile{
		ID:         claims.UserID,
		UUID:       claims.Subject,
		Username:   claims.PreferredUsername,
		Name:       claims.Name,
		Email:      claims.Email,
		Roles:      roles,
		Department: claims.Department,
	}
	if len(roles) > 0 {
		p.Role = roles[0]
	}
	return p, nil
}

// BusinessRoles drops identity-provider housekeeping roles.
func BusinessRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if strings.HasPrefix(r, "default-") || r == "offline_access" || r == "uma_authorization" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// mergeProfile overlays the confirmed profile onto the token-derived one.
func mergeProfile(partial, confirmed *types.UserProfile) *types.UserProfile {
	if partial == nil {
		return confirmed
	}
	if confirmed == nil {
		return partial
	}
	out := *partial
	if confirmed.ID != "" {
		out.ID = confirmed.ID
	}
	if confirmed.UUID != "" {
		out.UUID = confirmed.UUID
	}
	if confirmed.Username != "" {
		out.Username = confirmed.Username
	}
	if confirmed.Name != "" {
		out.Name = confirmed.Name
	}
	if confirmed.Email != "" {
		out.Email = confirmed.Email
	}
	if confirmed.Department != "" {
		out.Department = confirmed.Department
	}
	if confirmed.Avatar != "" {
		out.Avatar = confirmed.Avatar
	}
	if len(confirmed.Roles) > 0 {
		out.Roles = confirmed.Roles
	}
	if confirmed.Role != "" {
		out.Role = confirmed.Role
	}
	return &out
}
