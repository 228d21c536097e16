// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway is the single path every API call takes. It chooses the
// mock engine or the live transport, attaches the bearer token, survives
// access-token expiry with one shared refresh, and hands the response to
// the normalizer.
//
// A 401 on a request that did not skip auth parks the request behind the
// refresh gate. Exactly one refresh runs at a time; every parked request
// is retried once with the new token, or fails with the refresh error
// after the session has been cleared.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/internal/apperr"
	"github.com/pdiddy/research-admin/internal/envelope"
	"github.com/pdiddy/research-admin/internal/metrics"
	"github.com/pdiddy/research-admin/internal/mockapi"
	"github.com/pdiddy/research-admin/internal/session"
	"github.com/pdiddy/research-admin/pkg/types"
)

// Default backend paths.
const (
	DefaultRefreshPath = "/auth/refresh"
	DefaultVerifyPath  = "/auth/verify"
)

// HeaderRequestID carries the per-call correlation id.
const HeaderRequestID = "X-Request-ID"

// errRefreshFailed marks errors produced by a failed refresh. They are
// surfaced once by the refresh itself, not by every parked request.
var errRefreshFailed = errors.New("token refresh failed")

// Mocker answers calls in place of the live backend.
type Mocker interface {
	Serve(ctx context.Context, call mockapi.Call) mockapi.Reply
}

// Options wires a Gateway. Session is required; everything else has a
// usable default.
type Options struct {
	Session     *session.Session
	Transport   Transport
	Mock        Mocker
	MockEnabled bool

	// Refresher defaults to POST RefreshPath through the gateway itself.
	Refresher   Refresher
	RefreshPath string
	VerifyPath  string

	// LoginRedirectDelay defers Navigator.ToLogin; zero navigates at once.
	LoginRedirectDelay time.Duration

	Notifier  Notifier
	Navigator Navigator
	Journal   *apperr.Journal
	Metrics   metrics.Recorder
	Log       zerolog.Logger
}

// Gateway executes Requests. It is safe for concurrent use.
type Gateway struct {
	session     *session.Session
	transport   Transport
	mock        Mocker
	mockEnabled bool
	refresher   Refresher
	refreshPath string
	verifyPath  string
	loginDelay  time.Duration
	notifier    Notifier
	navigator   Navigator
	journal     *apperr.Journal
	metrics     metrics.Recorder
	log         zerolog.Logger
	gate        *refreshGate
}

// New returns a Gateway built from opts.
func New(opts Options) *Gateway {
	g := &Gateway{
		session:     opts.Session,
		transport:   opts.Transport,
		mock:        opts.Mock,
		mockEnabled: opts.MockEnabled,
		refresher:   opts.Refresher,
		refreshPath: opts.RefreshPath,
		verifyPath:  opts.VerifyPath,
		loginDelay:  opts.LoginRedirectDelay,
		notifier:    opts.Notifier,
		navigator:   opts.Navigator,
		journal:     opts.Journal,
		metrics:     opts.Metrics,
		log:         opts.Log,
	}
	if g.refreshPath == "" {
		g.refreshPath = DefaultRefreshPath
	}
	if g.verifyPath == "" {
		g.verifyPath = DefaultVerifyPath
	}
	if g.refresher == nil {
		g.refresher = RefresherFunc(g.endpointRefresh)
	}
	if g.notifier == nil {
		g.notifier = LogNotifier{Log: g.log}
	}
	if g.navigator == nil {
		g.navigator = nopNavigator{}
	}
	if g.journal == nil {
		g.journal = apperr.NewJournal(apperr.DefaultJournalSize, g.log)
	}
	if g.metrics == nil {
		g.metrics = metrics.Nop{}
	}
	g.gate = &refreshGate{
		refresh:  g.refreshTokens,
		current:  g.session.AccessToken,
		onQueued: g.metrics.RecordQueued,
	}
	return g
}

// State reports whether a token refresh is in flight.
func (g *Gateway) State() State { return g.gate.state() }

// Journal returns the error journal.
func (g *Gateway) Journal() *apperr.Journal { return g.journal }

// Session returns the session the gateway authenticates with.
func (g *Gateway) Session() *session.Session { return g.session }

// MockEnabled reports whether calls default to the mock engine.
func (g *Gateway) MockEnabled() bool { return g.mockEnabled && g.mock != nil }

// Get issues a GET.
func (g *Gateway) Get(ctx context.Context, path string, query url.Values) (envelope.Result, error) {
	return g.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST with a JSON body.
func (g *Gateway) Post(ctx context.Context, path string, body any) (envelope.Result, error) {
	return g.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT with a JSON body.
func (g *Gateway) Put(ctx context.Context, path string, body any) (envelope.Result, error) {
	return g.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE.
func (g *Gateway) Delete(ctx context.Context, path string) (envelope.Result, error) {
	return g.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do executes req and returns its normalized payload. Every failure is a
// *apperr.Error; it is journaled and, unless req.Silent, shown to the user
// before being returned.
func (g *Gateway) Do(ctx context.Context, req Request) (envelope.Result, error) {
	start := time.Now()
	req.Header = req.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	useMock := g.MockEnabled() && !req.NoMock
	log := g.log.With().
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Str("method", req.Method).
		Str("path", req.Path).
		Bool("mock", useMock).
		Logger()

	token := ""
	if !req.SkipAuth {
		token = g.session.AccessToken()
	}
	resp, err := g.send(ctx, req, useMock, token)
	if err == nil && !req.SkipAuth && unauthorized(resp) {
		log.Debug().Msg("access token rejected")
		var fresh string
		fresh, err = g.gate.await(ctx, token)
		if err == nil {
			resp, err = g.send(ctx, req, useMock, fresh)
		}
	}

	status := 0
	if resp != nil {
		status = resp.Status
	}
	g.metrics.RecordRequest(req.Method, status, useMock, time.Since(start))
	log.Debug().Int("status", status).Dur("elapsed", time.Since(start)).Msg("request finished")

	if err != nil {
		return envelope.Result{}, g.fail(req, classify(err))
	}
	res, err := g.normalize(ctx, req, resp)
	if err != nil {
		return res, g.fail(req, err)
	}
	return res, nil
}

func (g *Gateway) send(ctx context.Context, req Request, useMock bool, token string) (*Response, error) {
	if useMock {
		return g.mockRoundTrip(ctx, req, token)
	}
	if g.transport == nil {
		return nil, apperr.New(apperr.KindRuntime, "", "no live transport configured")
	}
	return g.transport.RoundTrip(ctx, req, token)
}

// mockRoundTrip synthesizes a transport-shaped response from the mock
// engine so both paths share normalization.
func (g *Gateway) mockRoundTrip(ctx context.Context, req Request, token string) (*Response, error) {
	var body json.RawMessage
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = data
	}
	header := req.Header.Clone()
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	files := make([]mockapi.FileMeta, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, mockapi.FileMeta{Field: f.Field, Name: f.Name, Size: int64(len(f.Content))})
	}

	reply := g.mock.Serve(ctx, mockapi.Call{
		Method: req.Method,
		Path:   req.Path,
		Query:  req.Query,
		Body:   body,
		Header: header,
		Files:  files,
	})
	data, err := json.Marshal(reply.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding mock reply: %w", err)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   data,
	}, nil
}

// unauthorized reports a transport 401 or a business envelope coded 401.
func unauthorized(resp *Response) bool {
	if resp == nil {
		return false
	}
	if resp.Status == http.StatusUnauthorized {
		return true
	}
	if resp.Status >= 400 {
		return false
	}
	env, err := envelope.Decode(resp.Body)
	return err == nil && env.Shape == envelope.ShapeBusiness && env.Code == "401"
}

func (g *Gateway) normalize(ctx context.Context, req Request, resp *Response) (envelope.Result, error) {
	if resp.Status >= 400 {
		e := apperr.FromStatus(resp.Status, messageOf(resp.Body))
		if len(resp.Body) > 0 {
			e.WithDetails(json.RawMessage(resp.Body))
		}
		if resp.Status == http.StatusUnauthorized && !req.SkipAuth {
			g.expireSession(ctx, req.Path)
		}
		return envelope.Result{}, e
	}

	env, err := envelope.Decode(resp.Body)
	if err != nil {
		return envelope.Result{}, apperr.New(apperr.KindRuntime, "", "malformed response").Wrap(err)
	}
	res, err := envelope.Normalize(env, req.fallback())
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Code == "401" && !req.SkipAuth {
			g.expireSession(ctx, req.Path)
		}
		return res, err
	}
	return res, nil
}

// messageOf pulls a human message out of an error body, if it has one.
func messageOf(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if json.Unmarshal(body, &m) != nil {
		return ""
	}
	if m.Message != "" {
		return m.Message
	}
	switch e := m.Error.(type) {
	case string:
		return e
	case map[string]any:
		if s, ok := e["message"].(string); ok {
			return s
		}
	}
	return ""
}

func classify(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.FromTransport(err)
}

// fail journals err, then surfaces it unless suppressed.
func (g *Gateway) fail(req Request, err error) error {
	g.journal.Record(err, req.label())
	ae, ok := apperr.As(err)
	if !ok {
		return err
	}
	if !req.Silent && !errors.Is(err, errRefreshFailed) {
		g.notifier.Notify(ae)
	}
	if ae.Kind == apperr.KindPermission && ae.Code == "403" && !req.Silent {
		g.navigator.ToForbidden()
	}
	return err
}

// refreshTokens performs the one physical refresh behind the gate.
func (g *Gateway) refreshTokens(ctx context.Context) (string, error) {
	rt := g.session.Tokens().RefreshToken

	var (
		tokens types.Tokens
		err    error
	)
	if rt == "" {
		err = errors.New("no refresh token held")
	} else {
		tokens, err = g.refresher.Refresh(ctx, rt)
	}
	if err == nil && tokens.AccessToken == "" {
		err = errors.New("refresh returned an empty access token")
	}
	if err != nil {
		g.metrics.RecordRefresh(metrics.RefreshFailure)
		ae := apperr.New(apperr.KindPermission, "401", "session expired, please log in again").
			Wrap(fmt.Errorf("%w: %w", errRefreshFailed, err))
		g.journal.Record(ae, "token refresh")
		g.notifier.Notify(ae)
		g.expireSession(ctx, "")
		return "", ae
	}

	if tokens.RefreshToken == "" {
		tokens.RefreshToken = rt
	}
	if err := g.session.SetTokens(ctx, tokens); err != nil {
		g.metrics.RecordRefresh(metrics.RefreshFailure)
		return "", apperr.New(apperr.KindRuntime, "", "storing refreshed tokens").Wrap(fmt.Errorf("%w: %w", errRefreshFailed, err))
	}
	g.metrics.RecordRefresh(metrics.RefreshSuccess)
	g.log.Info().Msg("access token refreshed")

	g.enrichIdentity(ctx, tokens.AccessToken)
	return tokens.AccessToken, nil
}

// Identity seeds a profile from the token, then asks the backend to
// confirm it. A failed confirmation keeps the token-derived profile; nil
// means neither source produced one.
func (g *Gateway) Identity(ctx context.Context, access string) *types.UserProfile {
	partial, err := ProfileFromToken(access)
	if err != nil {
		g.log.Debug().Err(err).Msg("access token carries no readable identity")
	}
	confirmed, err := g.Verify(ctx, access)
	if err != nil {
		g.log.Warn().Err(err).Msg("identity confirmation failed, keeping token profile")
	}
	return mergeProfile(partial, confirmed)
}

func (g *Gateway) enrichIdentity(ctx context.Context, access string) {
	profile := g.Identity(ctx, access)
	if profile == nil {
		return
	}
	if err := g.session.SetUser(ctx, profile); err != nil {
		g.log.Warn().Err(err).Msg("storing refreshed profile")
	}
}

// Verify asks the backend to confirm access and return its profile.
func (g *Gateway) Verify(ctx context.Context, access string) (*types.UserProfile, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+access)
	res, err := g.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     g.verifyPath,
		Header:   h,
		SkipAuth: true,
		Silent:   true,
	})
	if err != nil {
		return nil, err
	}
	return envelope.Into[*types.UserProfile](res)
}

func (g *Gateway) endpointRefresh(ctx context.Context, refreshToken string) (types.Tokens, error) {
	res, err := g.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     g.refreshPath,
		Body:     map[string]string{"refreshToken": refreshToken},
		SkipAuth: true,
		Silent:   true,
	})
	if err != nil {
		return types.Tokens{}, err
	}
	reply, err := envelope.Into[types.AuthReply](res)
	if err != nil {
		return types.Tokens{}, err
	}
	return types.Tokens{AccessToken: reply.Token, RefreshToken: reply.RefreshToken}, nil
}

// expireSession clears the session and schedules the login navigation.
func (g *Gateway) expireSession(ctx context.Context, redirect string) {
	if err := g.session.Logout(ctx); err != nil {
		g.log.Error().Err(err).Msg("clearing session")
	}
	if g.loginDelay <= 0 {
		g.navigator.ToLogin(redirect)
		return
	}
	time.AfterFunc(g.loginDelay, func() { g.navigator.ToLogin(redirect) })
}
