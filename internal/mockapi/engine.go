// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mockapi emulates the research management backend in memory. It
// answers both response dialects the real backend uses: the business
// envelope {code, message, data} and the Strapi collection envelope
// {data, meta}.
//
// Calls are dispatched through an ordered route table; the first match
// wins, so fixed paths such as /results/statistics are registered before
// the parameterized /results/{id}. Every collection lives in one store
// guarded by a mutex.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/internal/metrics"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"

	defaultTokenTTL    = 30 * time.Minute
	defaultSuccessRate = 0.8
)

// Options configure an Engine. Zero values select the defaults.
type Options struct {
	// Seed replaces the embedded demo data.
	Seed []byte
	// SigningKey signs the HS256 tokens the engine issues.
	SigningKey string
	TokenTTL   time.Duration
	// CrawlerSuccessRate is the default Prober's pass probability; 0 means 0.8.
	CrawlerSuccessRate float64

	Scorer  Scorer
	Prober  Prober
	Now     func() time.Time
	Metrics metrics.Recorder
	Log     zerolog.Logger
}

// Engine is the in-memory backend. It is safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	store  *store
	routes []route

	tokens    *tokenIssuer
	scorer    Scorer
	prober    Prober
	sanitizer *bluemonday.Policy
	now       func() time.Time
	metrics   metrics.Recorder
	log       zerolog.Logger
}

// NewEngine loads the seed and builds the route table.
func NewEngine(opts Options) (*Engine, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	st, err := loadStore(opts.Seed, now().Format(dateLayout))
	if err != nil {
		return nil, err
	}

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	key := opts.SigningKey
	if key == "" {
		key = "research-admin-mock"
	}

	e := &Engine{
		store:     st,
		tokens:    &tokenIssuer{key: []byte(key), ttl: ttl, now: now},
		scorer:    opts.Scorer,
		prober:    opts.Prober,
		sanitizer: bluemonday.UGCPolicy(),
		now:       now,
		metrics:   opts.Metrics,
		log:       opts.Log,
	}
	if e.scorer == nil {
		e.scorer = NewRandomScorer(rand.New(rand.NewPCG(uint64(now().UnixNano()), 0x5eed)))
	}
	if e.prober == nil {
		e.prober = NewRandomProber(opts.CrawlerSuccessRate, rand.New(rand.NewPCG(uint64(now().UnixNano()), 0xc0de)))
	}
	if e.metrics == nil {
		e.metrics = metrics.Nop{}
	}
	e.routes = e.routeTable()
	return e, nil
}

// request is a Call with its route parameters and caller resolved.
type request struct {
	Call
	query  url.Values
	params []string
	user   *account
}

func (r *request) param(i int) string {
	if i < len(r.params) {
		return r.params[i]
	}
	return ""
}

// Serve dispatches call and returns the reply. The reply body is already
// marshalled so it never aliases engine state.
func (e *Engine) Serve(ctx context.Context, call Call) Reply {
	path, query := splitPath(call.Path, call.Query)
	method := strings.ToUpper(call.Method)
	if method == "" {
		method = http.MethodGet
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, rt := range e.routes {
		if rt.method != method {
			continue
		}
		params, ok := rt.match(path)
		if !ok {
			continue
		}
		req := &request{Call: call, query: query, params: params}
		if !rt.public {
			user, denied := e.authenticate(call)
			if denied != nil {
				return e.finish(rt.name, *denied)
			}
			req.user = user
		}
		return e.finish(rt.name, rt.handle(e, req))
	}

	e.log.Warn().Str("method", method).Str("path", path).Msg("mock route not found")
	return e.finish("unmatched", fail(http.StatusNotFound, fmt.Sprintf("no mock route for %s %s", method, path)))
}

func (e *Engine) finish(name string, reply Reply) Reply {
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}
	e.metrics.RecordMockRoute(name, reply.Status)
	data, err := json.Marshal(reply.Body)
	if err != nil {
		e.log.Error().Err(err).Str("route", name).Msg("encoding mock reply")
		return Reply{Status: http.StatusInternalServerError, Body: bizEnvelope{Code: 500, Message: "mock encoding failed"}}
	}
	reply.Body = json.RawMessage(data)
	return reply
}

// splitPath strips the /api prefix and any inline query string, merging
// the latter into q.
func splitPath(raw string, q url.Values) (string, url.Values) {
	query := url.Values{}
	for k, vs := range q {
		query[k] = append([]string(nil), vs...)
	}
	path := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		path = raw[:i]
		if inline, err := url.ParseQuery(raw[i+1:]); err == nil {
			for k, vs := range inline {
				query[k] = append(query[k], vs...)
			}
		}
	}
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		path = strings.TrimPrefix(path, "/api")
	}
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path, query
}

func (e *Engine) today() string { return e.now().Format(dateLayout) }

func (e *Engine) stamp() string { return e.now().Format(dateTimeLayout) }

// sanitize strips unsafe markup from caller-supplied rich text.
func (e *Engine) sanitize(s string) string {
	if s == "" {
		return s
	}
	return e.sanitizer.Sanitize(s)
}
