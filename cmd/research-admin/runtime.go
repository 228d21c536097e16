// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/internal/api"
	"github.com/pdiddy/research-admin/internal/apperr"
	"github.com/pdiddy/research-admin/internal/gateway"
	"github.com/pdiddy/research-admin/internal/metrics"
	"github.com/pdiddy/research-admin/internal/mockapi"
	"github.com/pdiddy/research-admin/internal/session"
	"github.com/pdiddy/research-admin/pkg/types"
)

func defaultLogging() types.LoggingConfig {
	return types.LoggingConfig{Level: "warn", Format: "console"}
}

// runtime is everything one command invocation needs. The session and
// gateway are built lazily so commands such as serve never open the
// session database.
type runtime struct {
	cfg types.Config
	log zerolog.Logger

	once     sync.Once
	buildErr error
	durable  *session.SQLiteStore
	session  *session.Session
	gw       *gateway.Gateway
	client   *api.Client
	auth     *api.Authenticator
	notifier *cliNotifier
	guard    *session.Guard
}

// cliNotifier prints surfaced errors once and remembers them so main does
// not print them again.
type cliNotifier struct {
	out  *gateway.WriterNotifier
	mu   sync.Mutex
	seen map[*apperr.Error]bool
}

func newCLINotifier(w io.Writer) *cliNotifier {
	return &cliNotifier{out: &gateway.WriterNotifier{W: w}, seen: map[*apperr.Error]bool{}}
}

func (n *cliNotifier) Notify(err *apperr.Error) {
	n.mu.Lock()
	n.seen[err] = true
	n.mu.Unlock()
	n.out.Notify(err)
}

func (n *cliNotifier) shown(err error) bool {
	ae, ok := apperr.As(err)
	if !ok {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seen[ae]
}

// newEngine builds the mock backend from cfg. A non-zero mock.seed makes
// rematch and crawler probes repeatable.
func newEngine(cfg types.Config, rec metrics.Recorder, log zerolog.Logger) (*mockapi.Engine, error) {
	opts := mockapi.Options{
		SigningKey:         cfg.Mock.SigningKey,
		TokenTTL:           cfg.Mock.TokenTTL,
		CrawlerSuccessRate: cfg.Mock.CrawlerSuccessRate,
		Metrics:            rec,
		Log:                log.With().Str("component", "mockapi").Logger(),
	}
	if cfg.Mock.Seed != 0 {
		seed := uint64(cfg.Mock.Seed)
		opts.Scorer = mockapi.NewRandomScorer(rand.New(rand.NewPCG(seed, 1)))
		opts.Prober = mockapi.NewRandomProber(cfg.Mock.CrawlerSuccessRate, rand.New(rand.NewPCG(seed, 2)))
	}
	return mockapi.NewEngine(opts)
}

func (rt *runtime) build(ctx context.Context) error {
	rt.once.Do(func() { rt.buildErr = rt.doBuild(ctx) })
	return rt.buildErr
}

func (rt *runtime) doBuild(ctx context.Context) error {
	durable, err := session.NewSQLiteStore(rt.cfg.Session.StateDir)
	if err != nil {
		return err
	}
	rt.durable = durable
	rt.session = session.New(session.NewMemoryStore(), durable, rt.log.With().Str("component", "session").Logger())
	if err := rt.session.Restore(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	rt.notifier = newCLINotifier(os.Stderr)
	opts := gateway.Options{
		Session:     rt.session,
		Transport:   gateway.NewHTTPTransport(rt.cfg.HTTP, rt.log.With().Str("component", "transport").Logger()),
		MockEnabled: rt.cfg.Mock.Enabled,
		VerifyPath:  rt.cfg.Auth.VerifyPath,
		Notifier:    rt.notifier,
		Navigator:   gateway.WriterNavigator{W: os.Stderr},
		Log:         rt.log.With().Str("component", "gateway").Logger(),
	}
	if rt.cfg.Mock.Enabled {
		engine, err := newEngine(rt.cfg, nil, rt.log)
		if err != nil {
			return err
		}
		opts.Mock = engine
	}

	var idp api.PasswordGranter
	if rt.cfg.Auth.TokenURL != "" && !rt.cfg.Mock.Enabled {
		oidc := gateway.NewOIDCClient(rt.cfg.Auth)
		opts.Refresher = oidc
		idp = oidc
	}

	rt.gw = gateway.New(opts)
	rt.client = api.New(rt.gw, api.WithAssetBase(rt.cfg.Assets.BaseURL))
	rt.auth = api.NewAuthenticator(rt.gw, idp, rt.log.With().Str("component", "auth").Logger())
	rt.guard = session.NewGuard(session.DefaultRules())
	return nil
}

// allow checks the console route that corresponds to a command against
// the session's roles.
func (rt *runtime) allow(route string) error {
	d := rt.guard.Check(route, rt.session)
	if d.Allow {
		return nil
	}
	if d.Redirect == session.ForbiddenPath {
		return apperr.New(apperr.KindPermission, "403", "your roles do not permit "+route)
	}
	return apperr.New(apperr.KindPermission, "401", "not logged in; run \"research-admin login\" first")
}

// Client builds the runtime and checks route before returning the API
// client.
func (rt *runtime) Client(ctx context.Context, route string) (*api.Client, error) {
	if err := rt.build(ctx); err != nil {
		return nil, err
	}
	if err := rt.allow(route); err != nil {
		return nil, err
	}
	return rt.client, nil
}

func (rt *runtime) Close() error {
	if rt.durable == nil {
		return nil
	}
	return rt.durable.Close()
}

// dumpJournal prints every error recorded during the run.
func dumpJournal(w io.Writer, rt *runtime) {
	if rt.gw == nil {
		return
	}
	entries := rt.gw.Journal().Entries()
	fmt.Fprintf(w, "error journal: %d entries\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s %-10s %-6s %s (%s)\n", e.Time.Format("15:04:05"), e.Kind, e.Code, e.Message, e.Context)
	}
}
