// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"encoding/json"
	"maps"
	"math/rand/v2"
	"net/http"
	"slices"
	"sync"

	"github.com/pdiddy/research-admin/pkg/types"
)

// Prober decides whether a connectivity test against a crawler source
// passes.
type Prober interface {
	Probe(types.CrawlerSource) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(types.CrawlerSource) bool

func (f ProberFunc) Probe(s types.CrawlerSource) bool { return f(s) }

type randomProber struct {
	mu   sync.Mutex
	rate float64
	rng  *rand.Rand
}

// NewRandomProber passes with probability rate. A rate that is not
// positive falls back to 0.8.
func NewRandomProber(rate float64, rng *rand.Rand) Prober {
	if rate <= 0 {
		rate = defaultSuccessRate
	}
	return &randomProber{rate: rate, rng: rng}
}

func (p *randomProber) Probe(types.CrawlerSource) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < p.rate
}

func (e *Engine) listCrawlerSources(*request) Reply {
	return success(map[string]any{"list": e.store.CrawlerSources, "total": len(e.store.CrawlerSources)}, "")
}

func (e *Engine) crawlerSource(id string) (*types.CrawlerSource, int) {
	for i, s := range e.store.CrawlerSources {
		if s.ID == id {
			return s, i
		}
	}
	return nil, -1
}

func (e *Engine) createCrawlerSource(r *request) Reply {
	var src types.CrawlerSource
	if err := r.decode(&src); err != nil {
		return fail(http.StatusBadRequest, "malformed crawler source")
	}
	src.ID = e.store.nextID("cs")
	if src.Status == "" {
		src.Status = "idle"
	}
	if src.Credentials == nil {
		src.Credentials = map[string]string{}
	}
	if src.Tags == nil {
		src.Tags = []string{}
	}
	e.store.CrawlerSources = append([]*types.CrawlerSource{&src}, e.store.CrawlerSources...)
	return success(&src, "crawler source created")
}

// updateCrawlerSource merges the body over the stored source.
func (e *Engine) updateCrawlerSource(r *request) Reply {
	src, _ := e.crawlerSource(r.param(0))
	if src == nil {
		return fail(http.StatusNotFound, "crawler source not found")
	}
	next := *src
	next.Credentials = maps.Clone(src.Credentials)
	next.Tags = slices.Clone(src.Tags)
	if len(r.Body) > 0 {
		if err := json.Unmarshal(r.Body, &next); err != nil {
			return fail(http.StatusBadRequest, "malformed crawler source")
		}
	}
	next.ID = src.ID
	*src = next
	return success(src, "crawler source updated")
}

func (e *Engine) deleteCrawlerSource(r *request) Reply {
	_, i := e.crawlerSource(r.param(0))
	if i < 0 {
		return fail(http.StatusNotFound, "crawler source not found")
	}
	e.store.CrawlerSources = slices.Delete(e.store.CrawlerSources, i, i+1)
	return success(true, "crawler source deleted")
}

func (e *Engine) testCrawlerSource(r *request) Reply {
	src, _ := e.crawlerSource(r.param(0))
	if src == nil {
		return fail(http.StatusNotFound, "crawler source not found")
	}
	now := e.stamp()
	src.LastRunAt = now
	if e.prober.Probe(*src) {
		src.Status = "healthy"
		src.LastSuccessAt = now
		src.FailureReason = ""
		return success(src, "connection succeeded")
	}
	src.Status = "error"
	src.FailureReason = "simulated connection failure, check the source configuration"
	return failWith(http.StatusInternalServerError, "connection failed", src)
}

func (e *Engine) crawlerSettings(*request) Reply {
	return success(e.store.CrawlerSettings, "")
}

func (e *Engine) updateCrawlerSettings(r *request) Reply {
	next := e.store.CrawlerSettings
	next.NotifyEmails = slices.Clone(next.NotifyEmails)
	if len(r.Body) > 0 {
		if err := json.Unmarshal(r.Body, &next); err != nil {
			return fail(http.StatusBadRequest, "malformed crawler settings")
		}
	}
	if next.NotifyEmails == nil {
		next.NotifyEmails = []string{}
	}
	e.store.CrawlerSettings = next
	return success(next, "settings saved")
}
