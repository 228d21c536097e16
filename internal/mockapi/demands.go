// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"math"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/pdiddy/research-admin/pkg/types"
)

// Match score bounds after a rematch.
const (
	minMatchScore = 0.1
	maxMatchScore = 0.98
	scoreJitter   = 0.05
)

// Scorer proposes a new score for an existing demand match.
type Scorer interface {
	Rescore(types.DemandMatch) float64
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(types.DemandMatch) float64

func (f ScorerFunc) Rescore(m types.DemandMatch) float64 { return f(m) }

type randomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer jitters each score by up to ±0.05.
func NewRandomScorer(rng *rand.Rand) Scorer {
	return &randomScorer{rng: rng}
}

func (s *randomScorer) Rescore(m types.DemandMatch) float64 {
	s.mu.Lock()
	noise := (s.rng.Float64() - 0.5) * 2 * scoreJitter
	s.mu.Unlock()
	return m.MatchScore + noise
}

func (e *Engine) listDemands(r *request) Reply {
	keyword := queryString(r.query, "keyword")
	industry := queryString(r.query, "industry")
	region := queryString(r.query, "region")
	category := queryString(r.query, "sourceCategory")
	status := queryString(r.query, "status")

	var list []*types.Demand
	for _, d := range e.store.Demands {
		if keyword != "" && !strings.Contains(d.Title, keyword) && !strings.Contains(d.Summary, keyword) &&
			!strings.Contains(d.Industry, keyword) && !strings.Contains(d.Region, keyword) && !anyContains(d.Tags, keyword) {
			continue
		}
		if industry != "" && d.Industry != industry {
			continue
		}
		if region != "" && d.Region != region {
			continue
		}
		if category != "" && d.SourceCategory != category {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		list = append(list, d)
	}
	return success(paginate(list, r.query), "")
}

func (e *Engine) demand(id string) *types.Demand {
	for _, d := range e.store.Demands {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (e *Engine) getDemand(r *request) Reply {
	d := e.demand(r.param(0))
	if d == nil {
		return fail(http.StatusNotFound, "demand not found")
	}
	return success(d, "")
}

// rematchDemand rescores every match, clamps to [0.1, 0.98] with two
// decimals, and re-sorts best first.
func (e *Engine) rematchDemand(r *request) Reply {
	d := e.demand(r.param(0))
	if d == nil {
		return fail(http.StatusNotFound, "demand not found")
	}
	today := e.today()
	matches := make([]types.DemandMatch, 0, len(d.Matches))
	for _, m := range d.Matches {
		score := min(maxMatchScore, max(minMatchScore, e.scorer.Rescore(m)))
		m.MatchScore = math.Round(score*100) / 100
		m.UpdatedAt = today
		matches = append(matches, m)
	}
	slices.SortStableFunc(matches, func(a, b types.DemandMatch) int {
		switch {
		case a.MatchScore > b.MatchScore:
			return -1
		case a.MatchScore < b.MatchScore:
			return 1
		}
		return 0
	})

	d.Matches = matches
	d.BestMatchScore = 0
	d.Status = "unmatched"
	if len(matches) > 0 {
		d.BestMatchScore = matches[0].MatchScore
		d.Status = "matched"
	}
	return success(d, "rematched")
}
