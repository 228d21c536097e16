// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"net/url"
	"strings"

	"github.com/pdiddy/research-admin/pkg/types"
)

// Paths the guard redirects to.
const (
	LoginPath     = "/login"
	ForbiddenPath = "/403"
)

// Rule gates one route pattern. Segments starting with ':' match any
// single segment. An empty Roles list admits every logged-in user.
type Rule struct {
	Pattern string
	Public  bool
	Roles   []string
}

// Decision is the outcome of a guard check. Redirect is set when Allow is
// false.
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard checks navigation against an ordered rule table; the first
// matching rule applies. Paths no rule matches are allowed.
type Guard struct {
	rules []Rule
}

// NewGuard returns a guard over rules.
func NewGuard(rules []Rule) *Guard {
	return &Guard{rules: rules}
}

var (
	allStaff   = []string{types.RoleResearcher, types.RoleExpert, types.RoleAdmin, types.RoleManager}
	reviewers  = []string{types.RoleExpert, types.RoleAdmin}
	management = []string{types.RoleAdmin, types.RoleManager}
)

// DefaultRules is the administrative console's route table.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/login", Public: true},
		{Pattern: "/403", Public: true},
		{Pattern: "/dashboard", Roles: allStaff},
		{Pattern: "/results/create", Roles: allStaff},
		{Pattern: "/results/my", Roles: allStaff},
		{Pattern: "/results/list", Roles: allStaff},
		{Pattern: "/results/search", Roles: allStaff},
		{Pattern: "/results/:id", Roles: allStaff},
		{Pattern: "/results/:id/edit", Roles: allStaff},
		{Pattern: "/insights/demands", Roles: allStaff},
		{Pattern: "/expert/reviews", Roles: reviewers},
		{Pattern: "/admin/dashboard", Roles: management},
		{Pattern: "/admin/results", Roles: management},
		{Pattern: "/admin/access-requests", Roles: management},
		{Pattern: "/admin/review-assign", Roles: management},
		{Pattern: "/admin/result-types", Roles: []string{types.RoleAdmin}},
		{Pattern: "/admin/system-settings", Roles: management},
		{Pattern: "/admin/research-insights", Roles: management},
		{Pattern: "/admin/interim-results", Roles: management},
		{Pattern: "/", Roles: nil},
	}
}

// Check decides whether the session may navigate to path.
func (g *Guard) Check(path string, s *Session) Decision {
	rule, ok := g.match(path)
	if !ok || rule.Public {
		return Decision{Allow: true}
	}

	login := Decision{Redirect: LoginPath + "?redirect=" + url.QueryEscape(path)}
	if s == nil || !s.IsLoggedIn() {
		return login
	}
	if len(rule.Roles) == 0 {
		return Decision{Allow: true}
	}
	user := s.User()
	if user == nil {
		return login
	}
	if !AnyRole(user, rule.Roles...) {
		return Decision{Redirect: ForbiddenPath}
	}
	return Decision{Allow: true}
}

func (g *Guard) match(path string) (Rule, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := splitPath(path)
	for _, r := range g.rules {
		if matchSegments(splitPath(r.Pattern), segs) {
			return r, true
		}
	}
	return Rule{}, false
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}
