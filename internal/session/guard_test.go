// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-admin/pkg/types"
)

func loggedIn(t *testing.T, user *types.UserProfile) *Session {
	t.Helper()
	s := New(NewMemoryStore(), NewMemoryStore(), zerolog.Nop())
	require.NoError(t, s.Login(context.Background(), types.Tokens{AccessToken: "tok"}, user, false))
	return s
}

func TestGuardCheck(t *testing.T) {
	g := NewGuard(DefaultRules())
	admin := loggedIn(t, &types.UserProfile{Role: types.RoleAdmin})
	expert := loggedIn(t, &types.UserProfile{Roles: []string{types.RoleExpert}})
	researcherS := loggedIn(t, &types.UserProfile{Role: types.RoleResearcher})
	noProfile := loggedIn(t, nil)
	anon := New(NewMemoryStore(), NewMemoryStore(), zerolog.Nop())

	tests := []struct {
		name string
		path string
		s    *Session
		want Decision
	}{
		{"public login", "/login", anon, Decision{Allow: true}},
		{"anonymous to dashboard", "/dashboard", anon, Decision{Redirect: "/login?redirect=%2Fdashboard"}},
		{"researcher to results detail", "/results/r-001", researcherS, Decision{Allow: true}},
		{"researcher to edit", "/results/r-001/edit", researcherS, Decision{Allow: true}},
		{"researcher to reviews", "/expert/reviews", researcherS, Decision{Redirect: "/403"}},
		{"expert to reviews", "/expert/reviews", expert, Decision{Allow: true}},
		{"expert to result types", "/admin/result-types", expert, Decision{Redirect: "/403"}},
		{"admin to result types", "/admin/result-types?tab=fields", admin, Decision{Allow: true}},
		{"missing profile", "/admin/results", noProfile, Decision{Redirect: "/login?redirect=%2Fadmin%2Fresults"}},
		{"root needs login only", "/", noProfile, Decision{Allow: true}},
		{"unknown path allowed", "/no/such/page", anon, Decision{Allow: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Check(tt.path, tt.s))
		})
	}
}
