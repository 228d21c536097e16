// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-admin/pkg/types"
)

type strapiReply[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Pagination strapiPagination `json:"pagination"`
	} `json:"meta"`
}

func strapiOf[T any](t *testing.T, r bizReply) strapiReply[T] {
	t.Helper()
	var out strapiReply[T]
	require.NoError(t, json.Unmarshal(r.Raw, &out))
	return out
}

func TestStrapiPaginationMeta(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodGet, "/achievement-types?pagination[page]=2&pagination[pageSize]=2", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	got := strapiOf[types.AchievementType](t, r)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "software", got.Data[0].DocumentID)
	assert.Equal(t, strapiPagination{Page: 2, PageSize: 2, PageCount: 2, Total: 3}, got.Meta.Pagination)

	r = serve(t, e, http.MethodGet, "/achievement-types", "", nil)
	got = strapiOf[types.AchievementType](t, r)
	assert.Equal(t, strapiPagination{Page: 1, PageSize: 3, PageCount: 1, Total: 3}, got.Meta.Pagination)
}

func TestAchievementTypeLogicalDelete(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodDelete, "/achievement-types/patent", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	var deleted strapiPayload[types.AchievementType]
	require.NoError(t, json.Unmarshal(r.Raw, &deleted))
	assert.Equal(t, 1, deleted.Data.IsDelete)

	r = serve(t, e, http.MethodGet, "/achievement-types?filters[is_delete][$ne]=1", "", nil)
	live := strapiOf[types.AchievementType](t, r)
	require.Len(t, live.Data, 2)
	for _, at := range live.Data {
		assert.NotEqual(t, "patent", at.DocumentID)
	}

	r = serve(t, e, http.MethodGet, "/achievement-types", "", nil)
	assert.Len(t, strapiOf[types.AchievementType](t, r).Data, 3, "deleted rows are kept")

	r = serve(t, e, http.MethodGet, "/result-types/patent", "", nil)
	assert.False(t, dataOf[types.ResultType](t, r).Enabled)
}

func TestFieldDefLogicalDelete(t *testing.T) {
	e := newTestEngine(t, Options{})
	const query = "/achievement-field-defs?filters[achievement_type_id][documentId][$eq]=paper&filters[is_delete][$ne]=1"

	r := serve(t, e, http.MethodGet, query, "", nil)
	require.Len(t, strapiOf[types.FieldDef](t, r).Data, 4)

	r = serve(t, e, http.MethodDelete, "/achievement-field-defs/paper-field-doi", "", nil)
	require.Equal(t, http.StatusOK, r.Status)

	r = serve(t, e, http.MethodGet, query, "", nil)
	assert.Len(t, strapiOf[types.FieldDef](t, r).Data, 3)

	r = serve(t, e, http.MethodDelete, "/achievement-field-defs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Status)
}

func TestCreateAchievementTypeRegistersResultType(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodPost, "/achievement-types", "", map[string]any{
		"data": map[string]any{"type_name": "Standard", "type_code": "standard"},
	})
	require.Equal(t, http.StatusOK, r.Status)

	r = serve(t, e, http.MethodGet, "/result-types/standard", "", nil)
	rt := dataOf[*types.ResultType](t, r)
	require.NotNil(t, rt)
	assert.Equal(t, "Standard", rt.Name)
	assert.True(t, rt.Enabled)

	r = serve(t, e, http.MethodPut, "/achievement-types/standard", "", map[string]any{
		"data": map[string]any{"type_name": "Industry standard", "is_delete": true},
	})
	require.Equal(t, http.StatusOK, r.Status)
	r = serve(t, e, http.MethodGet, "/result-types/standard", "", nil)
	rt = dataOf[*types.ResultType](t, r)
	assert.Equal(t, "Industry standard", rt.Name)
	assert.False(t, rt.Enabled)

	r = serve(t, e, http.MethodGet, "/result-types/unknown", "", nil)
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Nil(t, dataOf[*types.ResultType](t, r))
}

func TestAccessRequestGuards(t *testing.T) {
	e := newTestEngine(t, Options{})
	token := login(t, e, "researcher", "researcher123").Token

	tests := []struct {
		name   string
		result string
		reason string
		token  string
		status int
	}{
		{"anonymous", "r-006", "need it", "", http.StatusUnauthorized},
		{"blank reason", "r-006", "   ", token, http.StatusBadRequest},
		{"already full", "r-001", "need it", token, http.StatusBadRequest},
		{"already pending", "r-002", "need it", token, http.StatusBadRequest},
		{"not requestable", "r-004", "need it", token, http.StatusBadRequest},
		{"missing result", "r-404", "need it", token, http.StatusNotFound},
		{"rejected may retry", "r-005", "new evidence", token, http.StatusOK},
		{"never requested", "r-006", "need it", token, http.StatusOK},
		{"second request pending", "r-006", "again", token, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := serve(t, e, http.MethodPost, "/results/"+tt.result+"/access-requests", tt.token,
				map[string]string{"reason": tt.reason})
			assert.Equal(t, tt.status, r.Status, r.Message)
		})
	}

	r := serve(t, e, http.MethodGet, "/results/r-006", "", nil)
	res := dataOf[types.Result](t, r)
	assert.Equal(t, types.AccessPending, res.AccessRequestStatus)
	assert.False(t, res.CanRequestAccess)
	assert.Empty(t, res.RejectedReason)
}

func TestAccessRequestReview(t *testing.T) {
	e := newTestEngine(t, Options{})
	researcher := login(t, e, "researcher", "researcher123").Token
	admin := login(t, e, "admin", "admin123").Token

	r := serve(t, e, http.MethodPost, "/results/r-006/access-requests", researcher, map[string]string{"reason": "need it"})
	require.Equal(t, http.StatusOK, r.Status)
	req := dataOf[types.AccessRequest](t, r)

	r = serve(t, e, http.MethodGet, "/results/access-requests?status=pending", admin, nil)
	pending := dataOf[types.Page[accessRequestView]](t, r)
	require.NotEmpty(t, pending.List)
	assert.Equal(t, req.ID, pending.List[0].ID, "new requests are listed first")

	r = serve(t, e, http.MethodPost, "/results/access-requests/"+req.ID+"/review", admin, map[string]string{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = serve(t, e, http.MethodPost, "/results/access-requests/"+req.ID+"/review", admin, map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "Administrator", dataOf[types.AccessRequest](t, r).Reviewer)

	r = serve(t, e, http.MethodGet, "/results/r-006", "", nil)
	res := dataOf[types.Result](t, r)
	assert.Equal(t, types.PermissionFull, res.PermissionStatus)
	assert.Equal(t, types.AccessApproved, res.AccessRequestStatus)
}

func TestProcessSystemCreateIsOverridden(t *testing.T) {
	e := newTestEngine(t, Options{})
	token := login(t, e, "researcher", "researcher123").Token

	r := serve(t, e, http.MethodPost, "/results", token, map[string]any{
		"title":             "Synced deliverable",
		"type":              "paper",
		"source":            types.SourceProcessSystem,
		"status":            types.StatusPublished,
		"assignedReviewers": []string{"Prof. Zhang"},
		"createdBy":         "Someone else",
		"formatChecked":     true,
		"projectId":         "p-001",
	})
	require.Equal(t, http.StatusOK, r.Status, r.Message)
	res := dataOf[types.Result](t, r)
	assert.Equal(t, types.StatusPending, res.Status)
	assert.Empty(t, res.AssignedReviewers)
	assert.Equal(t, processSystemAuthor, res.CreatedBy)
	assert.False(t, res.FormatChecked)
	assert.Equal(t, "pending", res.FormatStatus)
	assert.Equal(t, "paper", res.TypeID)
	assert.Equal(t, "62306124", res.ProjectCode)
}

func TestManualCreate(t *testing.T) {
	e := newTestEngine(t, Options{})
	token := login(t, e, "researcher", "researcher123").Token

	r := serve(t, e, http.MethodPost, "/results", "", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, r.Status)

	r = serve(t, e, http.MethodPost, "/results", token, map[string]any{
		"title":   "Manual upload",
		"typeId":  "software",
		"content": `<p>body</p><script>alert(1)</script>`,
	})
	require.Equal(t, http.StatusOK, r.Status)
	res := dataOf[types.Result](t, r)
	assert.Equal(t, "Dr. Li", res.CreatedBy)
	assert.True(t, res.FormatChecked)
	assert.Equal(t, "passed", res.FormatStatus)
	assert.Equal(t, types.SourceManualUpload, res.Source)
	assert.Contains(t, res.Content, "<p>body</p>")
	assert.NotContains(t, res.Content, "<script")
	assert.Equal(t, "2026-06-15", res.CreatedAt)

	r = serve(t, e, http.MethodGet, "/results/my", token, nil)
	assert.Equal(t, res.ID, dataOf[types.Page[types.Result]](t, r).List[0].ID)
}

func TestProcessSystemCannotDraftOrSubmit(t *testing.T) {
	e := newTestEngine(t, Options{})
	token := login(t, e, "researcher", "researcher123").Token

	r := serve(t, e, http.MethodPost, "/results/draft", token, map[string]any{"title": "x", "source": types.SourceProcessSystem})
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = serve(t, e, http.MethodPost, "/results/r-004/submit", token, nil)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = serve(t, e, http.MethodPost, "/results/draft", token, map[string]any{"title": "y"})
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, types.StatusDraft, dataOf[types.Result](t, r).Status)
}

func TestReviewFlowAppendsHistory(t *testing.T) {
	e := newTestEngine(t, Options{})
	expert := login(t, e, "expert", "expert123").Token

	r := serve(t, e, http.MethodPost, "/results/r-003/submit", expert, nil)
	require.Equal(t, http.StatusOK, r.Status)
	r = serve(t, e, http.MethodPost, "/results/r-003/request-changes", expert, map[string]string{"comment": "add figures"})
	require.Equal(t, http.StatusOK, r.Status)
	r = serve(t, e, http.MethodPost, "/results/r-003/review", expert, map[string]string{"action": "reject", "comment": "no"})
	require.Equal(t, http.StatusOK, r.Status)

	r = serve(t, e, http.MethodGet, "/results/r-003", "", nil)
	res := dataOf[types.Result](t, r)
	assert.Equal(t, types.StatusRejected, res.Status)
	require.Len(t, res.ReviewHistory, 4)
	assert.Equal(t, "rev-2", res.ReviewHistory[0].ID, "existing entries are kept")
	assert.Equal(t, "submit", res.ReviewHistory[1].Action)
	assert.Equal(t, "request_changes", res.ReviewHistory[2].Action)
	assert.Equal(t, "add figures", res.ReviewHistory[2].Comment)
	assert.Equal(t, "reject", res.ReviewHistory[3].Action)
	assert.Equal(t, "Prof. Zhang", res.ReviewHistory[3].ReviewerName)
}

func TestUpdateResultKeepsIdentityAndHistory(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodPut, "/results/r-001", "", map[string]any{
		"id":            "hijack",
		"title":         "Renamed",
		"reviewHistory": []any{},
		"projectId":     "p-002",
	})
	require.Equal(t, http.StatusOK, r.Status)
	res := dataOf[types.Result](t, r)
	assert.Equal(t, "r-001", res.ID)
	assert.Equal(t, "Renamed", res.Title)
	assert.Len(t, res.ReviewHistory, 1)
	assert.Equal(t, "2024YFB3301200", res.ProjectCode)
	assert.Equal(t, "paper", res.TypeID)
}

func TestAssignReviewersAcceptsString(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodPost, "/results/r-003/assign-reviewers", "", map[string]any{"reviewers": "Prof. Zhang, Dr. Wang"})
	require.Equal(t, http.StatusOK, r.Status)
	res := dataOf[types.Result](t, r)
	assert.Equal(t, []string{"Prof. Zhang", "Dr. Wang"}, res.AssignedReviewers)
	assert.Equal(t, types.StatusReviewing, res.Status)
}

func TestReviewBacklogScopesExperts(t *testing.T) {
	e := newTestEngine(t, Options{})
	r := serve(t, e, http.MethodPost, "/results/r-003/assign-reviewers", "", map[string]any{"reviewers": []string{"Dr. Wang"}})
	require.Equal(t, http.StatusOK, r.Status)

	type backlog struct {
		Pending   []types.Result `json:"pending"`
		Reviewing []types.Result `json:"reviewing"`
		Summary   map[string]int `json:"summary"`
	}

	expert := login(t, e, "expert", "expert123").Token
	r = serve(t, e, http.MethodGet, "/results/review-backlog", expert, nil)
	mine := dataOf[backlog](t, r)
	require.Len(t, mine.Reviewing, 1)
	assert.Equal(t, "r-002", mine.Reviewing[0].ID)

	admin := login(t, e, "admin", "admin123").Token
	r = serve(t, e, http.MethodGet, "/results/review-backlog", admin, nil)
	all := dataOf[backlog](t, r)
	assert.Len(t, all.Reviewing, 2)
	assert.Equal(t, 1, all.Summary["processPending"])
}

func TestRematchClampsAndSorts(t *testing.T) {
	e := newTestEngine(t, Options{Scorer: ScorerFunc(func(m types.DemandMatch) float64 {
		if m.ResultID == "r-004" {
			return 5
		}
		return -5
	})})

	r := serve(t, e, http.MethodPost, "/demand/d-004/rematch", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	d := dataOf[types.Demand](t, r)
	require.Len(t, d.Matches, 2)
	assert.Equal(t, "r-004", d.Matches[0].ResultID)
	assert.Equal(t, 0.98, d.Matches[0].MatchScore)
	assert.Equal(t, 0.1, d.Matches[1].MatchScore)
	assert.Equal(t, 0.98, d.BestMatchScore)
	assert.Equal(t, "matched", d.Status)
	assert.Equal(t, "2026-06-15", d.Matches[0].UpdatedAt)
}

func TestRematchWithoutMatches(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodPost, "/demand/d-002/rematch", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	d := dataOf[types.Demand](t, r)
	assert.Empty(t, d.Matches)
	assert.Zero(t, d.BestMatchScore)
	assert.Equal(t, "unmatched", d.Status)
}

func TestRandomScorerJitter(t *testing.T) {
	s := NewRandomScorer(rand.New(rand.NewPCG(1, 2)))
	for range 200 {
		got := s.Rescore(types.DemandMatch{MatchScore: 0.5})
		assert.InDelta(t, 0.5, got, scoreJitter)
	}
}

func TestCrawlerProbe(t *testing.T) {
	pass := false
	e := newTestEngine(t, Options{Prober: ProberFunc(func(types.CrawlerSource) bool { return pass })})

	r := serve(t, e, http.MethodPost, "/system/crawler-sources/cs-001/test", "", nil)
	assert.Equal(t, http.StatusInternalServerError, r.Status)
	assert.Equal(t, 500, r.Code)
	src := dataOf[types.CrawlerSource](t, r)
	assert.Equal(t, "error", src.Status)
	assert.NotEmpty(t, src.FailureReason)

	pass = true
	r = serve(t, e, http.MethodPost, "/system/crawler-sources/cs-001/test", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	src = dataOf[types.CrawlerSource](t, r)
	assert.Equal(t, "healthy", src.Status)
	assert.Empty(t, src.FailureReason)
	assert.Equal(t, "2026-06-15 10:00:00", src.LastSuccessAt)
}

func TestCrawlerSourceLifecycle(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodPost, "/system/crawler-sources", "", map[string]any{"name": "New feed", "type": "rss"})
	require.Equal(t, http.StatusOK, r.Status)
	created := dataOf[types.CrawlerSource](t, r)
	assert.Equal(t, "idle", created.Status)

	r = serve(t, e, http.MethodPut, "/system/crawler-sources/"+created.ID, "", map[string]any{"enabled": true, "id": "other"})
	require.Equal(t, http.StatusOK, r.Status)
	updated := dataOf[types.CrawlerSource](t, r)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "New feed", updated.Name)
	assert.True(t, updated.Enabled)

	r = serve(t, e, http.MethodDelete, "/system/crawler-sources/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, r.Status)

	r = serve(t, e, http.MethodGet, "/system/crawler-sources", "", nil)
	list := dataOf[struct {
		Total int `json:"total"`
	}](t, r)
	assert.Equal(t, 3, list.Total)
}

func TestRejectedCrawlerUpdateLeavesSourceIntact(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodPut, "/system/crawler-sources/cs-001", "", map[string]any{
		"credentials":    map[string]string{"token": "x"},
		"tags":           []string{"replaced"},
		"frequencyHours": "hourly",
	})
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = serve(t, e, http.MethodGet, "/system/crawler-sources", "", nil)
	list := dataOf[struct {
		List []types.CrawlerSource `json:"list"`
	}](t, r)
	var stored *types.CrawlerSource
	for i := range list.List {
		if list.List[i].ID == "cs-001" {
			stored = &list.List[i]
		}
	}
	require.NotNil(t, stored)
	assert.Empty(t, stored.Credentials)
	assert.Equal(t, []string{"government", "transport", "energy"}, stored.Tags)
	assert.Equal(t, 6, stored.FrequencyHours)
}

func TestCrawlerSettingsMerge(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodPut, "/system/crawler-settings", "", map[string]any{"retryLimit": 5})
	require.Equal(t, http.StatusOK, r.Status)
	got := dataOf[types.CrawlerSettings](t, r)
	assert.Equal(t, 5, got.RetryLimit)
	assert.Equal(t, 8, got.DefaultFrequencyHours)
	assert.Len(t, got.NotifyEmails, 2)
}

func TestStackedTrendRange(t *testing.T) {
	e := newTestEngine(t, Options{})

	type trendReply struct {
		Timeline  []string     `json:"timeline"`
		Stacks    []trendStack `json:"stacks"`
		Citations []int        `json:"citations"`
	}

	r := serve(t, e, http.MethodGet, "/results/stacked-trend?range=3y&dimension=department", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	got := dataOf[trendReply](t, r)
	assert.Equal(t, []string{"2024", "2025", "2026"}, got.Timeline)
	for _, s := range got.Stacks {
		assert.Len(t, s.Data, 3)
	}
	assert.Equal(t, []int{200, 280, 350}, got.Citations)

	r = serve(t, e, http.MethodGet, "/results/stacked-trend?dimension=unknown", "", nil)
	got = dataOf[trendReply](t, r)
	assert.Len(t, got.Timeline, 5)
	assert.Len(t, got.Stacks, 3, "unknown dimensions fall back to type")
}

func TestUploadUsesFileMeta(t *testing.T) {
	e := newTestEngine(t, Options{})

	reply := e.Serve(t.Context(), Call{
		Method: http.MethodPost,
		Path:   "/upload",
		Files:  []FileMeta{{Field: "file", Name: "paper.pdf", Size: 4096}},
	})
	require.Equal(t, http.StatusOK, reply.Status)

	var env struct {
		Data upload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(reply.Body.(json.RawMessage), &env))
	assert.Equal(t, "paper.pdf", env.Data.Name)
	assert.Equal(t, int64(4096), env.Data.Size)
	assert.Contains(t, env.Data.URL, env.Data.ID)
}

func TestInterimStatsAndList(t *testing.T) {
	e := newTestEngine(t, Options{})

	r := serve(t, e, http.MethodGet, "/interim-results/stats", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	st := dataOf[interimStats](t, r)
	assert.Equal(t, 5, st.TotalResults)

	r = serve(t, e, http.MethodGet, "/interim-results/export", "", nil)
	assert.Equal(t, http.StatusOK, r.Status, "export is not shadowed by /interim-results/{id}")

	r = serve(t, e, http.MethodGet, "/interim-results?projectId=p-001", "", nil)
	page := dataOf[types.Page[types.InterimResult]](t, r)
	for _, ir := range page.List {
		assert.Equal(t, "p-001", ir.ProjectID)
	}

	r = serve(t, e, http.MethodGet, "/interim-results/ir-404", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Status)
}

func TestRandomProberRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want float64
	}{
		{"configured", 0.3, 0.3},
		{"zero uses default", 0, defaultSuccessRate},
		{"negative uses default", -1, defaultSuccessRate},
		{"always pass", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewRandomProber(tt.rate, rand.New(rand.NewPCG(1, 2)))
			assert.InDelta(t, tt.want, p.(*randomProber).rate, 1e-9)
		})
	}
}
