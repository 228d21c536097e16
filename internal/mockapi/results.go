// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/research-admin/internal/envelope"
	"github.com/pdiddy/research-admin/pkg/types"
)

const processSystemAuthor = "Process System"

// resultFilter holds the AND-combined list predicates.
type resultFilter struct {
	keyword   string
	statuses  []string
	typ       string
	author    string
	source    string
	phase     string
	projectID string
	yearFrom  int
	yearTo    int
	dateFrom  string
	dateTo    string
}

func parseResultFilter(q url.Values) resultFilter {
	f := resultFilter{
		keyword:   queryString(q, "keyword", "keywords"),
		statuses:  queryList(q, "status"),
		typ:       queryString(q, "type", "typeId"),
		author:    queryString(q, "author"),
		source:    queryString(q, "source"),
		phase:     queryString(q, "projectPhase", "phase"),
		projectID: queryString(q, "projectId", "project"),
		dateFrom:  queryString(q, "dateFrom"),
		dateTo:    queryString(q, "dateTo"),
	}
	years := queryList(q, "yearRange")
	if len(years) == 0 {
		years = queryList(q, "years")
	}
	if len(years) == 2 {
		f.yearFrom, _ = strconv.Atoi(years[0])
		f.yearTo, _ = strconv.Atoi(years[1])
	}
	// Either status vocabulary is accepted.
	for i, s := range f.statuses {
		f.statuses[i] = envelope.ClientStatus(s)
	}
	return f
}

func (f resultFilter) match(r *types.Result) bool {
	if f.keyword != "" && !strings.Contains(r.Title, f.keyword) && !strings.Contains(r.Abstract, f.keyword) &&
		!anyContains(r.Authors, f.keyword) {
		return false
	}
	if len(f.statuses) > 0 && !slices.Contains(f.statuses, r.Status) {
		return false
	}
	if f.typ != "" && r.Type != f.typ && r.TypeID != f.typ {
		return false
	}
	if f.author != "" && !anyContains(r.Authors, f.author) {
		return false
	}
	if f.source != "" && r.Source != f.source {
		return false
	}
	if f.phase != "" && r.ProjectPhase != f.phase {
		return false
	}
	if f.projectID != "" && r.ProjectID != f.projectID {
		return false
	}
	if f.yearFrom > 0 && r.Year < f.yearFrom {
		return false
	}
	if f.yearTo > 0 && r.Year > f.yearTo {
		return false
	}
	// Date bounds are inclusive and compared by calendar day.
	day := dayOf(r.CreatedAt)
	if f.dateFrom != "" && day < dayOf(f.dateFrom) {
		return false
	}
	if f.dateTo != "" && day > dayOf(f.dateTo) {
		return false
	}
	return true
}

// dayOf trims a timestamp to its YYYY-MM-DD prefix.
func dayOf(ts string) string {
	if len(ts) > len(dateLayout) {
		return ts[:len(dateLayout)]
	}
	return ts
}

func anyContains(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (e *Engine) pageResults(src []*types.Result, q url.Values) types.Page[*types.Result] {
	f := parseResultFilter(q)
	var list []*types.Result
	for _, r := range src {
		if f.match(r) {
			list = append(list, r)
		}
	}
	return paginate(list, q)
}

func (e *Engine) listResults(r *request) Reply {
	return success(e.pageResults(e.store.Results, r.query), "")
}

func (e *Engine) mine(u *account) []*types.Result {
	var out []*types.Result
	for _, res := range e.store.Results {
		if res.CreatedBy == u.Name {
			out = append(out, res)
		}
	}
	return out
}

func (e *Engine) myResults(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	return success(e.pageResults(e.mine(r.user), r.query), "")
}

func (e *Engine) getResult(r *request) Reply {
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	return success(res, "")
}

// decodeResult reads a create or draft body. Type is accepted as an alias
// of TypeID.
func (e *Engine) decodeResult(r *request) (*types.Result, error) {
	var res types.Result
	if err := r.decode(&res); err != nil {
		return nil, err
	}
	if res.TypeID == "" {
		res.TypeID = res.Type
	}
	res.Type = res.TypeID
	res.Abstract = e.sanitize(res.Abstract)
	res.Content = e.sanitize(res.Content)
	normalizeResult(&res)
	return &res, nil
}

func (e *Engine) createResult(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	res, err := e.decodeResult(r)
	if err != nil {
		return fail(http.StatusBadRequest, "malformed result")
	}

	res.ID = e.store.nextID("r")
	if res.Source == "" {
		res.Source = types.SourceManualUpload
	}
	if res.Source == types.SourceProcessSystem {
		// Process-system ingestion always goes through manual format review.
		res.Status = types.StatusPending
		res.AssignedReviewers = []string{}
		res.CreatedBy = processSystemAuthor
		res.FormatChecked = false
		res.FormatStatus = "pending"
	} else {
		if res.Status == "" {
			res.Status = types.StatusPending
		}
		res.CreatedBy = r.user.Name
		res.FormatChecked = true
		res.FormatStatus = "passed"
	}
	res.FormatNote = ""
	res.CreatedAt = e.today()
	res.UpdatedAt = res.CreatedAt
	res.ReviewHistory = []types.ReviewEntry{}
	e.store.attachProject(res, nil)

	e.store.Results = append([]*types.Result{res}, e.store.Results...)
	return success(res, "created")
}

func (e *Engine) saveDraft(r *request) Reply {
	if denied := requireUser(r); denied != nil {
		return *denied
	}
	res, err := e.decodeResult(r)
	if err != nil {
		return fail(http.StatusBadRequest, "malformed result")
	}
	if res.Source == types.SourceProcessSystem {
		return fail(http.StatusBadRequest, "process-system results cannot be saved as drafts")
	}

	res.ID = e.store.nextID("r")
	res.Status = types.StatusDraft
	res.CreatedBy = r.user.Name
	res.CreatedAt = e.today()
	res.UpdatedAt = res.CreatedAt
	res.ReviewHistory = []types.ReviewEntry{}
	e.store.attachProject(res, nil)

	e.store.Results = append([]*types.Result{res}, e.store.Results...)
	return success(res, "draft saved")
}

// updateResult merges the body over the stored record. The id and the
// review history cannot be overwritten.
func (e *Engine) updateResult(r *request) Reply {
	prev, i := e.store.result(r.param(0))
	if prev == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	var patch map[string]json.RawMessage
	if err := r.decode(&patch); err != nil {
		return fail(http.StatusBadRequest, "malformed result")
	}
	delete(patch, "id")
	delete(patch, "reviewHistory")

	base, err := json.Marshal(prev)
	if err != nil {
		return fail(http.StatusInternalServerError, err.Error())
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return fail(http.StatusInternalServerError, err.Error())
	}
	for k, v := range patch {
		merged[k] = v
	}
	data, _ := json.Marshal(merged)

	var next types.Result
	if err := json.Unmarshal(data, &next); err != nil {
		return fail(http.StatusBadRequest, "malformed result")
	}
	next.ID = prev.ID
	next.ReviewHistory = prev.ReviewHistory

	typeID := rawString(patch["typeId"])
	if typeID == "" {
		typeID = rawString(patch["type"])
	}
	if typeID == "" {
		typeID = prev.TypeID
	}
	next.TypeID, next.Type = typeID, typeID
	next.ProjectName = rawString(patch["projectName"])
	next.ProjectCode = rawString(patch["projectCode"])
	e.store.attachProject(&next, prev)
	next.Abstract = e.sanitize(next.Abstract)
	next.Content = e.sanitize(next.Content)
	next.UpdatedAt = e.today()
	normalizeResult(&next)

	e.store.Results[i] = &next
	return success(&next, "updated")
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func (e *Engine) deleteResult(r *request) Reply {
	_, i := e.store.result(r.param(0))
	if i < 0 {
		return fail(http.StatusNotFound, "result not found")
	}
	e.store.Results = slices.Delete(e.store.Results, i, i+1)
	return success(true, "deleted")
}

// appendReview records an action in the result's history.
func (e *Engine) appendReview(res *types.Result, u *account, action, comment string) {
	id, name := "2", "Expert reviewer"
	if u != nil {
		id, name = u.ID, u.Name
	}
	res.ReviewHistory = append(res.ReviewHistory, types.ReviewEntry{
		ID:           e.store.nextID("rev"),
		ReviewerID:   id,
		ReviewerName: name,
		Action:       action,
		Comment:      comment,
		CreatedAt:    e.today(),
	})
}

func (e *Engine) submitResult(r *request) Reply {
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	if res.Source == types.SourceProcessSystem {
		return fail(http.StatusBadRequest, "process-system results are not submitted; assign reviewers instead")
	}
	res.Status = types.StatusReviewing
	res.UpdatedAt = e.today()
	e.appendReview(res, r.user, "submit", "")
	return success(true, "submitted for review")
}

func (e *Engine) assignReviewers(r *request) Reply {
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	var body struct {
		Reviewers json.RawMessage `json:"reviewers"`
	}
	if err := r.decode(&body); err != nil {
		return fail(http.StatusBadRequest, "malformed request")
	}
	reviewers := parseReviewers(body.Reviewers)

	res.AssignedReviewers = reviewers
	res.Status = types.StatusReviewing
	res.UpdatedAt = e.today()
	e.appendReview(res, r.user, "assign", strings.Join(reviewers, ", "))
	return success(res, "reviewers assigned")
}

// parseReviewers accepts a JSON array or a comma-separated string.
func parseReviewers(raw json.RawMessage) []string {
	out := []string{}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	for _, s := range strings.Split(rawString(raw), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) reviewResult(r *request) Reply {
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	var body struct {
		Action  string `json:"action"`
		Comment string `json:"comment"`
	}
	_ = r.decode(&body)

	action, status := "approve", types.StatusPublished
	if body.Action == "reject" {
		action, status = "reject", types.StatusRejected
	}
	res.Status = status
	res.UpdatedAt = e.today()
	e.appendReview(res, r.user, action, body.Comment)
	return success(true, "review recorded")
}

func (e *Engine) requestChanges(r *request) Reply {
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	var body struct {
		Comment string `json:"comment"`
	}
	_ = r.decode(&body)
	if body.Comment == "" {
		body.Comment = "Please revise as requested and resubmit."
	}
	res.Status = types.StatusRevision
	res.UpdatedAt = e.today()
	e.appendReview(res, r.user, "request_changes", body.Comment)
	return success(true, "returned for revision")
}

func (e *Engine) formatCheck(r *request) Reply {
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	res.FormatChecked = true
	res.FormatStatus = "passed"
	res.FormatNote = ""
	res.UpdatedAt = e.today()
	return success(res, "format check passed")
}

func (e *Engine) formatReject(r *request) Reply {
	res, _ := e.store.result(r.param(0))
	if res == nil {
		return fail(http.StatusNotFound, "result not found")
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = r.decode(&body)
	if body.Reason == "" {
		body.Reason = "Formatting issues need fixing."
	}
	res.FormatChecked = false
	res.FormatStatus = "failed"
	res.FormatNote = body.Reason
	res.UpdatedAt = e.today()
	return success(res, "format check failed")
}

// reviewBacklog lists pending and reviewing results. An expert who is
// not an admin only sees the reviews assigned to them.
func (e *Engine) reviewBacklog(r *request) Reply {
	onlyMine := r.user != nil && slices.Contains(r.user.Roles, types.RoleExpert) && !slices.Contains(r.user.Roles, types.RoleAdmin)

	pending := []*types.Result{}
	reviewing := []*types.Result{}
	processPending, manualPending := 0, 0
	for _, res := range e.store.Results {
		switch res.Status {
		case types.StatusPending:
			pending = append(pending, res)
			switch res.Source {
			case types.SourceProcessSystem:
				processPending++
			case types.SourceManualUpload:
				manualPending++
			}
		case types.StatusReviewing:
			if onlyMine && !slices.Contains(res.AssignedReviewers, r.user.Name) {
				continue
			}
			reviewing = append(reviewing, res)
		}
	}
	return success(map[string]any{
		"pending":   pending,
		"reviewing": reviewing,
		"summary": map[string]int{
			"pending":        len(pending),
			"reviewing":      len(reviewing),
			"processPending": processPending,
			"manualPending":  manualPending,
		},
	}, "")
}

func (e *Engine) autoFill(r *request) Reply {
	var body struct {
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	_ = r.decode(&body)
	value := queryString(r.query, "value")
	if value == "" {
		value = body.Value
	}
	typ := queryString(r.query, "type")
	if typ == "" {
		typ = body.Type
	}

	title := "Suggested result title"
	if typ != "" {
		title += " (" + typ + ")"
	}
	authors := []string{"Author A", "Author B"}
	if value != "" {
		authors = []string{value, "Co-author A"}
	}
	return success(map[string]any{
		"title":    title,
		"authors":  authors,
		"abstract": "Abstract completed from the identifier; edit as needed.",
		"keywords": []string{"auto-fill", "example"},
		"year":     e.today()[:4],
	}, "auto-filled")
}
