// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-admin/internal/envelope"
	"github.com/pdiddy/research-admin/internal/gateway"
	"github.com/pdiddy/research-admin/pkg/types"
)

// ResultQuery filters result listings. Statuses use the client
// vocabulary and are translated to the backend enum on the wire.
type ResultQuery struct {
	PageQuery
	Keyword   string
	Statuses  []string
	Type      string
	Author    string
	Source    string
	Phase     string
	ProjectID string
	YearFrom  int
	YearTo    int
	DateFrom  string
	DateTo    string
}

// Values encodes q as query parameters.
func (q ResultQuery) Values() url.Values {
	v := url.Values{}
	q.PageQuery.apply(v)
	setString(v, "keyword", q.Keyword)
	if len(q.Statuses) > 0 {
		backend := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			backend[i] = envelope.BackendStatus(s)
		}
		v.Set("status", strings.Join(backend, ","))
	}
	setString(v, "type", q.Type)
	setString(v, "author", q.Author)
	setString(v, "source", q.Source)
	setString(v, "projectPhase", q.Phase)
	setString(v, "projectId", q.ProjectID)
	if q.YearFrom > 0 && q.YearTo > 0 {
		v.Set("yearRange", strconv.Itoa(q.YearFrom)+","+strconv.Itoa(q.YearTo))
	}
	setString(v, "dateFrom", q.DateFrom)
	setString(v, "dateTo", q.DateTo)
	return v
}

// clientResult rewrites the backend status enum into the client
// vocabulary and normalizes attachments.
func (c *Client) clientResult(r types.Result) types.Result {
	r.Status = envelope.ClientStatus(r.Status)
	r.Attachments = c.attachments(r.Attachments)
	return r
}

func (c *Client) clientResultPtr(r *types.Result) *types.Result {
	if r != nil {
		*r = c.clientResult(*r)
	}
	return r
}

// transition runs a workflow action on result id. Backends answer either
// with the updated result or with a bare acknowledgment; on an
// acknowledgment the result is read back.
func (c *Client) transition(ctx context.Context, id string, req gateway.Request) (*types.Result, error) {
	res, err := c.gw.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !isObject(res.Data) {
		return c.Result(ctx, id)
	}
	r, err := envelope.Into[*types.Result](res)
	return c.clientResultPtr(r), err
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func resultPath(id string, action ...string) string {
	p := "/results/" + url.PathEscape(id)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

// ListResults pages through all results.
func (c *Client) ListResults(ctx context.Context, q ResultQuery) (types.Page[types.Result], error) {
	return fetchPage(ctx, c, get("/results", q.Values()), c.clientResult)
}

// MyResults pages through the caller's own results.
func (c *Client) MyResults(ctx context.Context, q ResultQuery) (types.Page[types.Result], error) {
	return fetchPage(ctx, c, get("/results/my", q.Values()), c.clientResult)
}

// Result fetches one result.
func (c *Client) Result(ctx context.Context, id string) (*types.Result, error) {
	r, err := fetch[*types.Result](ctx, c, get(resultPath(id), nil))
	return c.clientResultPtr(r), err
}

// CreateResult files a new result. Results from the process system are
// always created pending with no reviewers.
func (c *Client) CreateResult(ctx context.Context, r types.Result) (*types.Result, error) {
	res, err := fetch[*types.Result](ctx, c, post("/results", r))
	return c.clientResultPtr(res), err
}

// SaveDraft stores r as a draft.
func (c *Client) SaveDraft(ctx context.Context, r types.Result) (*types.Result, error) {
	res, err := fetch[*types.Result](ctx, c, post("/results/draft", r))
	return c.clientResultPtr(res), err
}

// UpdateResult merges patch into the stored result. Identity and review
// history are never overwritten.
func (c *Client) UpdateResult(ctx context.Context, id string, patch map[string]any) (*types.Result, error) {
	res, err := fetch[*types.Result](ctx, c, put(resultPath(id), patch))
	return c.clientResultPtr(res), err
}

// DeleteResult removes a result.
func (c *Client) DeleteResult(ctx context.Context, id string) error {
	_, err := c.gw.Do(ctx, del(resultPath(id)))
	return err
}

// SubmitResult sends a manual result for review.
func (c *Client) SubmitResult(ctx context.Context, id string) (*types.Result, error) {
	return c.transition(ctx, id, post(resultPath(id, "submit"), nil))
}

// AssignReviewers hands a result to reviewers and moves it to reviewing.
func (c *Client) AssignReviewers(ctx context.Context, id string, reviewers []string) (*types.Result, error) {
	body := map[string]any{"reviewers": reviewers}
	return c.transition(ctx, id, post(resultPath(id, "assign-reviewers"), body))
}

// Review actions.
const (
	ReviewApprove = "approve"
	ReviewReject  = "reject"
)

// ReviewResult approves or rejects a result under review.
func (c *Client) ReviewResult(ctx context.Context, id, action, comment string) (*types.Result, error) {
	body := map[string]string{"action": action, "comment": comment}
	return c.transition(ctx, id, post(resultPath(id, "review"), body))
}

// RequestChanges sends a result back to its author for revision.
func (c *Client) RequestChanges(ctx context.Context, id, comment string) (*types.Result, error) {
	body := map[string]string{"comment": comment}
	return c.transition(ctx, id, post(resultPath(id, "request-changes"), body))
}

// PassFormatCheck marks a result's formatting as accepted.
func (c *Client) PassFormatCheck(ctx context.Context, id string) (*types.Result, error) {
	return c.transition(ctx, id, post(resultPath(id, "format-check"), nil))
}

// RejectFormat records a formatting failure with reason.
func (c *Client) RejectFormat(ctx context.Context, id, reason string) (*types.Result, error) {
	body := map[string]string{"reason": reason}
	return c.transition(ctx, id, post(resultPath(id, "format-reject"), body))
}

// Backlog is the review queue.
type Backlog struct {
	Pending   []types.Result `json:"pending"`
	Reviewing []types.Result `json:"reviewing"`
	Summary   struct {
		Pending        int `json:"pending"`
		Reviewing      int `json:"reviewing"`
		ProcessPending int `json:"processPending"`
		ManualPending  int `json:"manualPending"`
	} `json:"summary"`
}

// ReviewBacklog returns results awaiting review. Experts only see the
// reviews assigned to them.
func (c *Client) ReviewBacklog(ctx context.Context) (Backlog, error) {
	b, err := fetch[Backlog](ctx, c, get("/results/review-backlog", nil))
	for i := range b.Pending {
		b.Pending[i] = c.clientResult(b.Pending[i])
	}
	for i := range b.Reviewing {
		b.Reviewing[i] = c.clientResult(b.Reviewing[i])
	}
	return b, err
}

// AutoFill is a suggested set of result fields.
type AutoFill struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Abstract string   `json:"abstract"`
	Keywords []string `json:"keywords"`
	Year     string   `json:"year"`
}

// AutoFill looks up result fields from an identifier such as a DOI or
// patent number.
func (c *Client) AutoFill(ctx context.Context, value, typ string) (AutoFill, error) {
	q := url.Values{}
	setString(q, "value", value)
	setString(q, "type", typ)
	return fetch[AutoFill](ctx, c, get("/results/auto-fill", q))
}

// NamedValue is one bucket of a distribution.
type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Statistics summarizes a set of results.
type Statistics struct {
	TotalResults     int          `json:"totalResults"`
	PaperCount       int          `json:"paperCount"`
	PatentCount      int          `json:"patentCount"`
	MonthlyNew       int          `json:"monthlyNew"`
	TypeDistribution []NamedValue `json:"typeDistribution"`
	YearlyTrend      []struct {
		Year  string `json:"year"`
		Count int    `json:"count"`
	} `json:"yearlyTrend"`
}

// Statistics summarizes every result.
func (c *Client) Statistics(ctx context.Context) (Statistics, error) {
	return fetch[Statistics](ctx, c, get("/results/statistics", nil))
}

// MyStatistics summarizes the caller's results.
func (c *Client) MyStatistics(ctx context.Context) (Statistics, error) {
	return fetch[Statistics](ctx, c, get("/results/my-statistics", nil))
}

// Distribution is a breakdown along one dimension.
type Distribution struct {
	Dimension       string       `json:"dimension"`
	Items           []NamedValue `json:"items"`
	IndexLevelItems []NamedValue `json:"indexLevelItems"`
}

// Distribution breaks results down by dimension (type, department, ...).
func (c *Client) Distribution(ctx context.Context, dimension string) (Distribution, error) {
	q := url.Values{}
	setString(q, "dimension", dimension)
	return fetch[Distribution](ctx, c, get("/results/advanced-distribution", q))
}

// StackedTrend is a per-year series for each key of a dimension.
type StackedTrend struct {
	Dimension string   `json:"dimension"`
	Range     string   `json:"range"`
	Timeline  []string `json:"timeline"`
	Stacks    []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
		Data []int  `json:"data"`
	} `json:"stacks"`
	Citations []int `json:"citations"`
}

// StackedTrend returns the trend along dimension over span ("3y" or "5y").
func (c *Client) StackedTrend(ctx context.Context, dimension, span string) (StackedTrend, error) {
	q := url.Values{}
	setString(q, "dimension", dimension)
	setString(q, "range", span)
	return fetch[StackedTrend](ctx, c, get("/results/stacked-trend", q))
}

// KeywordGraph is a co-occurrence graph of result keywords.
type KeywordGraph struct {
	Range string `json:"range"`
	Nodes []struct {
		Name     string `json:"name"`
		Value    int    `json:"value"`
		Category string `json:"category"`
	} `json:"nodes"`
	Links []struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Value  int    `json:"value"`
	} `json:"links"`
}

// Keywords returns the keyword graph over span.
func (c *Client) Keywords(ctx context.Context, span string) (KeywordGraph, error) {
	q := url.Values{}
	setString(q, "range", span)
	return fetch[KeywordGraph](ctx, c, get("/results/keywords", q))
}
