// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"net/url"

	"github.com/pdiddy/research-admin/internal/envelope"
	"github.com/pdiddy/research-admin/pkg/types"
)

// AccessQuery filters access requests.
type AccessQuery struct {
	PageQuery
	Keyword string
	Status  string
}

// AccessRequestView is an access request with the requested result's
// current status.
type AccessRequestView struct {
	types.AccessRequest
	ResultStatus string `json:"resultStatus,omitempty"`
}

// RequestAccess asks for full access to a restricted result.
func (c *Client) RequestAccess(ctx context.Context, resultID, reason string) (*types.AccessRequest, error) {
	body := map[string]string{"reason": reason}
	return fetch[*types.AccessRequest](ctx, c, post(resultPath(resultID, "access-requests"), body))
}

// AccessRequests pages through access requests.
func (c *Client) AccessRequests(ctx context.Context, q AccessQuery) (types.Page[AccessRequestView], error) {
	v := url.Values{}
	q.PageQuery.apply(v)
	setString(v, "keyword", q.Keyword)
	setString(v, "status", q.Status)
	return fetchPage(ctx, c, get("/results/access-requests", v), func(a AccessRequestView) AccessRequestView {
		a.ResultStatus = envelope.ClientStatus(a.ResultStatus)
		return a
	})
}

// ReviewAccessRequest approves or rejects an access request.
func (c *Client) ReviewAccessRequest(ctx context.Context, id, action, comment string) (*types.AccessRequest, error) {
	body := map[string]string{"action": action, "comment": comment}
	return fetch[*types.AccessRequest](ctx, c, post("/results/access-requests/"+url.PathEscape(id)+"/review", body))
}

// DemandQuery filters demands.
type DemandQuery struct {
	PageQuery
	Keyword        string
	Industry       string
	Region         string
	SourceCategory string
	Status         string
}

// Demands pages through captured industry demands.
func (c *Client) Demands(ctx context.Context, q DemandQuery) (types.Page[types.Demand], error) {
	v := url.Values{}
	q.PageQuery.apply(v)
	setString(v, "keyword", q.Keyword)
	setString(v, "industry", q.Industry)
	setString(v, "region", q.Region)
	setString(v, "sourceCategory", q.SourceCategory)
	setString(v, "status", q.Status)
	return fetchPage[types.Demand](ctx, c, get("/demand", v), nil)
}

// Demand fetches one demand with its matches.
func (c *Client) Demand(ctx context.Context, id string) (*types.Demand, error) {
	return fetch[*types.Demand](ctx, c, get("/demand/"+url.PathEscape(id), nil))
}

// RematchDemand rescores a demand's matches, best first.
func (c *Client) RematchDemand(ctx context.Context, id string) (*types.Demand, error) {
	return fetch[*types.Demand](ctx, c, post("/demand/"+url.PathEscape(id)+"/rematch", nil))
}

// CrawlerSources lists the demand crawler's sources.
func (c *Client) CrawlerSources(ctx context.Context) ([]types.CrawlerSource, error) {
	p, err := fetchPage[types.CrawlerSource](ctx, c, get("/system/crawler-sources", nil), nil)
	return p.List, err
}

// CreateCrawlerSource registers a source. It starts idle.
func (c *Client) CreateCrawlerSource(ctx context.Context, s types.CrawlerSource) (*types.CrawlerSource, error) {
	return fetch[*types.CrawlerSource](ctx, c, post("/system/crawler-sources", s))
}

// UpdateCrawlerSource merges patch into a source.
func (c *Client) UpdateCrawlerSource(ctx context.Context, id string, patch map[string]any) (*types.CrawlerSource, error) {
	return fetch[*types.CrawlerSource](ctx, c, put("/system/crawler-sources/"+url.PathEscape(id), patch))
}

// DeleteCrawlerSource removes a source.
func (c *Client) DeleteCrawlerSource(ctx context.Context, id string) error {
	_, err := c.gw.Do(ctx, del("/system/crawler-sources/"+url.PathEscape(id)))
	return err
}

// TestCrawlerSource probes a source's connection. A failed probe is an
// error.
func (c *Client) TestCrawlerSource(ctx context.Context, id string) (*types.CrawlerSource, error) {
	return fetch[*types.CrawlerSource](ctx, c, post("/system/crawler-sources/"+url.PathEscape(id)+"/test", nil))
}

// CrawlerSettings returns the global crawler settings.
func (c *Client) CrawlerSettings(ctx context.Context) (types.CrawlerSettings, error) {
	return fetch[types.CrawlerSettings](ctx, c, get("/system/crawler-settings", nil))
}

// UpdateCrawlerSettings merges patch into the crawler settings.
func (c *Client) UpdateCrawlerSettings(ctx context.Context, patch map[string]any) (types.CrawlerSettings, error) {
	return fetch[types.CrawlerSettings](ctx, c, put("/system/crawler-settings", patch))
}

// InterimQuery filters interim results.
type InterimQuery struct {
	PageQuery
	ProjectID string
	Type      string
	Year      string
	Keyword   string
}

// InterimStats summarizes synced interim results.
type InterimStats struct {
	TotalProjects  int            `json:"totalProjects"`
	TotalResults   int            `json:"totalResults"`
	ByType         map[string]int `json:"byType"`
	ByYear         map[string]int `json:"byYear"`
	RecentSyncTime string         `json:"recentSyncTime,omitempty"`
}

// InterimResults pages through interim results.
func (c *Client) InterimResults(ctx context.Context, q InterimQuery) (types.Page[types.InterimResult], error) {
	v := url.Values{}
	q.PageQuery.apply(v)
	setString(v, "projectId", q.ProjectID)
	setString(v, "type", q.Type)
	setString(v, "year", q.Year)
	setString(v, "keyword", q.Keyword)
	return fetchPage(ctx, c, get("/interim-results", v), c.clientInterim)
}

// InterimResult fetches one interim result.
func (c *Client) InterimResult(ctx context.Context, id string) (*types.InterimResult, error) {
	r, err := fetch[*types.InterimResult](ctx, c, get("/interim-results/"+url.PathEscape(id), nil))
	if r != nil {
		*r = c.clientInterim(*r)
	}
	return r, err
}

func (c *Client) clientInterim(r types.InterimResult) types.InterimResult {
	r.Attachments = c.attachments(r.Attachments)
	return r
}

// InterimStats summarizes interim results.
func (c *Client) InterimStats(ctx context.Context) (InterimStats, error) {
	return fetch[InterimStats](ctx, c, get("/interim-results/stats", nil))
}

// SyncReport is the outcome of a process-system sync.
type SyncReport struct {
	SyncCount int    `json:"syncCount"`
	SyncTime  string `json:"syncTime"`
}

// SyncInterim pulls interim results from the process system, optionally
// for one project.
func (c *Client) SyncInterim(ctx context.Context, projectID string) (SyncReport, error) {
	body := map[string]string{}
	if projectID != "" {
		body["projectId"] = projectID
	}
	return fetch[SyncReport](ctx, c, post("/interim-results/sync", body))
}
