// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"net/url"

	"github.com/pdiddy/research-admin/pkg/types"
)

// Strapi filter keys.
const (
	filterNotDeleted = "filters[is_delete][$ne]"
	filterTypeDocID  = "filters[achievement_type_id][documentId][$eq]"
)

// Projects lists projects matching keyword.
func (c *Client) Projects(ctx context.Context, keyword string) ([]types.Project, error) {
	q := url.Values{}
	setString(q, "keyword", keyword)
	return fetch[[]types.Project](ctx, c, get("/projects", q))
}

// Project fetches one project.
func (c *Client) Project(ctx context.Context, id string) (*types.Project, error) {
	return fetch[*types.Project](ctx, c, get("/projects/"+url.PathEscape(id), nil))
}

// CreateProject registers a project.
func (c *Client) CreateProject(ctx context.Context, p types.Project) (*types.Project, error) {
	return fetch[*types.Project](ctx, c, post("/projects", p))
}

// ResultTypes lists the result categories and their dynamic fields.
func (c *Client) ResultTypes(ctx context.Context) ([]types.ResultType, error) {
	return fetch[[]types.ResultType](ctx, c, get("/result-types", nil))
}

// ResultType fetches a type by id or code. It returns nil, nil when the
// type is unknown.
func (c *Client) ResultType(ctx context.Context, ref string) (*types.ResultType, error) {
	return fetch[*types.ResultType](ctx, c, get("/result-types/"+url.PathEscape(ref), nil))
}

func strapiPaging(q url.Values, p PageQuery) {
	setInt(q, "pagination[page]", p.Page)
	setInt(q, "pagination[pageSize]", p.PageSize)
}

// AchievementTypes pages through the Strapi type catalog. Logically
// deleted types are hidden unless includeDeleted.
func (c *Client) AchievementTypes(ctx context.Context, p PageQuery, includeDeleted bool) (types.Page[types.AchievementType], error) {
	q := url.Values{}
	strapiPaging(q, p)
	if !includeDeleted {
		q.Set(filterNotDeleted, "1")
	}
	return fetchPage[types.AchievementType](ctx, c, get("/achievement-types", q), nil)
}

type strapiData struct {
	Data any `json:"data"`
}

// CreateAchievementType adds a type. The matching result type appears in
// ResultTypes.
func (c *Client) CreateAchievementType(ctx context.Context, name, code, description string) (*types.AchievementType, error) {
	body := strapiData{Data: map[string]string{"type_name": name, "type_code": code, "description": description}}
	return fetch[*types.AchievementType](ctx, c, post("/achievement-types", body))
}

// UpdateAchievementType applies the non-nil fields of patch.
func (c *Client) UpdateAchievementType(ctx context.Context, documentID string, patch map[string]any) (*types.AchievementType, error) {
	return fetch[*types.AchievementType](ctx, c, put("/achievement-types/"+url.PathEscape(documentID), strapiData{Data: patch}))
}

// DeleteAchievementType logically deletes a type.
func (c *Client) DeleteAchievementType(ctx context.Context, documentID string) (*types.AchievementType, error) {
	return fetch[*types.AchievementType](ctx, c, del("/achievement-types/"+url.PathEscape(documentID)))
}

// FieldDefs lists the live field definitions of a type.
func (c *Client) FieldDefs(ctx context.Context, typeDocumentID string) (types.Page[types.FieldDef], error) {
	q := url.Values{}
	setString(q, filterTypeDocID, typeDocumentID)
	q.Set(filterNotDeleted, "1")
	return fetchPage[types.FieldDef](ctx, c, get("/achievement-field-defs", q), nil)
}

// CreateFieldDef adds a field definition to a type.
func (c *Client) CreateFieldDef(ctx context.Context, f types.FieldDef) (*types.FieldDef, error) {
	body := strapiData{Data: map[string]any{
		"achievement_type_id": f.AchievementTypeID,
		"field_code":          f.FieldCode,
		"field_name":          f.FieldName,
		"field_type":          f.FieldType,
		"is_required":         f.IsRequired,
		"description":         f.Description,
	}}
	return fetch[*types.FieldDef](ctx, c, post("/achievement-field-defs", body))
}

// DeleteFieldDef logically deletes a field definition.
func (c *Client) DeleteFieldDef(ctx context.Context, documentID string) (*types.FieldDef, error) {
	return fetch[*types.FieldDef](ctx, c, del("/achievement-field-defs/"+url.PathEscape(documentID)))
}
