// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/research-admin/pkg/types"
)

const (
	filterNotDeleted = "filters[is_delete][$ne]"
	filterTypeDocID  = "filters[achievement_type_id][documentId][$eq]"
)

func (e *Engine) listResultTypes(*request) Reply {
	return success(e.store.ResultTypes, "")
}

// getResultType answers null, not 404, for an unknown type.
func (e *Engine) getResultType(r *request) Reply {
	ref := r.param(0)
	for _, t := range e.store.ResultTypes {
		if t.ID == ref || t.Code == ref {
			return success(t, "")
		}
	}
	return success(nil, "")
}

// strapiPayload is the {data: {...}} wrapper Strapi writes use.
type strapiPayload[T any] struct {
	Data T `json:"data"`
}

// flexInt reads a JSON number, boolean or numeric string. ok is false when
// the field was absent or null.
func flexInt(raw json.RawMessage) (n int, ok bool) {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null":
		return 0, false
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return int(f), true
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		if v, err := strconv.Atoi(str); err == nil {
			return v, true
		}
	}
	return 0, false
}

// excluded reports whether isDelete is filtered out by the $ne filter.
func excluded(r *request, isDelete int) bool {
	ne, ok := r.query[filterNotDeleted]
	if !ok || len(ne) == 0 {
		return false
	}
	v, err := strconv.Atoi(ne[0])
	return err == nil && isDelete == v
}

type typePayload struct {
	DocumentID  string          `json:"documentId"`
	TypeName    *string         `json:"type_name"`
	Name        string          `json:"name"`
	TypeCode    *string         `json:"type_code"`
	Code        string          `json:"code"`
	Description *string         `json:"description"`
	IsDelete    json.RawMessage `json:"is_delete"`
}

func (e *Engine) listAchievementTypes(r *request) Reply {
	list := []*types.AchievementType{}
	for _, t := range e.store.achievementTypes {
		if !excluded(r, t.IsDelete) {
			list = append(list, t)
		}
	}
	return strapiList(list, r.query)
}

func (e *Engine) achievementType(doc string) *types.AchievementType {
	for _, t := range e.store.achievementTypes {
		if t.DocumentID == doc {
			return t
		}
	}
	return nil
}

// createAchievementType also registers a matching ResultType so the
// business dialect sees the new type.
func (e *Engine) createAchievementType(r *request) Reply {
	var body strapiPayload[typePayload]
	if err := r.decode(&body); err != nil {
		return fail(http.StatusBadRequest, "malformed achievement type")
	}
	p := body.Data

	doc := p.DocumentID
	if doc == "" {
		doc = deref(p.TypeCode)
	}
	if doc == "" {
		doc = e.store.nextID("rt")
	}
	name := deref(p.TypeName)
	if name == "" {
		name = p.Name
	}
	code := deref(p.TypeCode)
	if code == "" {
		code = p.Code
	}
	if code == "" {
		code = doc
	}
	isDelete, _ := flexInt(p.IsDelete)

	now := e.stamp()
	t := &types.AchievementType{
		ID:          len(e.store.achievementTypes) + 1,
		DocumentID:  doc,
		TypeName:    name,
		TypeCode:    code,
		Description: deref(p.Description),
		IsDelete:    isDelete,
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: now,
	}
	e.store.achievementTypes = append(e.store.achievementTypes, t)

	display := name
	if display == "" {
		display = code
	}
	e.store.ResultTypes = append(e.store.ResultTypes, &types.ResultType{
		ID:          doc,
		Name:        display,
		Code:        code,
		Description: t.Description,
		Enabled:     isDelete == 0,
		Fields:      []types.TypeField{},
	})
	return strapiItem(t)
}

func (e *Engine) updateAchievementType(r *request) Reply {
	t := e.achievementType(r.param(0))
	if t == nil {
		return fail(http.StatusNotFound, "achievement type not found")
	}
	var body strapiPayload[typePayload]
	if err := r.decode(&body); err != nil {
		return fail(http.StatusBadRequest, "malformed achievement type")
	}
	p := body.Data
	if p.TypeName != nil {
		t.TypeName = *p.TypeName
	}
	if p.TypeCode != nil {
		t.TypeCode = *p.TypeCode
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if v, ok := flexInt(p.IsDelete); ok {
		t.IsDelete = v
	}
	t.UpdatedAt = e.stamp()
	e.syncResultType(t)
	return strapiItem(t)
}

// deleteAchievementType is a logical delete.
func (e *Engine) deleteAchievementType(r *request) Reply {
	t := e.achievementType(r.param(0))
	if t == nil {
		return fail(http.StatusNotFound, "achievement type not found")
	}
	t.IsDelete = 1
	t.UpdatedAt = e.stamp()
	e.syncResultType(t)
	return strapiItem(t)
}

func (e *Engine) syncResultType(t *types.AchievementType) {
	for _, rt := range e.store.ResultTypes {
		if rt.ID == t.DocumentID {
			rt.Name = t.TypeName
			rt.Code = t.TypeCode
			rt.Description = t.Description
			rt.Enabled = t.IsDelete == 0
		}
	}
}

type fieldPayload struct {
	DocumentID        string          `json:"documentId"`
	AchievementTypeID string          `json:"achievement_type_id"`
	AchievementType   string          `json:"achievement_type"`
	FieldCode         *string         `json:"field_code"`
	FieldName         *string         `json:"field_name"`
	FieldType         string          `json:"field_type"`
	IsRequired        json.RawMessage `json:"is_required"`
	Description       *string         `json:"description"`
	IsDelete          json.RawMessage `json:"is_delete"`
}

func (e *Engine) listFieldDefs(r *request) Reply {
	typeID := queryString(r.query, filterTypeDocID)
	list := []*types.FieldDef{}
	for _, f := range e.store.fieldDefs {
		if typeID != "" && f.AchievementTypeID != typeID {
			continue
		}
		if excluded(r, f.IsDelete) {
			continue
		}
		list = append(list, f)
	}
	return strapiList(list, r.query)
}

func (e *Engine) fieldDef(doc string) *types.FieldDef {
	for _, f := range e.store.fieldDefs {
		if f.DocumentID == doc {
			return f
		}
	}
	return nil
}

func (e *Engine) createFieldDef(r *request) Reply {
	var body strapiPayload[fieldPayload]
	if err := r.decode(&body); err != nil {
		return fail(http.StatusBadRequest, "malformed field definition")
	}
	p := body.Data

	typeID := p.AchievementTypeID
	if typeID == "" {
		typeID = p.AchievementType
	}
	doc := p.DocumentID
	if doc == "" {
		prefix := typeID
		if prefix == "" {
			prefix = "field"
		}
		doc = prefix + "-" + e.store.nextID("afd")
	}
	required, _ := flexInt(p.IsRequired)
	isDelete, _ := flexInt(p.IsDelete)

	now := e.stamp()
	f := &types.FieldDef{
		ID:                len(e.store.fieldDefs) + 1,
		DocumentID:        doc,
		AchievementTypeID: typeID,
		FieldCode:         deref(p.FieldCode),
		FieldName:         deref(p.FieldName),
		FieldType:         upper(p.FieldType, "TEXT"),
		IsRequired:        required,
		Description:       deref(p.Description),
		IsDelete:          isDelete,
		CreatedAt:         now,
		UpdatedAt:         now,
		PublishedAt:       now,
	}
	e.store.fieldDefs = append(e.store.fieldDefs, f)
	return strapiItem(f)
}

func (e *Engine) updateFieldDef(r *request) Reply {
	f := e.fieldDef(r.param(0))
	if f == nil {
		return fail(http.StatusNotFound, "field definition not found")
	}
	var body strapiPayload[fieldPayload]
	if err := r.decode(&body); err != nil {
		return fail(http.StatusBadRequest, "malformed field definition")
	}
	p := body.Data
	if p.FieldCode != nil {
		f.FieldCode = *p.FieldCode
	}
	if p.FieldName != nil {
		f.FieldName = *p.FieldName
	}
	if p.FieldType != "" {
		f.FieldType = strings.ToUpper(p.FieldType)
	}
	if v, ok := flexInt(p.IsRequired); ok {
		f.IsRequired = v
	}
	if v, ok := flexInt(p.IsDelete); ok {
		f.IsDelete = v
	}
	switch {
	case p.AchievementTypeID != "":
		f.AchievementTypeID = p.AchievementTypeID
	case p.AchievementType != "":
		f.AchievementTypeID = p.AchievementType
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	f.UpdatedAt = e.stamp()
	return strapiItem(f)
}

// deleteFieldDef is a logical delete.
func (e *Engine) deleteFieldDef(r *request) Reply {
	f := e.fieldDef(r.param(0))
	if f == nil {
		return fail(http.StatusNotFound, "field definition not found")
	}
	f.IsDelete = 1
	f.UpdatedAt = e.stamp()
	return strapiItem(f)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
