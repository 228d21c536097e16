// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/pdiddy/research-admin/internal/apperr"
	"github.com/pdiddy/research-admin/pkg/types"
)

// ErrNotPage is returned by PageOf when the payload is neither page-like
// nor a bare array.
var ErrNotPage = errors.New("payload is not a page")

// Fallback supplies page numbers when the payload omits them, usually
// taken from the request's own pagination parameters.
type Fallback struct {
	Page     int
	PageSize int
}

// Result is the normalized payload of one response.
type Result struct {
	// Page is set when the payload was page-like.
	Page *types.Page[json.RawMessage]

	// Data is the unwrapped payload: the business data member, the
	// flattened Strapi item, or the raw body. For page-like payloads it
	// holds the canonical page encoding.
	Data json.RawMessage

	Envelope Envelope
}

// IsPage reports whether the payload was reshaped to a page.
func (r Result) IsPage() bool { return r.Page != nil }

// Normalize unwraps env. A business envelope with a failing code is
// rejected with a BUSINESS error carrying that code.
func Normalize(env Envelope, fb Fallback) (Result, error) {
	res := Result{Envelope: env}

	switch env.Shape {
	case ShapeBusiness:
		if !IsSuccessCode(env.Code) {
			return res, apperr.Business(env.Code, env.Message).WithDetails(env.Data)
		}
		res.Data = env.Data
		if p, ok := detectPage(env.Data, fb); ok {
			res.setPage(p)
		}

	case ShapeCollection:
		if isArray(env.Data) {
			var pg *Pagination
			if env.Meta != nil {
				pg = env.Meta.Pagination
			}
			p, err := strapiPage(env.Data, pg, fb)
			if err != nil {
				return res, err
			}
			res.setPage(p)
			break
		}
		if p, ok := detectPage(env.Data, fb); ok {
			res.setPage(p)
			break
		}
		res.Data = flattenItem(env.Data)

	default:
		res.Data = env.Body
		if p, ok := detectPage(env.Body, fb); ok {
			res.setPage(p)
		}
	}
	return res, nil
}

func (r *Result) setPage(p *types.Page[json.RawMessage]) {
	r.Page = p
	if data, err := json.Marshal(p); err == nil {
		r.Data = data
	}
}

// listKeys are the member names a page-like container may carry its
// items under, in lookup order.
var listKeys = []string{"list", "records", "data"}

// detectPage recognizes {list|records|data: [...]} accompanied by at least
// one of total, current, size, page or pageSize.
func detectPage(raw json.RawMessage, fb Fallback) (*types.Page[json.RawMessage], bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return nil, false
	}

	var items json.RawMessage
	for _, k := range listKeys {
		if v, ok := fields[k]; ok && isArray(v) {
			items = v
			break
		}
	}
	if items == nil {
		return nil, false
	}

	total, hasTotal := intField(fields, "total")
	page, hasPage := intField(fields, "page", "current")
	size, hasSize := intField(fields, "pageSize", "size")
	if !hasTotal && !hasPage && !hasSize {
		return nil, false
	}

	var list []json.RawMessage
	if json.Unmarshal(items, &list) != nil {
		return nil, false
	}
	for i, item := range list {
		list[i] = flattenItem(item)
	}
	if list == nil {
		list = []json.RawMessage{}
	}

	p := &types.Page[json.RawMessage]{List: list, Total: total, Page: page, PageSize: size}
	fillPage(p, hasTotal, hasPage, hasSize, fb)
	return p, true
}

// strapiPage reshapes a Strapi collection {data: [...], meta.pagination}.
func strapiPage(items json.RawMessage, pg *Pagination, fb Fallback) (*types.Page[json.RawMessage], error) {
	var list []json.RawMessage
	if err := json.Unmarshal(items, &list); err != nil {
		return nil, fmt.Errorf("decoding collection: %w", err)
	}
	for i, item := range list {
		list[i] = flattenItem(item)
	}
	if list == nil {
		list = []json.RawMessage{}
	}

	p := &types.Page[json.RawMessage]{List: list}
	var hasTotal, hasPage, hasSize bool
	if pg != nil {
		p.Total, hasTotal = pg.Total, true
		p.Page, hasPage = pg.Page, pg.Page > 0
		p.PageSize, hasSize = pg.PageSize, pg.PageSize > 0
	}
	fillPage(p, hasTotal, hasPage, hasSize, fb)
	return p, nil
}

func fillPage(p *types.Page[json.RawMessage], hasTotal, hasPage, hasSize bool, fb Fallback) {
	if !hasTotal {
		p.Total = len(p.List)
	}
	if !hasPage || p.Page <= 0 {
		p.Page = 1
		if fb.Page > 0 {
			p.Page = fb.Page
		}
	}
	if !hasSize || p.PageSize <= 0 {
		p.PageSize = len(p.List)
		if fb.PageSize > 0 {
			p.PageSize = fb.PageSize
		}
	}
}

// flattenItem lifts Strapi v4 {id, attributes:{...}} into {id, ...}.
// Items without an attributes object are returned untouched.
func flattenItem(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var item map[string]json.RawMessage
	if json.Unmarshal(trimmed, &item) != nil {
		return raw
	}
	attrsRaw, ok := item["attributes"]
	if !ok {
		return raw
	}
	var attrs map[string]json.RawMessage
	if json.Unmarshal(attrsRaw, &attrs) != nil || attrs == nil {
		return raw
	}
	if id, ok := item["id"]; ok && string(id) != "null" {
		attrs["id"] = id
	}
	out, err := json.Marshal(attrs)
	if err != nil {
		return raw
	}
	return out
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// intField returns the first of keys holding a number or numeric string.
func intField(fields map[string]json.RawMessage, keys ...string) (int, bool) {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			if v, err := n.Int64(); err == nil {
				return int(v), true
			}
			if f, err := n.Float64(); err == nil {
				return int(f), true
			}
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if v, err := strconv.Atoi(s); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// PageOf decodes a normalized result into a typed page, applying mapper
// to every item when it is non-nil. A bare array payload becomes a single
// page holding every item.
func PageOf[T any](r Result, mapper func(T) T) (types.Page[T], error) {
	src := r.Page
	if src == nil {
		if !isArray(r.Data) {
			return types.Page[T]{}, ErrNotPage
		}
		var list []json.RawMessage
		if err := json.Unmarshal(r.Data, &list); err != nil {
			return types.Page[T]{}, fmt.Errorf("decoding list: %w", err)
		}
		src = &types.Page[json.RawMessage]{List: list, Total: len(list), Page: 1, PageSize: len(list)}
	}

	out := types.Page[T]{
		List:     make([]T, 0, len(src.List)),
		Total:    src.Total,
		Page:     src.Page,
		PageSize: src.PageSize,
	}
	for i, raw := range src.List {
		var item T
		if err := json.Unmarshal(flattenItem(raw), &item); err != nil {
			return types.Page[T]{}, fmt.Errorf("decoding item %d: %w", i, err)
		}
		if mapper != nil {
			item = mapper(item)
		}
		out.List = append(out.List, item)
	}
	return out, nil
}

// Into decodes the normalized payload into T. A null payload leaves T at
// its zero value.
func Into[T any](r Result) (T, error) {
	var out T
	if len(r.Data) == 0 || string(bytes.TrimSpace(r.Data)) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(r.Data, &out); err != nil {
		return out, fmt.Errorf("decoding payload: %w", err)
	}
	return out, nil
}
