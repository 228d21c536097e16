// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/research-admin/pkg/types"
)

// bizEnvelope is the business dialect {code, message, data}.
type bizEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type strapiPagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type strapiMeta struct {
	Pagination *strapiPagination `json:"pagination,omitempty"`
}

// strapiBody is the collection dialect. It has no code.
type strapiBody struct {
	Data any        `json:"data"`
	Meta strapiMeta `json:"meta"`
}

func success(data any, message string) Reply {
	if message == "" {
		message = "success"
	}
	return Reply{Status: http.StatusOK, Body: bizEnvelope{Code: 200, Message: message, Data: data}}
}

// fail answers with the business code mirrored in the HTTP status.
func fail(code int, message string) Reply {
	return failWith(code, message, nil)
}

func failWith(code int, message string, data any) Reply {
	return Reply{Status: code, Body: bizEnvelope{Code: code, Message: message, Data: data}}
}

func strapiItem(data any) Reply {
	return Reply{Status: http.StatusOK, Body: strapiBody{Data: data}}
}

// strapiList pages list with pagination[page] and pagination[pageSize].
// The page size defaults to the whole list, or 10 when it is empty.
func strapiList[T any](list []T, q map[string][]string) Reply {
	page := queryInt(q, 1, "pagination[page]")
	size := len(list)
	if size == 0 {
		size = 10
	}
	size = queryInt(q, size, "pagination[pageSize]")

	total := len(list)
	return Reply{Status: http.StatusOK, Body: strapiBody{
		Data: window(list, page, size),
		Meta: strapiMeta{Pagination: &strapiPagination{
			Page:      page,
			PageSize:  size,
			PageCount: max(int(math.Ceil(float64(total)/float64(size))), 1),
			Total:     total,
		}},
	}}
}

// paginate slices list to the 1-based page. Total is the unsliced length.
func paginate[T any](list []T, q map[string][]string) types.Page[T] {
	page := queryInt(q, 1, "page", "current")
	size := queryInt(q, 10, "pageSize", "size")
	return types.Page[T]{List: window(list, page, size), Total: len(list), Page: page, PageSize: size}
}

func window[T any](list []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(list) {
		return []T{}
	}
	end := min(start+size, len(list))
	return append([]T{}, list[start:end]...)
}

// queryInt returns the first positive integer among keys, or def.
func queryInt(q map[string][]string, def int, keys ...string) int {
	for _, k := range keys {
		for _, v := range q[k] {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return def
}

// queryString returns the first non-empty value among keys.
func queryString(q map[string][]string, keys ...string) string {
	for _, k := range keys {
		for _, v := range q[k] {
			if v != "" {
				return v
			}
		}
	}
	return ""
}

// queryList collects repeated, bracketed and comma-separated values.
func queryList(q map[string][]string, key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range q[k] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func upper(s, def string) string {
	if s == "" {
		s = def
	}
	return strings.ToUpper(s)
}
