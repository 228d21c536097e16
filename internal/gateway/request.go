// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/research-admin/internal/envelope"
)

// Request describes one API call. It is treated as immutable once handed
// to the gateway.
type Request struct {
	Method string
	// Path is relative to the API root, e.g. "/results/r-001".
	Path   string
	Query  url.Values
	Body   any
	Files  []File
	Header http.Header

	// SkipAuth sends no bearer token and never triggers a refresh.
	SkipAuth bool
	// Silent suppresses user notification. The error is still returned.
	Silent bool
	// NoMock forces the live transport even when mock mode is on.
	NoMock bool
}

// File is one multipart upload part.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Response is a transport-shaped response, produced by the live
// transport or synthesized from a mock reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport performs a live round trip. token is empty when the request
// skips auth.
type Transport interface {
	RoundTrip(ctx context.Context, req Request, token string) (*Response, error)
}

// fallback derives page numbers from the request's own pagination
// parameters, in either naming convention.
func (r Request) fallback() envelope.Fallback {
	var fb envelope.Fallback
	if r.Query == nil {
		return fb
	}
	fb.Page = firstInt(r.Query, "page", "pagination[page]", "current")
	fb.PageSize = firstInt(r.Query, "pageSize", "pagination[pageSize]", "size")
	return fb
}

func firstInt(q url.Values, keys ...string) int {
	for _, k := range keys {
		if v, err := strconv.Atoi(q.Get(k)); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func (r Request) label() string {
	return r.Method + " " + r.Path
}
