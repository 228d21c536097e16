// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the research management backend as typed calls.
// Every call goes through the gateway, so it inherits mock routing,
// token refresh and error surfacing; this package only shapes requests
// and decodes the normalized payloads.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/research-admin/internal/envelope"
	"github.com/pdiddy/research-admin/internal/gateway"
	"github.com/pdiddy/research-admin/pkg/types"
)

// Doer executes gateway requests. *gateway.Gateway satisfies it.
type Doer interface {
	Do(ctx context.Context, req gateway.Request) (envelope.Result, error)
}

// Client is the typed backend client. It is safe for concurrent use when
// its Doer is.
type Client struct {
	gw        Doer
	assetBase string
}

// Option configures a Client.
type Option func(*Client)

// WithAssetBase resolves relative attachment URLs against base.
func WithAssetBase(base string) Option {
	return func(c *Client) { c.assetBase = base }
}

// New returns a Client over gw.
func New(gw Doer, opts ...Option) *Client {
	c := &Client{gw: gw}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PageQuery carries 1-based pagination. Zero values are omitted.
type PageQuery struct {
	Page     int
	PageSize int
}

func (p PageQuery) apply(q url.Values) {
	setInt(q, "page", p.Page)
	setInt(q, "pageSize", p.PageSize)
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func fetch[T any](ctx context.Context, c *Client, req gateway.Request) (T, error) {
	res, err := c.gw.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return envelope.Into[T](res)
}

func fetchPage[T any](ctx context.Context, c *Client, req gateway.Request, mapper func(T) T) (types.Page[T], error) {
	res, err := c.gw.Do(ctx, req)
	if err != nil {
		return types.Page[T]{}, err
	}
	return envelope.PageOf(res, mapper)
}

func get(path string, q url.Values) gateway.Request {
	return gateway.Request{Method: http.MethodGet, Path: path, Query: q}
}

func post(path string, body any) gateway.Request {
	return gateway.Request{Method: http.MethodPost, Path: path, Body: body}
}

func put(path string, body any) gateway.Request {
	return gateway.Request{Method: http.MethodPut, Path: path, Body: body}
}

func del(path string) gateway.Request {
	return gateway.Request{Method: http.MethodDelete, Path: path}
}

// Upload sends one file as multipart form data.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (types.Attachment, error) {
	return fetch[types.Attachment](ctx, c, gateway.Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Files:  []gateway.File{{Field: "file", Name: name, Content: content}},
	})
}

// attachments normalizes file records: URLs are resolved against the
// asset base and missing extensions are taken from the name. The list is
// returned unchanged if it cannot be re-encoded.
func (c *Client) attachments(list []types.Attachment) []types.Attachment {
	if len(list) == 0 {
		return list
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return list
	}
	media, err := envelope.NormalizeMedia(raw, c.assetBase)
	if err != nil || len(media) != len(list) {
		return list
	}
	out := make([]types.Attachment, len(list))
	for i, m := range media {
		out[i] = list[i]
		out[i].ID = m.ID
		out[i].Name = m.Name
		out[i].Ext = m.Ext
		out[i].URL = m.URL
		out[i].Size = m.Size
	}
	return out
}
