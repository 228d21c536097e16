// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// FileMeta describes an uploaded multipart part. Content is not kept.
type FileMeta struct {
	Field string
	Name  string
	Size  int64
}

// Call is one request as the mock engine sees it.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   json.RawMessage
	Header http.Header
	Files  []FileMeta
}

// Reply is the engine's answer. Status zero means 200.
type Reply struct {
	Status int
	Body   any
}

// decode unmarshals the call body into v. An empty body leaves v as is.
func (c Call) decode(v any) error {
	if len(c.Body) == 0 || string(c.Body) == "null" {
		return nil
	}
	return json.Unmarshal(c.Body, v)
}

// bearer returns the bearer token, or "".
func (c Call) bearer() string {
	if c.Header == nil {
		return ""
	}
	const prefix = "Bearer "
	h := c.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// file returns the part posted under field, falling back to the first part.
func (c Call) file(field string) (FileMeta, bool) {
	for _, f := range c.Files {
		if f.Field == field {
			return f, true
		}
	}
	if len(c.Files) > 0 {
		return c.Files[0], true
	}
	return FileMeta{}, false
}
