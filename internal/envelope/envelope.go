// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package envelope decodes backend responses into a tagged union and
// reshapes their payloads into the canonical forms callers consume.
//
// Two backend conventions are reconciled: the business envelope
// {code, message, data} and the Strapi collection envelope {data, meta}.
// The shape is decided once in Decode and carried as Envelope.Shape.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Shape tags which envelope variant a body used.
type Shape int

const (
	// ShapeRaw is a body with neither a code nor a data key.
	ShapeRaw Shape = iota
	// ShapeBusiness is {code, message, data}.
	ShapeBusiness
	// ShapeCollection is {data, meta?}.
	ShapeCollection
)

func (s Shape) String() string {
	switch s {
	case ShapeBusiness:
		return "business"
	case ShapeCollection:
		return "collection"
	default:
		return "raw"
	}
}

// Pagination is the Strapi meta.pagination block.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Meta is the Strapi meta block.
type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Envelope is a decoded response body.
type Envelope struct {
	Shape Shape

	// Code is the business code in string form. Business only.
	Code    string
	Message string

	// Data is the data member for business and collection envelopes.
	Data json.RawMessage
	Meta *Meta

	// Body is the complete body as received.
	Body json.RawMessage
}

var null = json.RawMessage("null")

// Decode inspects body once and returns the matching variant. Bodies that
// are not JSON objects (arrays, scalars, empty) decode as ShapeRaw.
func Decode(body []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Envelope{Shape: ShapeRaw, Body: null}, nil
	}
	if !json.Valid(trimmed) {
		return Envelope{}, fmt.Errorf("decoding response body: invalid JSON")
	}

	env := Envelope{Shape: ShapeRaw, Body: json.RawMessage(trimmed)}
	if trimmed[0] != '{' {
		return env, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Envelope{}, fmt.Errorf("decoding response body: %w", err)
	}

	if code, ok := fields["code"]; ok {
		env.Shape = ShapeBusiness
		env.Code = codeString(code)
		_ = json.Unmarshal(fields["message"], &env.Message)
		env.Data = orNull(fields["data"])
		return env, nil
	}

	if data, ok := fields["data"]; ok && collectionKeys(fields) {
		env.Shape = ShapeCollection
		env.Data = orNull(data)
		if raw, ok := fields["meta"]; ok {
			var m Meta
			if json.Unmarshal(raw, &m) == nil {
				env.Meta = &m
			}
		}
	}
	return env, nil
}

// collectionKeys reports whether fields holds nothing beyond data and
// meta. Any other member makes the body a plain object.
func collectionKeys(fields map[string]json.RawMessage) bool {
	for k := range fields {
		if k != "data" && k != "meta" {
			return false
		}
	}
	return true
}

// codeString renders a JSON number or string code as a plain string.
func codeString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return null
	}
	return raw
}

// successCodes are the business codes treated as success across both
// backend generations.
var successCodes = map[string]bool{"200": true, "0": true, "1": true}

// IsSuccessCode reports whether code belongs to the success set.
func IsSuccessCode(code string) bool {
	return successCodes[code]
}

// Succeeded reports whether a business envelope carries a success code.
// Non-business envelopes always succeed at this layer.
func (e Envelope) Succeeded() bool {
	return e.Shape != ShapeBusiness || IsSuccessCode(e.Code)
}
