// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/pdiddy/research-admin/pkg/types"
)

// DefaultMediaName is used when a file record carries no usable name.
const DefaultMediaName = "attachment"

// mediaRecord is the union of the fields file records arrive with.
type mediaRecord struct {
	ID              json.RawMessage `json:"id"`
	Name            string          `json:"name"`
	Filename        string          `json:"filename"`
	AlternativeText string          `json:"alternativeText"`
	Ext             string          `json:"ext"`
	URL             string          `json:"url"`
	Size            json.Number     `json:"size"`
	Mime            string          `json:"mime"`
}

// NormalizeMedia flattens file records into a list of types.Media.
// Accepted shapes:
//
//	[file, ...]
//	{"data": [file, ...]}
//	{"data": [{"attributes": {"files": {"data": [file, ...]}}}, ...]}
//
// where each file may itself be Strapi-wrapped in {id, attributes}.
// Relative URLs are resolved against assetBase; absolute URLs are kept.
func NormalizeMedia(raw json.RawMessage, assetBase string) ([]types.Media, error) {
	files, err := collectFiles(raw)
	if err != nil {
		return nil, err
	}

	out := make([]types.Media, 0, len(files))
	for _, f := range files {
		var rec mediaRecord
		if err := json.Unmarshal(flattenItem(f), &rec); err != nil {
			return nil, fmt.Errorf("decoding media record: %w", err)
		}
		out = append(out, rec.toMedia(assetBase))
	}
	return out, nil
}

func collectFiles(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []json.RawMessage
	if isArray(raw) {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decoding media list: %w", err)
		}
		return list, nil
	}

	var wrapper struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding media wrapper: %w", err)
	}

	var files []json.RawMessage
	for _, entry := range wrapper.Data {
		var nested struct {
			Attributes struct {
				Files *struct {
					Data []json.RawMessage `json:"data"`
				} `json:"files"`
			} `json:"attributes"`
		}
		if json.Unmarshal(entry, &nested) == nil && nested.Attributes.Files != nil {
			files = append(files, nested.Attributes.Files.Data...)
			continue
		}
		files = append(files, entry)
	}
	return files, nil
}

func (r mediaRecord) toMedia(assetBase string) types.Media {
	m := types.Media{
		ID:   idString(r.ID),
		Name: firstNonEmpty(r.Name, r.Filename, r.AlternativeText, DefaultMediaName),
		Ext:  strings.TrimPrefix(r.Ext, "."),
		URL:  ResolveURL(assetBase, r.URL),
		Mime: r.Mime,
	}
	if n, err := r.Size.Int64(); err == nil {
		m.Size = n
	} else if f, err := r.Size.Float64(); err == nil {
		// Strapi reports size in kilobytes with a fractional part.
		m.Size = int64(f * 1024)
	}
	if m.Ext == "" {
		m.Ext = strings.TrimPrefix(path.Ext(m.Name), ".")
	}
	if m.Mime == "" && m.Ext != "" {
		m.Mime = mime.TypeByExtension("." + m.Ext)
	}
	return m
}

// ResolveURL joins a relative u onto base. Absolute and protocol-relative
// URLs, and any URL when base is empty, are returned unchanged.
func ResolveURL(base, u string) string {
	if u == "" || base == "" {
		return u
	}
	if strings.HasPrefix(u, "//") {
		return u
	}
	if parsed, err := url.Parse(u); err == nil && parsed.IsAbs() {
		return u
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(u, "/")
}

func idString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
