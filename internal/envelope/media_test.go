// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-admin/pkg/types"
)

const assetBase = "https://assets.example.edu"

func TestNormalizeMediaFlatArray(t *testing.T) {
	raw := json.RawMessage(`[
		{"id":"att-1","name":"report.pdf","url":"/uploads/report.pdf","size":2048},
		{"id":7,"filename":"scan.png","url":"https://cdn.example.com/scan.png","size":10,"mime":"image/png"},
		{"id":8,"url":"uploads/blob"}
	]`)
	got, err := NormalizeMedia(raw, assetBase)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, types.Media{
		ID: "att-1", Name: "report.pdf", Ext: "pdf",
		URL: "https://assets.example.edu/uploads/report.pdf", Size: 2048, Mime: "application/pdf",
	}, got[0])
	assert.Equal(t, "7", got[1].ID)
	assert.Equal(t, "https://cdn.example.com/scan.png", got[1].URL)
	assert.Equal(t, "image/png", got[1].Mime)
	assert.Equal(t, DefaultMediaName, got[2].Name)
	assert.Equal(t, "https://assets.example.edu/uploads/blob", got[2].URL)
}

func TestNormalizeMediaNestedStrapi(t *testing.T) {
	raw := json.RawMessage(`{"data":[
		{"id":1,"attributes":{"files":{"data":[
			{"id":11,"attributes":{"name":"a.pdf","ext":".pdf","url":"/uploads/a.pdf","size":12,"mime":"application/pdf"}},
			{"id":12,"attributes":{"alternativeText":"diagram","url":"//cdn.example.com/d.svg"}}
		]}}},
		{"id":2,"attributes":{"files":{"data":[]}}}
	]}`)
	got, err := NormalizeMedia(raw, assetBase)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "11", got[0].ID)
	assert.Equal(t, "pdf", got[0].Ext)
	assert.Equal(t, "https://assets.example.edu/uploads/a.pdf", got[0].URL)
	assert.Equal(t, "diagram", got[1].Name)
	assert.Equal(t, "//cdn.example.com/d.svg", got[1].URL)
}

func TestNormalizeMediaEmpty(t *testing.T) {
	got, err := NormalizeMedia(nil, assetBase)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NormalizeMedia(json.RawMessage(`{"data":null}`), assetBase)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveURL(t *testing.T) {
	tests := []struct{ base, in, want string }{
		{"https://a.example/", "/x.pdf", "https://a.example/x.pdf"},
		{"https://a.example", "x.pdf", "https://a.example/x.pdf"},
		{"https://a.example", "http://b.example/x.pdf", "http://b.example/x.pdf"},
		{"", "/x.pdf", "/x.pdf"},
		{"https://a.example", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveURL(tt.base, tt.in), tt.in)
	}
}
