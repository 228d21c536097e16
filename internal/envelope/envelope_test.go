// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-admin/internal/apperr"
	"github.com/pdiddy/research-admin/pkg/types"
)

func TestDecodeShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		shape    Shape
		code     string
		hasMeta  bool
		wantData string
	}{
		{"business numeric code", `{"code":200,"message":"ok","data":{"id":"r-001"}}`, ShapeBusiness, "200", false, `{"id":"r-001"}`},
		{"business string code", `{"code":"0","message":"ok","data":[1,2]}`, ShapeBusiness, "0", false, `[1,2]`},
		{"business without data", `{"code":500,"message":"boom"}`, ShapeBusiness, "500", false, `null`},
		{"strapi collection", `{"data":[{"id":1}],"meta":{"pagination":{"page":1,"pageSize":10,"pageCount":1,"total":1}}}`, ShapeCollection, "", true, `[{"id":1}]`},
		{"strapi single", `{"data":{"id":1},"meta":{}}`, ShapeCollection, "", true, `{"id":1}`},
		{"raw object", `{"records":[],"total":0}`, ShapeRaw, "", false, ``},
		{"data beside other members", `{"status":"ok","data":"hello","version":2}`, ShapeRaw, "", false, ``},
		{"raw array", `[1,2,3]`, ShapeRaw, "", false, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.shape, env.Shape)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.hasMeta, env.Meta != nil)
			if tt.wantData != "" {
				assert.JSONEq(t, tt.wantData, string(env.Data))
			}
			assert.JSONEq(t, tt.body, string(env.Body))
		})
	}
}

func TestNormalizeKeepsObjectWithDataMember(t *testing.T) {
	body := `{"status":"ok","data":"hello","version":2}`
	env, err := Decode([]byte(body))
	require.NoError(t, err)

	res, err := Normalize(env, Fallback{})
	require.NoError(t, err)
	assert.False(t, res.IsPage())
	assert.JSONEq(t, body, string(res.Data))
}

func TestDecodeEmptyAndInvalid(t *testing.T) {
	env, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, ShapeRaw, env.Shape)

	_, err = Decode([]byte(`{"code":`))
	require.Error(t, err)
}

func TestSuccessCodeSet(t *testing.T) {
	for _, code := range []string{`200`, `"200"`, `0`, `"0"`, `1`, `"1"`} {
		t.Run(code, func(t *testing.T) {
			env, err := Decode([]byte(`{"code":` + code + `,"message":"ok","data":{"n":7}}`))
			require.NoError(t, err)
			assert.True(t, env.Succeeded())

			res, err := Normalize(env, Fallback{})
			require.NoError(t, err)
			assert.JSONEq(t, `{"n":7}`, string(res.Data))
		})
	}

	for _, code := range []string{`400`, `"401"`, `2`, `"E_QUOTA"`, `-1`} {
		t.Run("reject "+code, func(t *testing.T) {
			env, err := Decode([]byte(`{"code":` + code + `,"message":"nope","data":null}`))
			require.NoError(t, err)
			assert.False(t, env.Succeeded())

			_, err = Normalize(env, Fallback{})
			require.Error(t, err)
			ae, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindBusiness, ae.Kind)
			assert.Equal(t, env.Code, ae.Code)
			assert.Equal(t, "nope", ae.Message)
		})
	}
}

func normalizeBody(t *testing.T, body string, fb Fallback) Result {
	t.Helper()
	env, err := Decode([]byte(body))
	require.NoError(t, err)
	res, err := Normalize(env, fb)
	require.NoError(t, err)
	return res
}

func TestNormalizePageShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		fb   Fallback
		want types.Page[int]
	}{
		{
			name: "business list page",
			body: `{"code":200,"message":"ok","data":{"list":[1,2,3],"total":23,"page":3,"pageSize":10}}`,
			want: types.Page[int]{List: []int{1, 2, 3}, Total: 23, Page: 3, PageSize: 10},
		},
		{
			name: "business records page",
			body: `{"code":0,"data":{"records":[4,5],"total":"12","current":2,"size":2}}`,
			want: types.Page[int]{List: []int{4, 5}, Total: 12, Page: 2, PageSize: 2},
		},
		{
			name: "strapi collection with pagination",
			body: `{"data":[7,8],"meta":{"pagination":{"page":2,"pageSize":2,"pageCount":3,"total":6}}}`,
			want: types.Page[int]{List: []int{7, 8}, Total: 6, Page: 2, PageSize: 2},
		},
		{
			name: "strapi collection without meta uses fallback",
			body: `{"data":[7,8,9]}`,
			fb:   Fallback{Page: 4, PageSize: 25},
			want: types.Page[int]{List: []int{7, 8, 9}, Total: 3, Page: 4, PageSize: 25},
		},
		{
			name: "strapi collection without meta or fallback",
			body: `{"data":[]}`,
			want: types.Page[int]{List: []int{}, Total: 0, Page: 1, PageSize: 0},
		},
		{
			name: "raw page without envelope",
			body: `{"list":[1],"total":1}`,
			want: types.Page[int]{List: []int{1}, Total: 1, Page: 1, PageSize: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := normalizeBody(t, tt.body, tt.fb)
			require.True(t, res.IsPage())
			got, err := PageOf[int](res, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIsIdempotentOnCanonicalPages(t *testing.T) {
	canonical := `{"list":[{"id":"a"},{"id":"b"}],"total":23,"page":3,"pageSize":10}`

	first := normalizeBody(t, canonical, Fallback{})
	require.True(t, first.IsPage())
	assert.JSONEq(t, canonical, string(first.Data))

	second := normalizeBody(t, string(first.Data), Fallback{})
	assert.JSONEq(t, string(first.Data), string(second.Data))
	assert.Equal(t, first.Page, second.Page)
}

func TestNormalizePassthrough(t *testing.T) {
	body := `{"status":"ok","version":"2.1","list":"not an array"}`
	res := normalizeBody(t, body, Fallback{})
	assert.False(t, res.IsPage())
	assert.JSONEq(t, body, string(res.Data))

	arr := normalizeBody(t, `[{"id":1}]`, Fallback{})
	assert.False(t, arr.IsPage())
	page, err := PageOf[map[string]int](arr, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = PageOf[int](res, nil)
	assert.ErrorIs(t, err, ErrNotPage)
}

func TestNormalizeFlattensStrapiItems(t *testing.T) {
	res := normalizeBody(t, `{"data":[{"id":3,"attributes":{"type_name":"Paper","is_delete":0}}],"meta":{"pagination":{"page":1,"pageSize":10,"pageCount":1,"total":1}}}`, Fallback{})
	page, err := PageOf[types.AchievementType](res, nil)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, 3, page.List[0].ID)
	assert.Equal(t, "Paper", page.List[0].TypeName)

	single := normalizeBody(t, `{"data":{"id":9,"attributes":{"type_code":"patent"}},"meta":{}}`, Fallback{})
	at, err := Into[types.AchievementType](single)
	require.NoError(t, err)
	assert.Equal(t, 9, at.ID)
	assert.Equal(t, "patent", at.TypeCode)
}

func TestPageOfAppliesMapper(t *testing.T) {
	res := normalizeBody(t, `{"code":200,"data":{"list":[{"id":"r-1","status":"UNDER_REVIEW"}],"total":1,"page":1,"pageSize":10}}`, Fallback{})
	page, err := PageOf(res, func(r types.Result) types.Result {
		r.Status = ClientStatus(r.Status)
		return r
	})
	require.NoError(t, err)
	assert.Equal(t, "reviewing", page.List[0].Status)
}

func TestIntoNull(t *testing.T) {
	res := normalizeBody(t, `{"code":200,"message":"ok","data":null}`, Fallback{})
	got, err := Into[*types.ResultType](res)
	require.NoError(t, err)
	assert.Nil(t, got)

	var raw json.RawMessage
	raw, err = Into[json.RawMessage](normalizeBody(t, `{"code":1,"data":{"x":1}}`, Fallback{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(raw))
}
