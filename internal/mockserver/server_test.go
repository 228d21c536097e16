// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-admin/internal/metrics"
	"github.com/pdiddy/research-admin/internal/mockapi"
)

// recordingBackend remembers the last call and echoes a fixed reply.
type recordingBackend struct {
	mu    sync.Mutex
	last  mockapi.Call
	reply mockapi.Reply
}

func (b *recordingBackend) Serve(_ context.Context, c mockapi.Call) mockapi.Reply {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = c
	return b.reply
}

func (b *recordingBackend) lastCall() mockapi.Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(New(&recordingBackend{}, Options{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestDispatchForwardsJSONCall(t *testing.T) {
	backend := &recordingBackend{reply: mockapi.Reply{Status: http.StatusCreated, Body: map[string]any{"code": 200}}}
	srv := httptest.NewServer(New(backend, Options{}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/results?page=2", strings.NewReader(`{"title":"x"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))

	call := backend.lastCall()
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/api/results", call.Path)
	assert.Equal(t, "2", call.Query.Get("page"))
	assert.JSONEq(t, `{"title":"x"}`, string(call.Body))
	assert.Equal(t, "Bearer tok", call.Header.Get("Authorization"))
}

func TestDispatchRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(New(&recordingBackend{}, Options{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/results", "application/json", strings.NewReader(`{nope`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var env struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, 400, env.Code)
}

func TestDispatchMultipart(t *testing.T) {
	backend := &recordingBackend{}
	srv := httptest.NewServer(New(backend, Options{}))
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("resultId", "r-001"))
	fw, err := mw.CreateFormFile("file", "paper.pdf")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("x"), 1234))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	call := backend.lastCall()
	require.Len(t, call.Files, 1)
	assert.Equal(t, mockapi.FileMeta{Field: "file", Name: "paper.pdf", Size: 1234}, call.Files[0])
	assert.JSONEq(t, `{"resultId":"r-001"}`, string(call.Body))
}

func TestServesEngineEndToEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine, err := mockapi.NewEngine(mockapi.Options{Metrics: metrics.NewCollector(reg)})
	require.NoError(t, err)
	srv := httptest.NewServer(New(engine, Options{Gatherer: reg}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"username":"admin","password":"admin123"}`))
	require.NoError(t, err)
	var login struct {
		Code int `json:"code"`
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	require.Equal(t, 200, login.Code)
	require.NotEmpty(t, login.Data.Token)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/current", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/nowhere")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `research_admin_mock_requests_total{route="auth.login",status="200"} 1`)
	assert.Contains(t, string(body), `route="unmatched",status="404"`)
}
