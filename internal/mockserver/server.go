// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mockserver exposes the mock engine over HTTP so a browser UI or
// curl can talk to it like the real backend.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/internal/metrics"
	"github.com/pdiddy/research-admin/internal/mockapi"
)

// DefaultMaxBody bounds JSON bodies and multipart forms.
const DefaultMaxBody = 32 << 20

// Backend answers mock calls. *mockapi.Engine satisfies it.
type Backend interface {
	Serve(ctx context.Context, call mockapi.Call) mockapi.Reply
}

// Options configure the handler.
type Options struct {
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	MaxBody  int64
	Log      zerolog.Logger
}

type server struct {
	backend Backend
	maxBody int64
	log     zerolog.Logger
}

// New returns the HTTP handler: /healthz, /metrics and a catch-all that
// forwards every other request to backend.
func New(backend Backend, opts Options) http.Handler {
	s := &server{backend: backend, maxBody: opts.MaxBody, log: opts.Log}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBody
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))
	}
	r.HandleFunc("/*", s.dispatch)
	return r
}

func (s *server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("elapsed", time.Since(start)).
			Msg("mock request")
	})
}

func (s *server) dispatch(w http.ResponseWriter, r *http.Request) {
	call, err := s.toCall(w, r)
	if err != nil {
		s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejecting mock request")
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "message": err.Error(), "data": nil})
		return
	}
	reply := s.backend.Serve(r.Context(), call)
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, reply.Body)
}

// toCall converts r. Multipart forms become FileMeta entries plus a JSON
// object of the plain form values.
func (s *server) toCall(w http.ResponseWriter, r *http.Request) (mockapi.Call, error) {
	call := mockapi.Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.maxBody); err != nil {
			return call, errors.New("malformed multipart body")
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		for field, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				call.Files = append(call.Files, mockapi.FileMeta{Field: field, Name: fh.Filename, Size: fh.Size})
			}
		}
		values := map[string]string{}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				values[k] = vs[0]
			}
		}
		if len(values) > 0 {
			data, err := json.Marshal(values)
			if err != nil {
				return call, err
			}
			call.Body = data
		}
		return call, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return call, errors.New("request body too large")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return call, nil
	}
	if !json.Valid(data) {
		return call, errors.New("request body is not valid JSON")
	}
	call.Body = data
	return call, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, ok := body.(json.RawMessage)
	if !ok {
		var err error
		if data, err = json.Marshal(body); err != nil {
			status = http.StatusInternalServerError
			data = []byte(`{"code":500,"message":"encoding reply failed","data":null}`)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
