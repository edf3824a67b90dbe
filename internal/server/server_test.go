package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/avatarstack/pkg/cache"
	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/observability"
	"github.com/matzehuels/avatarstack/pkg/pipeline"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
)

const teamJSON = `{
  "size": 64,
  "elements": [
    {"id": 1, "label": "Ada", "color": "#ff0000"},
    {"label": "Grace"}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{Runner: pipeline.NewRunner(c, nil, logger), Logger: logger, MaxBodyBytes: 4096})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)

	get := func() *http.Response {
		resp, err := http.Get(ts.URL + "/v1/layout?size=100&count=3&fit=start&gap=0.5")
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp := get()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(HeaderCache) != "MISS" {
		t.Errorf("first request %s = %q", HeaderCache, resp.Header.Get(HeaderCache))
	}
	var l sink.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if len(l.Slots) != 3 || l.Fit != "start" || l.Gap != 0.5 {
		t.Errorf("layout = %+v", l)
	}

	again := get()
	again.Body.Close()
	if again.Header.Get(HeaderCache) != "HIT" {
		t.Errorf("second request %s = %q", HeaderCache, again.Header.Get(HeaderCache))
	}
}

func TestLayoutDefaults(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/layout")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var l sink.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if l.Width != 128 || len(l.Slots) != 1 || l.Fit != "center" {
		t.Errorf("defaults = %+v", l)
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		query string
		code  apperr.Code
	}{
		{"count=abc", apperr.ErrCodeInvalidInput},
		{"count=9", apperr.ErrCodeInvalidInput},
		{"size=-5", apperr.ErrCodeInvalidSize},
		{"gap=x", apperr.ErrCodeInvalidInput},
		{"fit=cover", apperr.ErrCodeInvalidFit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/v1/layout?" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			e := decodeError(t, resp)
			if e.Code != string(tt.code) {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
			if e.RequestID == "" {
				t.Error("error response should carry the request id")
			}
		})
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"svg", "image/svg+xml", "<?xml"},
		{"png", "image/png", "\x89PNG"},
		{"json", "application/json", "{"},
		{"dot", "text/vnd.graphviz", "digraph"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/render?format="+tt.format, "application/json", strings.NewReader(teamJSON))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q", got)
			}
			if _, err := uuid.Parse(resp.Header.Get(HeaderRenderID)); err != nil {
				t.Errorf("%s = %q", HeaderRenderID, resp.Header.Get(HeaderRenderID))
			}
			if !strings.HasPrefix(string(body), tt.prefix) {
				t.Errorf("body starts %q, want %q", string(body[:min(len(body), 16)]), tt.prefix)
			}
		})
	}
}

func TestRenderCacheHeader(t *testing.T) {
	ts := newTestServer(t)
	post := func() string {
		resp, err := http.Post(ts.URL+"/v1/render", "application/json", strings.NewReader(teamJSON))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.Header.Get(HeaderCache)
	}
	if got := post(); got != "MISS" {
		t.Errorf("first render %s = %q", HeaderCache, got)
	}
	if got := post(); got != "HIT" {
		t.Errorf("second render %s = %q", HeaderCache, got)
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   apperr.Code
	}{
		{"bad format", "format=gif", teamJSON, http.StatusBadRequest, apperr.ErrCodeInvalidFormat},
		{"bad json", "", "{", http.StatusBadRequest, apperr.ErrCodeInvalidScene},
		{"unknown field", "", `{"colour": "#fff"}`, http.StatusBadRequest, apperr.ErrCodeInvalidScene},
		{"too many", "", `{"elements": [{},{},{},{},{},{}]}`, http.StatusBadRequest, apperr.ErrCodeInvalidScene},
		{"image", "", `{"elements": [{"image": "a.png"}]}`, http.StatusUnsupportedMediaType, apperr.ErrCodeUnsupported},
		{"scale", "scale=abc", teamJSON, http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"too large", "", `{"elements": [{"label": "` + strings.Repeat("x", 5000) + `"}]}`, http.StatusRequestEntityTooLarge, apperr.ErrCodeInvalidScene},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/render?"+tt.query, "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != string(tt.code) {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestRenderMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/render")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.ErrCodeInvalidSize, "x"), http.StatusBadRequest},
		{apperr.New(apperr.ErrCodeUnsupported, "x"), http.StatusUnsupportedMediaType},
		{apperr.New(apperr.ErrCodeFileNotFound, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{Logger: log.NewWithOptions(io.Discard, log.Options{})})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type sceneLoadHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	loads  []int
	failed int
}

func (h *sceneLoadHooks) OnSceneLoad(_ context.Context, source string, elements int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.failed++
		return
	}
	h.loads = append(h.loads, elements)
}

func TestRenderReportsSceneLoad(t *testing.T) {
	hooks := &sceneLoadHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	for _, body := range []string{teamJSON, "{"} {
		resp, err := http.Post(ts.URL+"/v1/render", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.loads) != 1 || hooks.loads[0] != 2 || hooks.failed != 1 {
		t.Errorf("scene loads = %v, failed %d", hooks.loads, hooks.failed)
	}
}
