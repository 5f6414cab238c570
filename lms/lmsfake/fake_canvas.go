package lmsfake

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/canvas-dashboard/lms"
)

// Response is a canned upstream reply
type Response struct {
	Status  int
	Body    string
	Headers map[string]string
}

// Request is what the fake recorded for one call
type Request struct {
	Method        string
	Path          string // relative to /api/v1, no leading slash
	RawQuery      string
	Authorization string
	ContentType   string
	Body          string
}

// FakeCanvas is an in-process stand-in for the Canvas REST API. Routes are keyed
// by method and the path below /api/v1. A route registered with a query string
// ("courses?page=2") wins over the bare path. Unknown routes answer 404 the way
// Canvas does.
type FakeCanvas struct {
	server *httptest.Server

	lock     sync.RWMutex
	routes   map[string]Response
	requests []Request
}

// New starts a fake that is closed when the test ends
func New(t testing.TB) *FakeCanvas {
	t.Helper()
	f := &FakeCanvas{routes: make(map[string]Response)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

// URL is the host root, e.g. "http://127.0.0.1:1234"
func (f *FakeCanvas) URL() string {
	return f.server.URL
}

// APIRoot is the REST root, e.g. "http://127.0.0.1:1234/api/v1"
func (f *FakeCanvas) APIRoot() string {
	return lms.APIRoot(f.server.URL)
}

// Handle registers a raw response for method + path
func (f *FakeCanvas) Handle(method, path string, resp Response) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.routes[routeKey(method, path)] = resp
}

// JSON registers a 200 GET response encoding body
func (f *FakeCanvas) JSON(path string, body any) {
	f.Handle(http.MethodGet, path, Response{Status: http.StatusOK, Body: mustJSON(body)})
}

// Paged registers a 200 GET response with a rel="next" Link header
func (f *FakeCanvas) Paged(path string, body any, next string) {
	f.Handle(http.MethodGet, path, Response{
		Status:  http.StatusOK,
		Body:    mustJSON(body),
		Headers: map[string]string{"Link": `<` + f.APIRoot() + "/" + next + `>; rel="next"`},
	})
}

// Fail registers a non-success GET response with a plain body
func (f *FakeCanvas) Fail(path string, status int, body string) {
	f.Handle(http.MethodGet, path, Response{Status: status, Body: body})
}

// Requests returns a copy of everything received so far
func (f *FakeCanvas) Requests() []Request {
	f.lock.RLock()
	defer f.lock.RUnlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many times method + path was called
func (f *FakeCanvas) Count(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeCanvas) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, lms.APIPath), "/")

	f.lock.Lock()
	f.requests = append(f.requests, Request{
		Method:        r.Method,
		Path:          path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          string(body),
	})
	resp, ok := f.routes[routeKey(r.Method, path+"?"+r.URL.RawQuery)]
	if !ok {
		resp, ok = f.routes[routeKey(r.Method, path)]
	}
	f.lock.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"message":"The specified resource does not exist."}]}`)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}

func routeKey(method, path string) string {
	return method + " " + strings.Trim(path, "/")
}

func mustJSON(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		panic("lmsfake: " + err.Error())
	}
	return string(b)
}
