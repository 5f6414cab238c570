package proxy_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/lms/lmsfake"
	"github.com/jrsteele09/canvas-dashboard/proxy"
	"github.com/stretchr/testify/require"
)

const token = "service-token"

func newGateway(t *testing.T) (*proxy.Gateway, *lmsfake.FakeCanvas) {
	t.Helper()
	fake := lmsfake.New(t)
	return proxy.New(fake.URL(), lms.NewHTTPClient(token, nil), ""), fake
}

func serve(g *proxy.Gateway, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) proxy.ErrorResponse {
	t.Helper()
	var e proxy.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestGateway_RelaysSuccess(t *testing.T) {
	g, fake := newGateway(t)
	fake.JSON("courses/5", map[string]any{"id": 5})

	rec := serve(g, http.MethodGet, "/api/canvas/courses/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":5}`, rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "courses/5", reqs[0].Path)
	require.Equal(t, "Bearer "+token, reqs[0].Authorization)
}

func TestGateway_UpstreamError(t *testing.T) {
	g, fake := newGateway(t)
	fake.Fail("courses/404", http.StatusNotFound, `{"errors":[{"message":"The specified resource does not exist."}]}`)

	rec := serve(g, http.MethodGet, "/api/canvas/courses/404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	e := decodeError(t, rec)
	require.Equal(t, "Canvas API error: Not Found", e.Error)
	require.Equal(t, `{"errors":[{"message":"The specified resource does not exist."}]}`, e.Details)
}

func TestGateway_QueryStringPassesThrough(t *testing.T) {
	g, fake := newGateway(t)
	fake.JSON("users/1/courses", []any{})

	rec := serve(g, http.MethodGet, "/api/canvas/users/1/courses?include[]=total_scores&per_page=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "include[]=total_scores&per_page=50", fake.Requests()[0].RawQuery)
}

func TestGateway_EscapedSegmentsStayIntact(t *testing.T) {
	g, fake := newGateway(t)
	fake.JSON("courses/5/pages/a?b", map[string]any{"url": "a?b"})

	rec := serve(g, http.MethodGet, "/api/canvas/courses/5/pages/a%3Fb", "")
	require.Equal(t, http.StatusOK, rec.Code)

	sent := fake.Requests()[0]
	require.Equal(t, "courses/5/pages/a?b", sent.Path)
	require.Empty(t, sent.RawQuery)
}

func TestGateway_ForwardsJSONBody(t *testing.T) {
	g, fake := newGateway(t)
	fake.Handle(http.MethodPost, "courses/5/assignments", lmsfake.Response{Status: http.StatusCreated, Body: `{"id":9}`})

	rec := serve(g, http.MethodPost, "/api/canvas/courses/5/assignments", `{"assignment":{"name":"Lab"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"id":9}`, rec.Body.String())

	sent := fake.Requests()[0]
	require.Equal(t, http.MethodPost, sent.Method)
	require.Equal(t, "application/json", sent.ContentType)
	require.JSONEq(t, `{"assignment":{"name":"Lab"}}`, sent.Body)
	require.Equal(t, "Bearer "+token, sent.Authorization)
}

func TestGateway_OtherVerbs(t *testing.T) {
	g, fake := newGateway(t)
	fake.Handle(http.MethodPut, "courses/5", lmsfake.Response{Status: http.StatusOK, Body: `{"id":5,"name":"Renamed"}`})
	fake.Handle(http.MethodDelete, "courses/5/assignments/9", lmsfake.Response{Status: http.StatusNoContent})

	rec := serve(g, http.MethodPut, "/api/canvas/courses/5", `{"course":{"name":"Renamed"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(g, http.MethodDelete, "/api/canvas/courses/5/assignments/9", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestGateway_InvalidRequestBody(t *testing.T) {
	g, fake := newGateway(t)

	rec := serve(g, http.MethodPost, "/api/canvas/courses/5/assignments", `{not json`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to post to Canvas API", decodeError(t, rec).Error)
	require.Empty(t, fake.Requests())
}

func TestGateway_MalformedUpstreamJSON(t *testing.T) {
	g, fake := newGateway(t)
	fake.Handle(http.MethodGet, "courses/5", lmsfake.Response{Status: http.StatusOK, Body: "<html>oops</html>"})

	rec := serve(g, http.MethodGet, "/api/canvas/courses/5", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to fetch from Canvas API", decodeError(t, rec).Error)
}

func TestGateway_TransportFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	g := proxy.New(dead.URL, lms.NewHTTPClient(token, nil), "/api/canvas")

	rec := serve(g, http.MethodGet, "/api/canvas/courses/5", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	require.Equal(t, "Failed to fetch from Canvas API", e.Error)
	require.NotEmpty(t, e.Details)
}

func TestGateway_Pattern(t *testing.T) {
	g := proxy.New("http://canvas.docker", nil, "api/lms/")
	require.Equal(t, "/api/lms", g.Prefix())
	require.Equal(t, "/api/lms/{path...}", g.Pattern())
}
