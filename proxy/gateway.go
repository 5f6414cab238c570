package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPrefix = "/api/canvas"

	contentTypeJSON = "application/json; charset=utf-8"
	fetchFailed     = "Failed to fetch from Canvas API"
	postFailed      = "Failed to post to Canvas API"
)

// ErrorResponse is the envelope written for every failed proxy call
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Gateway forwards {prefix}/{path} to {host}/api/v1/{path} with the service
// credential attached by the HTTP client's transport. Payloads are relayed, not
// interpreted.
type Gateway struct {
	rest    *resty.Client
	apiRoot string
	prefix  string
}

// New builds a gateway for the LMS at host. httpClient should come from
// lms.NewHTTPClient so the bearer token is attached.
func New(host string, httpClient *http.Client, prefix string) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Gateway{
		rest:    resty.NewWithClient(httpClient),
		apiRoot: lms.APIRoot(host),
		prefix:  "/" + strings.Trim(prefix, "/"),
	}
}

// Prefix is the mount point, e.g. "/api/canvas"
func (g *Gateway) Prefix() string {
	return g.prefix
}

// Pattern is the ServeMux pattern matching every path below the prefix
func (g *Gateway) Pattern() string {
	return g.prefix + "/{path...}"
}

func (g *Gateway) upstreamURL(r *http.Request) string {
	// Escaped so that %3F or %2F inside a segment stays inside that segment
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.EscapedPath(), g.prefix), "/")
	target := g.apiRoot + "/" + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return target
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	failure := fetchFailed
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		failure = postFailed
	}
	target := g.upstreamURL(r)

	req := g.rest.R().SetContext(r.Context())
	if hasBody(r.Method) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusInternalServerError, failure, err.Error())
			return
		}
		if len(body) > 0 {
			if !json.Valid(body) {
				writeError(w, http.StatusInternalServerError, failure, "request body is not valid JSON")
				return
			}
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
	}

	resp, err := req.Execute(r.Method, target)
	if err != nil {
		log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("proxy transport failure")
		writeError(w, http.StatusInternalServerError, failure, err.Error())
		return
	}

	status := resp.StatusCode()
	body := resp.Body()
	log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("bytes", len(body)).Msg("proxy")

	if !resp.IsSuccess() {
		writeError(w, status, "Canvas API error: "+http.StatusText(status), string(body))
		return
	}
	if len(body) == 0 {
		w.WriteHeader(status)
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusInternalServerError, failure, "upstream response is not valid JSON")
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details})
}
