package lms

import (
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// APIPath is the upstream REST root appended to the LMS host
const APIPath = "/api/v1"

// NewHTTPClient returns an HTTP client that attaches the service credential as a
// bearer token on every request. No timeout is set beyond the transport default.
func NewHTTPClient(token string, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   base,
		},
	}
}

// APIRoot joins the LMS host with the REST root, e.g. "https://canvas.example.edu/api/v1"
func APIRoot(host string) string {
	return strings.TrimRight(host, "/") + APIPath
}
