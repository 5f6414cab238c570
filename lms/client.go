package lms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tomnomnom/linkheader"
)

const defaultMaxPages = 10

// Client issues typed calls against the LMS REST surface. The base URL is either
// the upstream API root ("{host}/api/v1") or the dashboard's same-origin proxy
// prefix ("http://localhost:8080/api/canvas").
type Client struct {
	rest     *resty.Client
	maxPages int
	nowTime  func() time.Time
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithMaxPages caps how many Link: rel="next" pages a list call follows
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// NewClient creates a client over httpClient. Use NewHTTPClient to get one that
// carries the service credential.
func NewClient(baseURL string, httpClient *http.Client, options ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	rest := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{})

	c := &Client{
		rest:     rest,
		maxPages: defaultMaxPages,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// get fetches a single JSON document into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		return errors.Wrapf(err, "[lms get] %s", path)
	}
	if !resp.IsSuccess() {
		return newAPIError(path, resp)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidResponse, "[lms get] %s: %s", path, err.Error())
	}
	log.Debug().Str("path", path).Int("status", resp.StatusCode()).Msg("lms response")
	return nil
}

// list fetches a JSON array, following rel="next" links up to the client's page cap
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	all := make([]T, 0)
	next := path
	for page := 0; next != "" && page < c.maxPages; page++ {
		resp, err := c.rest.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Get(next)
		if err != nil {
			return nil, errors.Wrapf(err, "[lms list] %s", path)
		}
		if !resp.IsSuccess() {
			return nil, newAPIError(path, resp)
		}

		var items []T
		if err := json.Unmarshal(resp.Body(), &items); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidResponse, "[lms list] %s: %s", path, err.Error())
		}
		all = append(all, items...)

		// next links already carry the full query string
		next = nextPage(resp.Header().Get("Link"))
		query = nil
	}
	log.Debug().Str("path", path).Int("count", len(all)).Msg("lms list response")
	return all, nil
}

func nextPage(header string) string {
	if header == "" {
		return ""
	}
	for _, link := range linkheader.Parse(header).FilterByRel("next") {
		if link.URL != "" {
			return link.URL
		}
	}
	return ""
}

func newAPIError(path string, resp *resty.Response) *APIError {
	return &APIError{
		Path:       path,
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       resp.String(),
	}
}

type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	log.Error().Msgf("[resty] "+format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	log.Warn().Msgf("[resty] "+format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	log.Debug().Msgf("[resty] "+format, v...)
}
