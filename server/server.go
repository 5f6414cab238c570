package server

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/jrsteele09/canvas-dashboard/dashboards"
	"github.com/jrsteele09/canvas-dashboard/hooks"
	"github.com/jrsteele09/canvas-dashboard/internal/config"
	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/proxy"
	"github.com/jrsteele09/canvas-dashboard/roles"
	"github.com/jrsteele09/canvas-dashboard/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

const csrfKeyInfo = "canvas-dashboard csrf v1"

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	sessions   sessions.Store
	resolver   *roles.Resolver
	hooks      *hooks.Hooks
	dashboards *dashboards.Builder
	gateway    *proxy.Gateway
	csrf       func(http.Handler) http.Handler
	validate   *validator.Validate
}

type serverOptions struct {
	nowTime   func() time.Time
	store     sessions.Store
	transport http.RoundTripper
}

// Option defines a function type to modify how the Server is assembled.
type Option func(*serverOptions)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(o *serverOptions) {
		o.nowTime = nowFunc
	}
}

// WithSessionStore replaces the store named by SESSION_STORE
func WithSessionStore(store sessions.Store) Option {
	return func(o *serverOptions) {
		o.store = store
	}
}

// WithTransport sets the base transport used for upstream LMS calls
func WithTransport(rt http.RoundTripper) Option {
	return func(o *serverOptions) {
		o.transport = rt
	}
}

// New wires the LMS client, proxy, resolver, session store and dashboards from cfg
func New(cfg config.Config, options ...Option) (*Server, error) {
	opts := serverOptions{nowTime: time.Now}
	for _, opt := range options {
		opt(&opts)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Server New] invalid configuration")
	}

	store := opts.store
	if store == nil {
		var err error
		store, err = sessions.NewStore(cfg.GetSessionStore(), cfg.GetSessionCookieName(), cfg.GetSessionSecret())
		if err != nil {
			return nil, errors.Wrap(err, "[Server New] failed to create session store")
		}
	}

	csrfKey, err := deriveKey(cfg.GetCSRFKey(), csrfKeyInfo)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to derive csrf key")
	}

	httpClient := lms.NewHTTPClient(cfg.GetLMSToken(), opts.transport)
	client := lms.NewClient(
		lms.APIRoot(cfg.GetLMSBaseURL()),
		httpClient,
		lms.WithMaxPages(cfg.GetLMSMaxPages()),
		lms.WithNowTime(opts.nowTime),
	)
	h := hooks.New(client, hooks.NewCache(cfg.GetCacheTTL()))

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: store,
		resolver: roles.NewResolver(client, cfg.GetLMSAccountID()),
		hooks:    h,
		dashboards: dashboards.NewBuilder(h,
			dashboards.WithNowTime(opts.nowTime),
			dashboards.WithRiskThreshold(cfg.GetRiskThreshold()),
		),
		gateway:  proxy.New(cfg.GetLMSBaseURL(), httpClient, cfg.GetProxyPrefix()),
		validate: validator.New(),
	}
	s.csrf = csrf.Protect(csrfKey,
		csrf.Secure(s.env != "DEV"),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailureHandler)),
	)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered mux patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("ANY", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", colourMethod(method), path, Red+error+ResetColor)
}

// deriveKey stretches secret into a 32 byte key. An empty secret gets a random
// key, which does not survive a restart.
func deriveKey(secret, info string) ([]byte, error) {
	ikm := []byte(secret)
	if secret == "" {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, err
		}
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(info)), key); err != nil {
		return nil, err
	}
	return key, nil
}
