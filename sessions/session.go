package sessions

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/jrsteele09/canvas-dashboard/roles"
)

const DefaultCookieName = "canvas_user_session"

// Session is the signed-in user as recorded at login. The role is frozen at
// login time and there is no expiry.
type Session struct {
	Email  string     `json:"email"`
	UserID string     `json:"userId"`
	Role   roles.Role `json:"role"`
	Name   string     `json:"name"`
}

func (s Session) validate() error {
	if s.UserID == "" {
		return apperrors.Wrapf(apperrors.ErrSessionInvalid, "missing user id")
	}
	if _, ok := roles.ParseRole(string(s.Role)); !ok {
		return apperrors.Wrapf(apperrors.ErrSessionInvalid, "unknown role %q", s.Role)
	}
	return nil
}

// Store persists the session between requests
type Store interface {
	// Load returns ErrSessionNotFound when the request carries no session and
	// ErrSessionInvalid when it carries one that cannot be trusted.
	Load(r *http.Request) (Session, error)
	Save(w http.ResponseWriter, r *http.Request, s Session) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// NewStore builds the store named by kind ("cookie" or "memory")
func NewStore(kind, cookieName, secret string) (Store, error) {
	switch strings.ToLower(kind) {
	case "", "cookie":
		return NewCookieStore(cookieName, secret)
	case "memory":
		return NewMemoryStore(cookieName), nil
	default:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "unknown session store %q", kind)
	}
}

type contextKey struct{}

// WithSession attaches s to ctx
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session placed on ctx by WithSession
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

func setCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func expireCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func readCookie(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", fmt.Errorf("[sessions] cookie %s: %w", name, apperrors.ErrSessionNotFound)
	}
	return c.Value, nil
}
