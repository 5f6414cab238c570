package server

import (
	"net/http"

	"github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/jrsteele09/canvas-dashboard/roles"
	"github.com/jrsteele09/canvas-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// RequireSession loads the session into the request context. Without one the
// browser is sent to sign in; a role below every required role gets 403.
func (s *Server) RequireSession(required ...roles.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.sessions.Load(r)
			if err != nil {
				if errors.Is(err, errors.ErrSessionInvalid) {
					log.Warn().Err(err).Str("path", r.URL.Path).Msg("discarding invalid session")
					_ = s.sessions.Clear(w, r)
				}
				http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
				return
			}

			if err := authorize(session, required); err != nil {
				logError(r.Method, r.URL.Path, err.Error())
				http.Error(w, "403 - Forbidden", http.StatusForbidden)
				return
			}

			next(w, r.WithContext(sessions.WithSession(r.Context(), session)))
		}
	}
}

// authorize fails with ErrForbidden when the session's role is below every
// required role
func authorize(session sessions.Session, required []roles.Role) error {
	if len(required) == 0 || roles.CanAccess(session.Role, required...) {
		return nil
	}
	return errors.Wrapf(errors.ErrForbidden, "role %s not permitted", session.Role)
}

func (s *Server) currentSession(r *http.Request) (sessions.Session, bool) {
	if session, ok := sessions.FromContext(r.Context()); ok {
		return session, true
	}
	session, err := s.sessions.Load(r)
	if err != nil {
		return sessions.Session{}, false
	}
	return session, true
}
