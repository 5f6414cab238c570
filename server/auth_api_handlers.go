package server

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/roles"
	"github.com/jrsteele09/canvas-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

type loginRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

type loginResponse struct {
	Success bool           `json:"success"`
	User    roles.Identity `json:"user"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// loginFailure maps a resolver error onto the status, message and details
// reported to the caller
func loginFailure(err error) (int, string, string) {
	if apperrors.Is(err, apperrors.ErrEmailRequired) {
		return http.StatusBadRequest, "Email is required", ""
	}
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return http.StatusNotFound, "User not found", ""
	}
	if apiErr, ok := lms.AsAPIError(err); ok {
		message := "Failed to search user in Canvas"
		if strings.HasSuffix(apiErr.Path, "/enrollments") {
			message = "Failed to fetch user enrollments"
		}
		return apiErr.StatusCode, message, apiErr.Body
	}
	return http.StatusInternalServerError, "Internal server error", err.Error()
}

func sessionFor(identity roles.Identity) sessions.Session {
	return sessions.Session{
		Email:  identity.Email,
		UserID: identity.ID,
		Role:   identity.Role,
		Name:   identity.Name,
	}
}

// LoginAPIHandler resolves {email} to an LMS identity and starts a session
func (s *Server) LoginAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			err = apperrors.Wrapf(apperrors.ErrInvalidRequest, "[LoginAPIHandler] %s", err.Error())
			log.Err(err).Msg("login rejected")
			writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			writeJSONError(w, http.StatusBadRequest, "Email is required", "")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		identity, err := s.resolver.Resolve(r.Context(), req.Email)
		if err != nil {
			status, message, details := loginFailure(err)
			log.Err(err).Int("status", status).Msg("login failed")
			writeJSONError(w, status, message, details)
			return
		}

		if err := s.sessions.Save(w, r, sessionFor(identity)); err != nil {
			log.Err(err).Str("user_id", identity.ID).Msg("failed to save session")
			writeJSONError(w, http.StatusInternalServerError, "Internal server error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{Success: true, User: identity})
	}
}

// SessionGetHandler reports the signed-in user
func (s *Server) SessionGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Load(r)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Not signed in", "")
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// SessionDeleteHandler signs the user out
func (s *Server) SessionDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.endSession(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

// endSession clears the stored session and the user's cached reads
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if session, err := s.sessions.Load(r); err == nil {
		s.hooks.ForgetUser(session.UserID)
	}
	if err := s.sessions.Clear(w, r); err != nil {
		log.Err(err).Msg("failed to clear session")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}
