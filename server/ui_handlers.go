package server

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"
	"github.com/jrsteele09/canvas-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// SignInPageData contains data for rendering the sign-in page
type SignInPageData struct {
	AppName   string
	CSRFToken string
	Error     string
	Email     string // Preserve email on error
}

type dashboardPageData struct {
	AppName string
	Title   string
	Session sessions.Session
	View    any
}

// IndexHandler sends a signed-in user to their dashboard and everyone else to sign in
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.currentSession(r)
		if !ok {
			http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, session.Role.Dashboard(), http.StatusSeeOther)
	}
}

// SignInPageHandler displays the sign-in form (GET /signin)
func (s *Server) SignInPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("signin.html")
	if err != nil {
		panic("Failed to parse signin template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if session, ok := s.currentSession(r); ok {
			http.Redirect(w, r, session.Role.Dashboard(), http.StatusSeeOther)
			return
		}

		data := SignInPageData{
			AppName:   s.config.GetAppName(),
			CSRFToken: csrf.Token(r),
			Error:     r.URL.Query().Get("error"),
			Email:     r.URL.Query().Get("email"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render signin template")
			http.Error(w, "Failed to render sign in page", http.StatusInternalServerError)
		}
	}
}

// SignInSubmitHandler processes the sign-in form submission (POST /signin)
func (s *Server) SignInSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := r.FormValue("email")

		identity, err := s.resolver.Resolve(r.Context(), email)
		if err != nil {
			status, message, _ := loginFailure(err)
			log.Err(err).Int("status", status).Msg("sign in failed")
			redirectWithError(w, r, message, email)
			return
		}

		if err := s.sessions.Save(w, r, sessionFor(identity)); err != nil {
			log.Err(err).Str("user_id", identity.ID).Msg("failed to save session")
			redirectWithError(w, r, "Internal server error", email)
			return
		}

		http.Redirect(w, r, identity.Role.Dashboard(), http.StatusSeeOther)
	}
}

// SignOutHandler clears the session and returns to the sign-in page
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.endSession(w, r)
		http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
	}
}

// DashboardRedirectHandler sends the user to the dashboard for their role
func (s *Server) DashboardRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessions.FromContext(r.Context())
		http.Redirect(w, r, session.Role.Dashboard(), http.StatusSeeOther)
	}
}

func (s *Server) StudentDashboardHandler() http.HandlerFunc {
	tmpl := mustParseDashboard("student.html")
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessions.FromContext(r.Context())
		s.renderDashboard(w, tmpl, "Student Dashboard", session, s.dashboards.BuildStudent(r.Context(), session))
	}
}

func (s *Server) TeacherDashboardHandler() http.HandlerFunc {
	tmpl := mustParseDashboard("teacher.html")
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessions.FromContext(r.Context())
		s.renderDashboard(w, tmpl, "Teacher Dashboard", session, s.dashboards.BuildTeacher(r.Context(), session))
	}
}

func (s *Server) AdvisorDashboardHandler() http.HandlerFunc {
	tmpl := mustParseDashboard("advisor.html")
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessions.FromContext(r.Context())
		s.renderDashboard(w, tmpl, "Advisor Dashboard", session, s.dashboards.BuildAdvisor(r.Context(), session))
	}
}

func mustParseDashboard(page string) *template.Template {
	tmpl, err := ParseTemplate("layout.html", page)
	if err != nil {
		panic("Failed to parse " + page + " template: " + err.Error())
	}
	return tmpl
}

func (s *Server) renderDashboard(w http.ResponseWriter, tmpl *template.Template, title string, session sessions.Session, view any) {
	data := dashboardPageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Session: session,
		View:    view,
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Err(err).Str("title", title).Msg("Failed to render dashboard")
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
	}
}

// redirectWithError returns to the sign-in page with an error message
func redirectWithError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := RouteSignIn + "?error=" + url.QueryEscape(errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}
