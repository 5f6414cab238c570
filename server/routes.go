package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/jrsteele09/canvas-dashboard/roles"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// SIGN IN / OUT
	s.RegisterRouteFunc("GET "+RouteSignIn, ChainMiddleware(s.SignInPageHandler(), s.HTMLMiddleWare(s.CSRFMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteSignIn, ChainMiddleware(s.SignInSubmitHandler(), s.HTMLMiddleWare(s.CSRFMiddleware)...))
	s.RegisterRouteFunc("GET "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare()...))

	// Dashboards (require a session, and a role at least as high as the view's)
	s.RegisterRouteFunc("GET "+RouteDashboard, ChainMiddleware(s.DashboardRedirectHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteFunc("GET "+RouteStudentDashboard, ChainMiddleware(s.StudentDashboardHandler(), s.HTMLMiddleWare(s.RequireSession(roles.RoleStudent))...))
	s.RegisterRouteFunc("GET "+RouteTeacherDashboard, ChainMiddleware(s.TeacherDashboardHandler(), s.HTMLMiddleWare(s.RequireSession(roles.RoleTeacher))...))
	s.RegisterRouteFunc("GET "+RouteAdvisorDashboard, ChainMiddleware(s.AdvisorDashboardHandler(), s.HTMLMiddleWare(s.RequireSession(roles.RoleAdvisor))...))

	// API routes
	s.RegisterRouteFunc("POST "+RouteAPILogin, ChainMiddleware(s.LoginAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAPISession, ChainMiddleware(s.SessionGetHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("DELETE "+RouteAPISession, ChainMiddleware(s.SessionDeleteHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS "+RouteAPILogin, ChainMiddleware(preflightHandler, s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS "+RouteAPISession, ChainMiddleware(preflightHandler, s.APIMiddleware()...))

	// LMS proxy, every method
	s.RegisterRouteFunc(s.gateway.Pattern(), ChainMiddleware(s.gateway.ServeHTTP, s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
}

// preflightHandler answers OPTIONS without an Origin; CorsMiddleware answers the rest
func preflightHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if errors.Is(err, errors.ErrNotFound) {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}
