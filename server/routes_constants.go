package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages
	RouteIndex            = "/{$}"
	RouteSignIn           = "/signin"
	RouteSignOut          = "/signout"
	RouteDashboard        = "/dashboard"
	RouteStudentDashboard = "/dashboard/student"
	RouteTeacherDashboard = "/dashboard/teacher"
	RouteAdvisorDashboard = "/dashboard/advisor"

	// API Routes
	RouteAPILogin   = "/api/auth/login"
	RouteAPISession = "/api/session"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
