package roles

import (
	"strings"

	"github.com/jrsteele09/canvas-dashboard/lms"
)

// Role is the dashboard role held by a signed-in user
type Role string

const (
	RoleStudent Role = "student" // Sees their own courses, grades and deadlines
	RoleTeacher Role = "teacher" // Teacher or TA on at least one course
	RoleAdvisor Role = "advisor" // Observer of one or more students
	RoleAdmin   Role = "admin"   // Recognised for access checks, never assigned at login
)

var hierarchy = map[Role]int{
	RoleAdmin:   4,
	RoleTeacher: 3,
	RoleAdvisor: 2,
	RoleStudent: 1,
}

// ParseRole decodes a stored role. Unknown values report false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := hierarchy[r]
	return r, ok
}

func (r Role) String() string {
	return string(r)
}

// Rank is the role's position in the hierarchy, 0 for unknown roles
func (r Role) Rank() int {
	return hierarchy[r]
}

// Dashboard is the landing route for the role. Admins land on the teacher view.
func (r Role) Dashboard() string {
	switch r {
	case RoleTeacher, RoleAdvisor, RoleStudent:
		return "/dashboard/" + string(r)
	case RoleAdmin:
		return "/dashboard/" + string(RoleTeacher)
	default:
		return "/dashboard/" + string(RoleStudent)
	}
}

// CanAccess reports whether role ranks at least as high as any of required
func CanAccess(role Role, required ...Role) bool {
	rank := role.Rank()
	if rank == 0 {
		return false
	}
	for _, req := range required {
		if rank >= req.Rank() {
			return true
		}
	}
	return false
}

// RoleFromEnrollments classifies a user from their enrollment records.
// Teacher or TA wins over Observer, which wins over the student default.
func RoleFromEnrollments(enrollments []lms.Enrollment) Role {
	observer := false
	for _, e := range enrollments {
		switch e.Type {
		case lms.TeacherEnrollment, lms.TaEnrollment:
			return RoleTeacher
		case lms.ObserverEnrollment:
			observer = true
		}
	}
	if observer {
		return RoleAdvisor
	}
	return RoleStudent
}
