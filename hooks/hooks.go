package hooks

import (
	"context"

	"github.com/jrsteele09/canvas-dashboard/lms"
)

// Source is the LMS surface the hooks read from
type Source interface {
	GetUserCourses(ctx context.Context, userID string) ([]lms.Course, error)
	GetCourseAssignments(ctx context.Context, courseID int64) ([]lms.Assignment, error)
	GetCourseStudents(ctx context.Context, courseID int64) ([]lms.Enrollment, error)
	GetObservees(ctx context.Context, userID string) ([]lms.User, error)
	GetUpcomingEvents(ctx context.Context, userID string) (lms.PartialResult[lms.UpcomingAssignment], error)
	GetAllSubmissionsForUser(ctx context.Context, userID string) (lms.PartialResult[lms.Submission], error)
	GetTeachingCourses(ctx context.Context, userID string) (lms.PartialResult[lms.Course], error)
}

// Hooks are the keyed, cached reads the dashboards are built from
type Hooks struct {
	source Source
	cache  *Cache
}

func New(source Source, cache *Cache) *Hooks {
	if cache == nil {
		cache = NewCache(DefaultCacheTime)
	}
	return &Hooks{source: source, cache: cache}
}

// Cache exposes the underlying cache, e.g. for invalidation on sign-out
func (h *Hooks) Cache() *Cache {
	return h.cache
}

// ForgetUser drops the entries keyed by userID. Course scoped entries are
// shared between users and left to expire.
func (h *Hooks) ForgetUser(userID string) {
	h.cache.Delete(
		Key{"courses", userID},
		Key{"events", userID},
		Key{"submissions", userID},
		Key{"teacher-courses", userID},
		Key{"observees", userID},
	)
}

func (h *Hooks) UserCourses(ctx context.Context, userID string) Result[[]lms.Course] {
	return Use(ctx, h.cache, Query[[]lms.Course]{
		Key:     Key{"courses", userID},
		Enabled: userID != "",
		Fetch: func(ctx context.Context) ([]lms.Course, error) {
			return h.source.GetUserCourses(ctx, userID)
		},
	})
}

func (h *Hooks) CourseAssignments(ctx context.Context, courseID int64) Result[[]lms.Assignment] {
	return Use(ctx, h.cache, Query[[]lms.Assignment]{
		Key:     Key{"assignments", courseID},
		Enabled: courseID != 0,
		Fetch: func(ctx context.Context) ([]lms.Assignment, error) {
			return h.source.GetCourseAssignments(ctx, courseID)
		},
	})
}

func (h *Hooks) UpcomingEvents(ctx context.Context, userID string) Result[lms.PartialResult[lms.UpcomingAssignment]] {
	return Use(ctx, h.cache, Query[lms.PartialResult[lms.UpcomingAssignment]]{
		Key:     Key{"events", userID},
		Enabled: userID != "",
		Fetch: func(ctx context.Context) (lms.PartialResult[lms.UpcomingAssignment], error) {
			return h.source.GetUpcomingEvents(ctx, userID)
		},
	})
}

func (h *Hooks) UserSubmissions(ctx context.Context, userID string) Result[lms.PartialResult[lms.Submission]] {
	return Use(ctx, h.cache, Query[lms.PartialResult[lms.Submission]]{
		Key:     Key{"submissions", userID},
		Enabled: userID != "",
		Fetch: func(ctx context.Context) (lms.PartialResult[lms.Submission], error) {
			return h.source.GetAllSubmissionsForUser(ctx, userID)
		},
	})
}

func (h *Hooks) TeacherCourses(ctx context.Context, userID string) Result[lms.PartialResult[lms.Course]] {
	return Use(ctx, h.cache, Query[lms.PartialResult[lms.Course]]{
		Key:     Key{"teacher-courses", userID},
		Enabled: userID != "",
		Fetch: func(ctx context.Context) (lms.PartialResult[lms.Course], error) {
			return h.source.GetTeachingCourses(ctx, userID)
		},
	})
}

// CourseStudents returns the student enrollments of one course
func (h *Hooks) CourseStudents(ctx context.Context, courseID int64) Result[[]lms.Enrollment] {
	return Use(ctx, h.cache, Query[[]lms.Enrollment]{
		Key:     Key{"teacher-enrollments", courseID},
		Enabled: courseID != 0,
		Fetch: func(ctx context.Context) ([]lms.Enrollment, error) {
			return h.source.GetCourseStudents(ctx, courseID)
		},
	})
}

func (h *Hooks) Observees(ctx context.Context, userID string) Result[[]lms.User] {
	return Use(ctx, h.cache, Query[[]lms.User]{
		Key:     Key{"observees", userID},
		Enabled: userID != "",
		Fetch: func(ctx context.Context) ([]lms.User, error) {
			return h.source.GetObservees(ctx, userID)
		},
	})
}
