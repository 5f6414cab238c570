package dashboards

import (
	"context"
	"fmt"

	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/sessions"
	"github.com/jrsteele09/canvas-dashboard/stats"
)

type TeacherCourse struct {
	ID           int64
	Name         string
	Code         string
	StudentCount int
	StudentIDs   []int64 // first few enrolled students
	MoreStudents int     // enrolled students not listed in StudentIDs
}

type TeacherView struct {
	Courses          []TeacherCourse
	TotalCourses     int
	TotalStudents    int
	AveragePerCourse int
	Notices
}

// BuildTeacher lists the courses the user teaches with their enrolled students
func (b *Builder) BuildTeacher(ctx context.Context, s sessions.Session) TeacherView {
	view := TeacherView{Courses: []TeacherCourse{}}

	courses := b.hooks.TeacherCourses(ctx, s.UserID)
	if courses.Err != nil {
		view.addError("courses", courses.Err)
		return view
	}
	view.addFailures(courses.Data.Failures)

	var enrollments []lms.Enrollment
	students := make(map[int64][]lms.Enrollment)
	for _, c := range courses.Data.Items {
		r := b.hooks.CourseStudents(ctx, c.ID)
		if r.Err != nil {
			view.addError(fmt.Sprintf("students for %s", c.Name), r.Err)
			continue
		}
		for _, e := range r.Data {
			if e.CourseID == 0 {
				e.CourseID = c.ID
			}
			enrollments = append(enrollments, e)
			students[c.ID] = append(students[c.ID], e)
		}
	}

	counts := stats.StudentCountByCourse(enrollments)
	for _, c := range courses.Data.Items {
		tc := TeacherCourse{ID: c.ID, Name: c.Name, Code: c.CourseCode, StudentCount: counts[c.ID], StudentIDs: []int64{}}
		for i, e := range students[c.ID] {
			if i == studentPreviewLimit {
				break
			}
			tc.StudentIDs = append(tc.StudentIDs, e.UserID)
		}
		tc.MoreStudents = tc.StudentCount - len(tc.StudentIDs)
		view.Courses = append(view.Courses, tc)
	}

	view.TotalCourses = len(view.Courses)
	view.TotalStudents = stats.TotalStudents(counts)
	view.AveragePerCourse = stats.AveragePerCourse(view.TotalStudents, view.TotalCourses)
	return view
}
