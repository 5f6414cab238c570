package dashboards

import (
	"context"
	"fmt"

	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/sessions"
	"github.com/jrsteele09/canvas-dashboard/stats"
)

type CourseSummary struct {
	ID           int64
	Name         string
	Code         string
	CurrentScore *float64
	CurrentGrade string
}

type MissingAssignment struct {
	lms.Assignment
	CourseName string
}

type StudentStats struct {
	ActiveCourses int
	Pending       int
	Missing       int
	Submitted     int
	AverageGrade  float64
}

type StudentView struct {
	Courses  []CourseSummary
	Upcoming []lms.UpcomingAssignment
	Missing  []MissingAssignment
	Stats    StudentStats
	Notices
}

// BuildStudent gathers the signed-in student's courses, deadlines and progress
func (b *Builder) BuildStudent(ctx context.Context, s sessions.Session) StudentView {
	view := StudentView{
		Courses:  []CourseSummary{},
		Upcoming: []lms.UpcomingAssignment{},
		Missing:  []MissingAssignment{},
	}
	now := b.nowTime()

	courses := b.hooks.UserCourses(ctx, s.UserID)
	if courses.Err != nil {
		view.addError("courses", courses.Err)
	}

	var assignments []lms.Assignment
	courseNames := make(map[int64]string)
	for _, c := range courses.Data {
		summary := CourseSummary{ID: c.ID, Name: c.Name, Code: c.CourseCode}
		if g := c.Grade(); g != nil {
			summary.CurrentScore = g.CurrentScore
			summary.CurrentGrade = g.CurrentGrade
		}
		view.Courses = append(view.Courses, summary)
		courseNames[c.ID] = c.Name

		r := b.hooks.CourseAssignments(ctx, c.ID)
		if r.Err != nil {
			view.addError(fmt.Sprintf("assignments for %s", c.Name), r.Err)
			continue
		}
		for _, a := range r.Data {
			if a.CourseID == 0 {
				a.CourseID = c.ID
			}
			assignments = append(assignments, a)
		}
	}

	events := b.hooks.UpcomingEvents(ctx, s.UserID)
	if events.Err != nil {
		view.addError("upcoming assignments", events.Err)
	} else {
		view.addFailures(events.Data.Failures)
		upcoming := events.Data.Items
		if len(upcoming) > upcomingLimit {
			upcoming = upcoming[:upcomingLimit]
		}
		view.Upcoming = append(view.Upcoming, upcoming...)
	}

	subs := b.hooks.UserSubmissions(ctx, s.UserID)
	if subs.Err != nil {
		view.addError("submissions", subs.Err)
	} else {
		view.addFailures(subs.Data.Failures)
	}
	submissions := subs.Data.Items

	for _, a := range stats.Missing(assignments, submissions, now) {
		view.Missing = append(view.Missing, MissingAssignment{Assignment: a, CourseName: courseNames[a.CourseID]})
	}
	view.Stats = StudentStats{
		ActiveCourses: len(view.Courses),
		Pending:       len(stats.Pending(assignments, submissions)),
		Missing:       len(view.Missing),
		Submitted:     stats.SubmittedCount(submissions),
		AverageGrade:  stats.AverageGrade(submissions),
	}
	return view
}
