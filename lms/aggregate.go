package lms

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jrsteele09/canvas-dashboard/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const upcomingWindow = 30 * 24 * time.Hour

// Failure records one item a fan-out could not fetch
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// PartialResult carries whatever a fan-out collected plus the items that failed,
// so callers can tell "no data" apart from "some fetches failed".
type PartialResult[T any] struct {
	Items    []T       `json:"items"`
	Failures []Failure `json:"failures"`
}

// Complete reports whether every inner fetch succeeded
func (p PartialResult[T]) Complete() bool {
	return len(p.Failures) == 0
}

func (p *PartialResult[T]) fail(id string, err error) {
	p.Failures = append(p.Failures, Failure{ID: id, Reason: err.Error()})
}

// GetAllSubmissionsForUser walks courses, then each course's assignments, then the
// user's submission for each assignment. Calls are issued one after another.
// A failing inner call is recorded in Failures and the walk continues.
func (c *Client) GetAllSubmissionsForUser(ctx context.Context, userID string) (PartialResult[Submission], error) {
	result := PartialResult[Submission]{Items: []Submission{}}

	courses, err := c.GetUserCourses(ctx, userID)
	if err != nil {
		return result, errors.Wrap(err, "[GetAllSubmissionsForUser] failed to list courses")
	}

	for i := range courses {
		course := courses[i]
		assignments, err := c.GetCourseAssignments(ctx, course.ID)
		if err != nil {
			log.Warn().Err(err).Int64("course_id", course.ID).Msg("skipping course assignments")
			result.fail(fmt.Sprintf("course:%d", course.ID), err)
			continue
		}

		for j := range assignments {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			assignment := assignments[j]
			submission, err := c.GetUserSubmission(ctx, course.ID, assignment.ID, userID)
			if err != nil {
				log.Warn().Err(err).Int64("assignment_id", assignment.ID).Msg("skipping assignment submission")
				result.fail(fmt.Sprintf("assignment:%d", assignment.ID), err)
				continue
			}
			submission.Assignment = &assignment
			submission.Course = &course
			result.Items = append(result.Items, submission)
		}
	}
	return result, nil
}

// GetUpcomingEvents returns assignments due within the next 30 days. The calendar
// is asked first; when it errors or is empty the course assignments are scanned
// instead.
func (c *Client) GetUpcomingEvents(ctx context.Context, userID string) (PartialResult[UpcomingAssignment], error) {
	result := PartialResult[UpcomingAssignment]{Items: []UpcomingAssignment{}}
	now := c.nowTime()

	events, err := c.GetCalendarEvents(ctx, userID, now, now.Add(upcomingWindow))
	if err == nil && len(events) > 0 {
		for _, ev := range events {
			result.Items = append(result.Items, upcomingFromEvent(ev))
		}
		sortByDue(result.Items)
		return result, nil
	}
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("calendar events unavailable, using course assignments")
	}

	courses, err := c.GetUserCourses(ctx, userID)
	if err != nil {
		return result, errors.Wrap(err, "[GetUpcomingEvents] failed to list courses")
	}

	for _, course := range courses {
		assignments, err := c.GetCourseAssignments(ctx, course.ID)
		if err != nil {
			log.Warn().Err(err).Int64("course_id", course.ID).Msg("skipping course assignments")
			result.fail(fmt.Sprintf("course:%d", course.ID), err)
			continue
		}
		for _, a := range assignments {
			if a.DueAt == nil || !a.DueAt.After(now) {
				continue
			}
			result.Items = append(result.Items, UpcomingAssignment{
				Assignment: a,
				CourseName: course.Name,
				CourseCode: course.CourseCode,
			})
		}
	}
	sortByDue(result.Items)
	return result, nil
}

func upcomingFromEvent(ev CalendarEvent) UpcomingAssignment {
	u := UpcomingAssignment{CourseName: ev.ContextName}
	if ev.Assignment != nil {
		u.Assignment = *ev.Assignment
	} else {
		u.Name = ev.Title
		u.DueAt = ev.StartAt
	}
	if u.Name == "" {
		u.Name = ev.Title
	}
	return u
}

// sortByDue orders by due date, undated entries first
func sortByDue(items []UpcomingAssignment) {
	sort.SliceStable(items, func(i, j int) bool {
		return dueUnix(items[i].DueAt) < dueUnix(items[j].DueAt)
	})
}

// dueUnix sorts undated items as if due at the epoch
func dueUnix(t *time.Time) int64 {
	return utils.ValueOr(t, time.Unix(0, 0)).Unix()
}

// GetTeachingCourses returns the user's courses on which they hold a Teacher or
// TA enrollment. Each course's enrollment list is checked in turn; a failing
// course is recorded and skipped.
func (c *Client) GetTeachingCourses(ctx context.Context, userID string) (PartialResult[Course], error) {
	result := PartialResult[Course]{Items: []Course{}}

	courses, err := c.GetUserAllCourses(ctx, userID)
	if err != nil {
		return result, errors.Wrap(err, "[GetTeachingCourses] failed to list courses")
	}

	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		enrollments, err := c.GetCourseEnrollments(ctx, course.ID)
		if err != nil {
			log.Warn().Err(err).Int64("course_id", course.ID).Msg("skipping course enrollments")
			result.fail(fmt.Sprintf("course:%d", course.ID), err)
			continue
		}
		for _, e := range enrollments {
			if strconv.FormatInt(e.UserID, 10) == userID && (e.Type == TeacherEnrollment || e.Type == TaEnrollment) {
				result.Items = append(result.Items, course)
				break
			}
		}
	}
	return result, nil
}

// GetCourseStudents returns the StudentEnrollment records of a course
func (c *Client) GetCourseStudents(ctx context.Context, courseID int64) ([]Enrollment, error) {
	enrollments, err := c.GetCourseEnrollments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	students := make([]Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Type == StudentEnrollment {
			students = append(students, e)
		}
	}
	return students, nil
}
