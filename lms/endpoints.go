package lms

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// User methods

func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	var user User
	err := c.get(ctx, fmt.Sprintf("users/%s", url.PathEscape(userID)), nil, &user)
	return user, err
}

// GetUserCourses lists the courses the user is enrolled in as a student, with grade totals
func (c *Client) GetUserCourses(ctx context.Context, userID string) ([]Course, error) {
	q := url.Values{}
	q.Set("enrollment_type", "student")
	q.Add("include[]", "total_scores")
	return list[Course](ctx, c, fmt.Sprintf("users/%s/courses", url.PathEscape(userID)), q)
}

// GetUserAllCourses lists every course the user is enrolled in regardless of enrollment type
func (c *Client) GetUserAllCourses(ctx context.Context, userID string) ([]Course, error) {
	return list[Course](ctx, c, fmt.Sprintf("users/%s/courses", url.PathEscape(userID)), nil)
}

func (c *Client) GetUserEnrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	return list[Enrollment](ctx, c, fmt.Sprintf("users/%s/enrollments", url.PathEscape(userID)), nil)
}

// GetObservees lists the students linked to an observer
func (c *Client) GetObservees(ctx context.Context, userID string) ([]User, error) {
	return list[User](ctx, c, fmt.Sprintf("users/%s/observees", url.PathEscape(userID)), nil)
}

// SearchAccountUsers searches an account's users by name, login id or email
func (c *Client) SearchAccountUsers(ctx context.Context, accountID, term string) ([]User, error) {
	q := url.Values{}
	q.Set("search_term", term)
	return list[User](ctx, c, fmt.Sprintf("accounts/%s/users", url.PathEscape(accountID)), q)
}

// GetCalendarEvents lists assignment events between two dates (YYYY-MM-DD)
func (c *Client) GetCalendarEvents(ctx context.Context, userID string, start, end time.Time) ([]CalendarEvent, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(time.DateOnly))
	q.Set("end_date", end.Format(time.DateOnly))
	q.Set("type", "assignment")
	return list[CalendarEvent](ctx, c, fmt.Sprintf("users/%s/calendar_events", url.PathEscape(userID)), q)
}

// Course methods

func (c *Client) GetCourse(ctx context.Context, courseID int64) (Course, error) {
	var course Course
	err := c.get(ctx, fmt.Sprintf("courses/%d", courseID), nil, &course)
	return course, err
}

func (c *Client) GetCourseAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	return list[Assignment](ctx, c, fmt.Sprintf("courses/%d/assignments", courseID), nil)
}

func (c *Client) GetCourseEnrollments(ctx context.Context, courseID int64) ([]Enrollment, error) {
	return list[Enrollment](ctx, c, fmt.Sprintf("courses/%d/enrollments", courseID), nil)
}

func (c *Client) GetCourseModules(ctx context.Context, courseID int64) ([]Module, error) {
	return list[Module](ctx, c, fmt.Sprintf("courses/%d/modules", courseID), nil)
}

func (c *Client) GetModuleItems(ctx context.Context, courseID, moduleID int64) ([]ModuleItem, error) {
	return list[ModuleItem](ctx, c, fmt.Sprintf("courses/%d/modules/%d/items", courseID, moduleID), nil)
}

func (c *Client) GetCourseQuizzes(ctx context.Context, courseID int64) ([]Quiz, error) {
	return list[Quiz](ctx, c, fmt.Sprintf("courses/%d/quizzes", courseID), nil)
}

func (c *Client) GetCoursePages(ctx context.Context, courseID int64) ([]Page, error) {
	return list[Page](ctx, c, fmt.Sprintf("courses/%d/pages", courseID), nil)
}

func (c *Client) GetPage(ctx context.Context, courseID int64, pageURL string) (Page, error) {
	var page Page
	err := c.get(ctx, fmt.Sprintf("courses/%d/pages/%s", courseID, url.PathEscape(pageURL)), nil, &page)
	return page, err
}

// Assignment methods

func (c *Client) GetAssignment(ctx context.Context, courseID, assignmentID int64) (Assignment, error) {
	var assignment Assignment
	err := c.get(ctx, fmt.Sprintf("courses/%d/assignments/%d", courseID, assignmentID), nil, &assignment)
	return assignment, err
}

// GetSubmissions lists every submission for an assignment, including the user and history
func (c *Client) GetSubmissions(ctx context.Context, courseID, assignmentID int64) ([]Submission, error) {
	q := url.Values{}
	q.Add("include[]", "user")
	q.Add("include[]", "submission_history")
	return list[Submission](ctx, c, fmt.Sprintf("courses/%d/assignments/%d/submissions", courseID, assignmentID), q)
}

// GetUserSubmission returns one user's submission for an assignment
func (c *Client) GetUserSubmission(ctx context.Context, courseID, assignmentID int64, userID string) (Submission, error) {
	var submission Submission
	path := fmt.Sprintf("courses/%d/assignments/%d/submissions/%s", courseID, assignmentID, url.PathEscape(userID))
	err := c.get(ctx, path, nil, &submission)
	return submission, err
}
