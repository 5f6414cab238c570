package lms_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/jrsteele09/canvas-dashboard/internal/utils"
	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/lms/lmsfake"
	"github.com/stretchr/testify/require"
)

const testToken = "service-token"

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, options ...lms.ClientOption) (*lms.Client, *lmsfake.FakeCanvas) {
	t.Helper()
	fake := lmsfake.New(t)
	options = append([]lms.ClientOption{lms.WithNowTime(func() time.Time { return testNow })}, options...)
	client := lms.NewClient(fake.APIRoot(), lms.NewHTTPClient(testToken, nil), options...)
	return client, fake
}

func TestClient_GetUserCourses(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("users/7/courses", []map[string]any{
		{
			"id": 1, "name": "Biology", "course_code": "BIO-101",
			"enrollments": []map[string]any{{"type": "student", "computed_current_score": 88.5}},
		},
	})

	courses, err := client.GetUserCourses(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "BIO-101", courses[0].CourseCode)
	require.NotNil(t, courses[0].Grade())
	require.Equal(t, 88.5, utils.Value(courses[0].Grade().CurrentScore))

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "Bearer "+testToken, reqs[0].Authorization)
	q, err := url.ParseQuery(reqs[0].RawQuery)
	require.NoError(t, err)
	require.Equal(t, "student", q.Get("enrollment_type"))
	require.Equal(t, []string{"total_scores"}, q["include[]"])
}

func TestClient_ListFollowsNextLink(t *testing.T) {
	t.Run("all pages", func(t *testing.T) {
		client, fake := newTestClient(t)
		fake.Paged("courses/1/enrollments", []lms.Enrollment{{ID: 1, Type: lms.StudentEnrollment}}, "courses/1/enrollments?page=2")
		fake.JSON("courses/1/enrollments?page=2", []lms.Enrollment{{ID: 2, Type: lms.TeacherEnrollment}})

		enrollments, err := client.GetCourseEnrollments(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, enrollments, 2)
		require.Equal(t, int64(2), enrollments[1].ID)
	})

	t.Run("page cap", func(t *testing.T) {
		client, fake := newTestClient(t, lms.WithMaxPages(1))
		fake.Paged("courses/1/enrollments", []lms.Enrollment{{ID: 1}}, "courses/1/enrollments?page=2")
		fake.JSON("courses/1/enrollments?page=2", []lms.Enrollment{{ID: 2}})

		enrollments, err := client.GetCourseEnrollments(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, enrollments, 1)
	})
}

func TestClient_UpstreamError(t *testing.T) {
	client, fake := newTestClient(t)
	fake.Fail("courses/5", http.StatusUnauthorized, `{"errors":[{"message":"Invalid access token."}]}`)

	_, err := client.GetCourse(context.Background(), 5)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrUpstream))

	apiErr, ok := lms.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Contains(t, apiErr.Body, "Invalid access token.")
}

func TestClient_MalformedJSON(t *testing.T) {
	client, fake := newTestClient(t)
	fake.Handle(http.MethodGet, "courses/5", lmsfake.Response{Status: http.StatusOK, Body: "<html>"})

	_, err := client.GetCourse(context.Background(), 5)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidResponse))
}

func TestClient_GetAllSubmissionsForUser(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("users/7/courses", []lms.Course{{ID: 1, Name: "Biology"}, {ID: 2, Name: "Chemistry"}})
	fake.JSON("courses/1/assignments", []lms.Assignment{{ID: 11, Name: "Lab 1", CourseID: 1}, {ID: 12, Name: "Lab 2", CourseID: 1}})
	fake.Fail("courses/2/assignments", http.StatusInternalServerError, "boom")
	fake.JSON("courses/1/assignments/11/submissions/7", lms.Submission{ID: 100, AssignmentID: 11, UserID: 7, WorkflowState: lms.SubmissionGraded, Score: utils.Ptr(90.0)})
	fake.Fail("courses/1/assignments/12/submissions/7", http.StatusForbidden, "nope")

	result, err := client.GetAllSubmissionsForUser(context.Background(), "7")
	require.NoError(t, err)
	require.False(t, result.Complete())

	require.Len(t, result.Items, 1)
	sub := result.Items[0]
	require.Equal(t, int64(100), sub.ID)
	require.NotNil(t, sub.Assignment)
	require.Equal(t, "Lab 1", sub.Assignment.Name)
	require.NotNil(t, sub.Course)
	require.Equal(t, "Biology", sub.Course.Name)

	require.Len(t, result.Failures, 2)
	require.Equal(t, "assignment:12", result.Failures[0].ID)
	require.Equal(t, "course:2", result.Failures[1].ID)
}

func TestClient_GetAllSubmissionsForUser_CoursesFail(t *testing.T) {
	client, fake := newTestClient(t)
	fake.Fail("users/7/courses", http.StatusInternalServerError, "down")

	_, err := client.GetAllSubmissionsForUser(context.Background(), "7")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrUpstream))
}

func TestClient_GetUpcomingEvents(t *testing.T) {
	past := testNow.Add(-24 * time.Hour)
	soon := testNow.Add(24 * time.Hour)
	later := testNow.Add(72 * time.Hour)

	t.Run("calendar events", func(t *testing.T) {
		client, fake := newTestClient(t)
		fake.JSON("users/7/calendar_events", []lms.CalendarEvent{
			{Title: "Essay", ContextName: "English", Assignment: &lms.Assignment{ID: 2, Name: "Essay", DueAt: &later}},
			{Title: "Quiz", ContextName: "Maths", StartAt: &soon},
		})

		result, err := client.GetUpcomingEvents(context.Background(), "7")
		require.NoError(t, err)
		require.True(t, result.Complete())
		require.Len(t, result.Items, 2)
		require.Equal(t, "Quiz", result.Items[0].Name)
		require.Equal(t, "Essay", result.Items[1].Name)
		require.Equal(t, "English", result.Items[1].CourseName)
		require.Zero(t, fake.Count(http.MethodGet, "users/7/courses"))

		q, err := url.ParseQuery(fake.Requests()[0].RawQuery)
		require.NoError(t, err)
		require.Equal(t, "2025-03-01", q.Get("start_date"))
		require.Equal(t, "2025-03-31", q.Get("end_date"))
		require.Equal(t, "assignment", q.Get("type"))
	})

	t.Run("falls back to course assignments", func(t *testing.T) {
		client, fake := newTestClient(t)
		fake.JSON("users/7/calendar_events", []lms.CalendarEvent{})
		fake.JSON("users/7/courses", []lms.Course{{ID: 1, Name: "Biology", CourseCode: "BIO"}, {ID: 2, Name: "Art"}})
		fake.JSON("courses/1/assignments", []lms.Assignment{
			{ID: 11, Name: "Later", DueAt: &later},
			{ID: 12, Name: "Past", DueAt: &past},
			{ID: 13, Name: "Undated"},
			{ID: 14, Name: "Soon", DueAt: &soon},
		})
		fake.Fail("courses/2/assignments", http.StatusNotFound, "gone")

		result, err := client.GetUpcomingEvents(context.Background(), "7")
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		require.Equal(t, "Soon", result.Items[0].Name)
		require.Equal(t, "Later", result.Items[1].Name)
		require.Equal(t, "BIO", result.Items[0].CourseCode)
		require.Equal(t, []lms.Failure{{ID: "course:2", Reason: result.Failures[0].Reason}}, result.Failures)
	})

	t.Run("calendar error falls back", func(t *testing.T) {
		client, fake := newTestClient(t)
		fake.JSON("users/7/courses", []lms.Course{})

		result, err := client.GetUpcomingEvents(context.Background(), "7")
		require.NoError(t, err)
		require.Empty(t, result.Items)
		require.Equal(t, 1, fake.Count(http.MethodGet, "users/7/courses"))
	})
}

func TestUser_Matches(t *testing.T) {
	u := lms.User{ID: 1, Email: "a@x.edu", LoginID: "alogin", Pseudonyms: []lms.Pseudonym{{UniqueID: "alias@x.edu"}}}

	require.True(t, u.Matches("a@x.edu"))
	require.True(t, u.Matches("alogin"))
	require.True(t, u.Matches("alias@x.edu"))
	require.False(t, u.Matches("A@x.edu"))
	require.False(t, u.Matches(""))
}

func TestClient_GetTeachingCourses(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("users/4/courses", []lms.Course{{ID: 1, Name: "Biology"}, {ID: 2, Name: "Chemistry"}, {ID: 3, Name: "Physics"}})
	fake.JSON("courses/1/enrollments", []lms.Enrollment{
		{UserID: 4, Type: lms.TeacherEnrollment},
		{UserID: 7, Type: lms.StudentEnrollment},
	})
	fake.JSON("courses/2/enrollments", []lms.Enrollment{
		{UserID: 4, Type: lms.StudentEnrollment},
		{UserID: 5, Type: lms.TeacherEnrollment},
	})
	fake.Fail("courses/3/enrollments", http.StatusForbidden, "nope")

	result, err := client.GetTeachingCourses(context.Background(), "4")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Biology", result.Items[0].Name)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "course:3", result.Failures[0].ID)

	// teacher courses are not limited to student enrollments
	require.Empty(t, fake.Requests()[0].RawQuery)
}

func TestClient_GetCourseStudents(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("courses/1/enrollments", []lms.Enrollment{
		{UserID: 4, Type: lms.TeacherEnrollment},
		{UserID: 7, Type: lms.StudentEnrollment},
		{UserID: 8, Type: lms.StudentEnrollment},
	})

	students, err := client.GetCourseStudents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, int64(8), students[1].UserID)
}

func TestClient_Endpoints(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		path string
		body any
		call func(c *lms.Client) error
	}{
		{"user", "users/7", map[string]any{"id": 7}, func(c *lms.Client) error { _, err := c.GetUser(ctx, "7"); return err }},
		{"course", "courses/5", map[string]any{"id": 5}, func(c *lms.Client) error { _, err := c.GetCourse(ctx, 5); return err }},
		{"modules", "courses/5/modules", []any{}, func(c *lms.Client) error { _, err := c.GetCourseModules(ctx, 5); return err }},
		{"module items", "courses/5/modules/3/items", []any{}, func(c *lms.Client) error { _, err := c.GetModuleItems(ctx, 5, 3); return err }},
		{"quizzes", "courses/5/quizzes", []any{}, func(c *lms.Client) error { _, err := c.GetCourseQuizzes(ctx, 5); return err }},
		{"pages", "courses/5/pages", []any{}, func(c *lms.Client) error { _, err := c.GetCoursePages(ctx, 5); return err }},
		{"page", "courses/5/pages/syllabus-week-1", map[string]any{"url": "syllabus-week-1"}, func(c *lms.Client) error {
			_, err := c.GetPage(ctx, 5, "syllabus-week-1")
			return err
		}},
		{"assignment", "courses/5/assignments/9", map[string]any{"id": 9}, func(c *lms.Client) error {
			_, err := c.GetAssignment(ctx, 5, 9)
			return err
		}},
		{"observees", "users/7/observees", []any{}, func(c *lms.Client) error { _, err := c.GetObservees(ctx, "7"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newTestClient(t)
			fake.JSON(tt.path, tt.body)

			require.NoError(t, tt.call(client))
			require.Equal(t, 1, fake.Count(http.MethodGet, tt.path))
		})
	}
}

func TestClient_GetSubmissionsIncludes(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("courses/5/assignments/9/submissions", []lms.Submission{{ID: 1, WorkflowState: lms.SubmissionGraded}})

	subs, err := client.GetSubmissions(context.Background(), 5, 9)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	q, err := url.ParseQuery(fake.Requests()[0].RawQuery)
	require.NoError(t, err)
	require.Equal(t, []string{"user", "submission_history"}, q["include[]"])
}
