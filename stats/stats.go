// Package stats holds the pure aggregations behind the dashboards. Nothing here
// performs I/O; callers pass in already-fetched records and the current time.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/jrsteele09/canvas-dashboard/lms"
)

// SubmittedCount counts submissions that are graded or submitted
func SubmittedCount(subs []lms.Submission) int {
	n := 0
	for _, s := range subs {
		if isTurnedIn(s) {
			n++
		}
	}
	return n
}

func isTurnedIn(s lms.Submission) bool {
	return s.WorkflowState == lms.SubmissionGraded || s.WorkflowState == lms.SubmissionSubmitted
}

// Pending returns assignments with no submission, or whose submission is
// still unsubmitted
func Pending(assignments []lms.Assignment, subs []lms.Submission) []lms.Assignment {
	byAssignment := make(map[int64]lms.Submission, len(subs))
	for _, s := range subs {
		byAssignment[s.AssignmentID] = s
	}

	pending := make([]lms.Assignment, 0)
	for _, a := range assignments {
		s, ok := byAssignment[a.ID]
		if !ok || s.WorkflowState == lms.SubmissionUnsubmitted {
			pending = append(pending, a)
		}
	}
	return pending
}

// Missing returns pending assignments whose due date is strictly before now.
// Undated assignments are never missing.
func Missing(assignments []lms.Assignment, subs []lms.Submission, now time.Time) []lms.Assignment {
	missing := make([]lms.Assignment, 0)
	for _, a := range Pending(assignments, subs) {
		if a.DueAt != nil && a.DueAt.Before(now) {
			missing = append(missing, a)
		}
	}
	return missing
}

// AverageGrade is the mean score of the submissions that have one, 0 when none do
func AverageGrade(subs []lms.Submission) float64 {
	avg, _ := averageScore(subs)
	return avg
}

func averageScore(subs []lms.Submission) (float64, int) {
	sum, n := 0.0, 0
	for _, s := range subs {
		if s.Score != nil {
			sum += *s.Score
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// StudentCountByCourse counts StudentEnrollment records per course id
func StudentCountByCourse(enrollments []lms.Enrollment) map[int64]int {
	counts := make(map[int64]int)
	for _, e := range enrollments {
		if e.Type == lms.StudentEnrollment {
			counts[e.CourseID]++
		}
	}
	return counts
}

// TotalStudents sums per-course student counts
func TotalStudents(counts map[int64]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// AveragePerCourse is the rounded mean students per course, 0 with no courses
func AveragePerCourse(totalStudents, courses int) int {
	if courses <= 0 {
		return 0
	}
	return int(math.Round(float64(totalStudents) / float64(courses)))
}

// Upcoming returns assignments due strictly after now, soonest first
func Upcoming(assignments []lms.Assignment, now time.Time) []lms.Assignment {
	upcoming := make([]lms.Assignment, 0)
	for _, a := range assignments {
		if a.DueAt != nil && a.DueAt.After(now) {
			upcoming = append(upcoming, a)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueAt.Before(*upcoming[j].DueAt)
	})
	return upcoming
}

// Standing summarises one student's progress for the advisor view
type Standing struct {
	Missing   int
	Average   float64
	Scored    int // submissions carrying a score
	AtRisk    bool
	Pending   int
	Submitted int
}

// IsAtRisk flags a student with missing work, or with at least one score and an
// average below threshold
func IsAtRisk(missing int, average float64, scored int, threshold float64) bool {
	if missing > 0 {
		return true
	}
	return scored > 0 && average < threshold
}

// StandingOf derives a Standing from submissions that carry their assignment
func StandingOf(subs []lms.Submission, now time.Time, threshold float64) Standing {
	assignments := AssignmentsOf(subs)
	avg, scored := averageScore(subs)
	missing := len(Missing(assignments, subs, now))
	return Standing{
		Missing:   missing,
		Average:   avg,
		Scored:    scored,
		AtRisk:    IsAtRisk(missing, avg, scored, threshold),
		Pending:   len(Pending(assignments, subs)),
		Submitted: SubmittedCount(subs),
	}
}

// AssignmentsOf collects the distinct assignments attached to submissions
func AssignmentsOf(subs []lms.Submission) []lms.Assignment {
	seen := make(map[int64]bool, len(subs))
	assignments := make([]lms.Assignment, 0, len(subs))
	for _, s := range subs {
		if s.Assignment == nil || seen[s.Assignment.ID] {
			continue
		}
		seen[s.Assignment.ID] = true
		assignments = append(assignments, *s.Assignment)
	}
	return assignments
}

// Mean of values, 0 for none
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
