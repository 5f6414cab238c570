package lms

import "time"

// Enrollment types as reported by Canvas
const (
	StudentEnrollment  = "StudentEnrollment"
	TeacherEnrollment  = "TeacherEnrollment"
	TaEnrollment       = "TaEnrollment"
	ObserverEnrollment = "ObserverEnrollment"
	DesignerEnrollment = "DesignerEnrollment"
)

// Submission workflow states
const (
	SubmissionUnsubmitted   = "unsubmitted"
	SubmissionSubmitted     = "submitted"
	SubmissionGraded        = "graded"
	SubmissionPendingReview = "pending_review"
)

type Pseudonym struct {
	ID       int64  `json:"id,omitempty"`
	UniqueID string `json:"unique_id"`
}

type User struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email,omitempty"`
	LoginID    string      `json:"login_id,omitempty"`
	AvatarURL  string      `json:"avatar_url,omitempty"`
	Pseudonyms []Pseudonym `json:"pseudonyms,omitempty"`
}

// Matches reports whether the login id, email or any pseudonym equals email exactly
func (u User) Matches(email string) bool {
	if email == "" {
		return false
	}
	if u.LoginID == email || u.Email == email {
		return true
	}
	for _, p := range u.Pseudonyms {
		if p.UniqueID == email {
			return true
		}
	}
	return false
}

type Grade struct {
	CurrentScore *float64 `json:"current_score,omitempty"`
	FinalScore   *float64 `json:"final_score,omitempty"`
	CurrentGrade string   `json:"current_grade,omitempty"`
	FinalGrade   string   `json:"final_grade,omitempty"`
}

// CourseEnrollment is the abbreviated enrollment Canvas embeds in a course listing
type CourseEnrollment struct {
	Type                 string   `json:"type"`
	Role                 string   `json:"role,omitempty"`
	UserID               int64    `json:"user_id,omitempty"`
	EnrollmentState      string   `json:"enrollment_state,omitempty"`
	ComputedCurrentScore *float64 `json:"computed_current_score,omitempty"`
	ComputedFinalScore   *float64 `json:"computed_final_score,omitempty"`
	ComputedCurrentGrade string   `json:"computed_current_grade,omitempty"`
	ComputedFinalGrade   string   `json:"computed_final_grade,omitempty"`
}

type Course struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	CourseCode       string             `json:"course_code"`
	StartAt          *time.Time         `json:"start_at,omitempty"`
	EndAt            *time.Time         `json:"end_at,omitempty"`
	EnrollmentTermID int64              `json:"enrollment_term_id,omitempty"`
	DefaultView      string             `json:"default_view,omitempty"`
	WorkflowState    string             `json:"workflow_state,omitempty"`
	TotalScores      *Grade             `json:"total_scores,omitempty"`
	Enrollments      []CourseEnrollment `json:"enrollments,omitempty"`
}

// Grade returns the course grade summary, preferring total_scores and falling
// back to the computed scores on the first embedded enrollment that has one.
func (c Course) Grade() *Grade {
	if c.TotalScores != nil {
		return c.TotalScores
	}
	for _, e := range c.Enrollments {
		if e.ComputedCurrentScore != nil || e.ComputedFinalScore != nil {
			return &Grade{
				CurrentScore: e.ComputedCurrentScore,
				FinalScore:   e.ComputedFinalScore,
				CurrentGrade: e.ComputedCurrentGrade,
				FinalGrade:   e.ComputedFinalGrade,
			}
		}
	}
	return nil
}

type Assignment struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	PointsPossible  *float64   `json:"points_possible,omitempty"`
	SubmissionTypes []string   `json:"submission_types,omitempty"`
	Published       bool       `json:"published"`
	CourseID        int64      `json:"course_id"`
}

type Enrollment struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	CourseID        int64  `json:"course_id"`
	Type            string `json:"type"`
	EnrollmentState string `json:"enrollment_state"`
	Role            string `json:"role"`
}

type Submission struct {
	ID            int64      `json:"id"`
	AssignmentID  int64      `json:"assignment_id"`
	UserID        int64      `json:"user_id"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	Score         *float64   `json:"score,omitempty"`
	Grade         string     `json:"grade,omitempty"`
	WorkflowState string     `json:"workflow_state"`

	// Populated in memory by the fan-out, never sent by Canvas on this endpoint
	Assignment *Assignment `json:"assignment,omitempty"`
	Course     *Course     `json:"course,omitempty"`
}

type Module struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Published  bool   `json:"published"`
	ItemsCount int    `json:"items_count,omitempty"`
}

type ModuleItem struct {
	ID        int64  `json:"id"`
	ModuleID  int64  `json:"module_id"`
	Type      string `json:"type"`
	ContentID int64  `json:"content_id,omitempty"`
	PageURL   string `json:"page_url,omitempty"`
	Position  int    `json:"position"`
	Title     string `json:"title"`
}

type Quiz struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	PointsPossible *float64 `json:"points_possible,omitempty"`
	TimeLimit      *int     `json:"time_limit,omitempty"`
	Published      bool     `json:"published"`
	AssignmentID   int64    `json:"assignment_id,omitempty"`
}

type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Published bool   `json:"published"`
}

type CalendarEvent struct {
	Title       string      `json:"title"`
	StartAt     *time.Time  `json:"start_at,omitempty"`
	ContextCode string      `json:"context_code,omitempty"`
	ContextName string      `json:"context_name,omitempty"`
	Assignment  *Assignment `json:"assignment,omitempty"`
}

// UpcomingAssignment is an assignment annotated with the course it belongs to
type UpcomingAssignment struct {
	Assignment
	CourseName string `json:"course_name,omitempty"`
	CourseCode string `json:"course_code,omitempty"`
}
