package dashboards

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/sessions"
	"github.com/jrsteele09/canvas-dashboard/stats"
)

type AdvisorStudent struct {
	ID       int64
	Name     string
	Standing stats.Standing
	Partial  bool // some of the student's records could not be fetched
}

type AdvisorView struct {
	Students         []AdvisorStudent
	AtRisk           []AdvisorStudent
	AssignedStudents int
	AtRiskCount      int
	AverageGrade     float64 // mean of the averages of students with a score
	RiskThreshold    float64
	Notices
}

// BuildAdvisor summarises every student the user observes
func (b *Builder) BuildAdvisor(ctx context.Context, s sessions.Session) AdvisorView {
	view := AdvisorView{
		Students:      []AdvisorStudent{},
		AtRisk:        []AdvisorStudent{},
		RiskThreshold: b.riskThreshold,
	}
	now := b.nowTime()

	observees := b.hooks.Observees(ctx, s.UserID)
	if observees.Err != nil {
		view.addError("observed students", observees.Err)
		return view
	}

	var averages []float64
	for _, u := range observees.Data {
		student := AdvisorStudent{ID: u.ID, Name: u.Name}

		subs := b.hooks.UserSubmissions(ctx, strconv.FormatInt(u.ID, 10))
		if subs.Err != nil {
			view.addError(fmt.Sprintf("submissions for %s", u.Name), subs.Err)
			student.Partial = true
		} else {
			for _, f := range subs.Data.Failures {
				view.Failures = append(view.Failures, lms.Failure{ID: fmt.Sprintf("student:%d/%s", u.ID, f.ID), Reason: f.Reason})
			}
			student.Partial = !subs.Data.Complete()
			student.Standing = stats.StandingOf(subs.Data.Items, now, b.riskThreshold)
		}

		if student.Standing.Scored > 0 {
			averages = append(averages, student.Standing.Average)
		}
		view.Students = append(view.Students, student)
		if student.Standing.AtRisk {
			view.AtRisk = append(view.AtRisk, student)
		}
	}

	view.AssignedStudents = len(view.Students)
	view.AtRiskCount = len(view.AtRisk)
	view.AverageGrade = stats.Mean(averages)
	return view
}
