package dashboards

import (
	"time"

	"github.com/jrsteele09/canvas-dashboard/hooks"
	"github.com/jrsteele09/canvas-dashboard/lms"
)

const (
	DefaultRiskThreshold = 70.0
	upcomingLimit        = 5
	studentPreviewLimit  = 5
)

// Builder assembles the per-role view models from cached hook reads
type Builder struct {
	hooks         *hooks.Hooks
	nowTime       func() time.Time
	riskThreshold float64
}

// BuilderOption defines a function type to modify the Builder instance.
type BuilderOption func(*Builder)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.nowTime = nowFunc
	}
}

// WithRiskThreshold sets the average grade below which a student is flagged
func WithRiskThreshold(threshold float64) BuilderOption {
	return func(b *Builder) {
		b.riskThreshold = threshold
	}
}

func NewBuilder(h *hooks.Hooks, options ...BuilderOption) *Builder {
	b := &Builder{
		hooks:         h,
		nowTime:       time.Now,
		riskThreshold: DefaultRiskThreshold,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Notices collects what went wrong while building a view. A view with notices
// is still rendered with whatever data was fetched.
type Notices struct {
	Failures []lms.Failure
	Errors   []string
}

// Partial reports whether any fetch behind the view failed
func (n Notices) Partial() bool {
	return len(n.Failures) > 0 || len(n.Errors) > 0
}

func (n *Notices) addError(what string, err error) {
	n.Errors = append(n.Errors, what+": "+err.Error())
}

func (n *Notices) addFailures(failures []lms.Failure) {
	n.Failures = append(n.Failures, failures...)
}
