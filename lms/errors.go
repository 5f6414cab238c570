package lms

import (
	"fmt"

	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
)

// APIError is a non-success response from the upstream LMS. Body holds the
// upstream payload verbatim so callers can relay it.
type APIError struct {
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lms %s: %s", e.Path, e.Status)
}

func (e *APIError) Unwrap() error {
	return apperrors.ErrUpstream
}

// AsAPIError returns the upstream error in err's chain, if any
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
