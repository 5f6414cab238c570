package utils

// Value dereferences v, giving the zero value for nil. Canvas leaves scores,
// due dates and points out of a payload rather than sending zero.
func Value[T any](v *T) T {
	var zero T
	return ValueOr(v, zero)
}

// ValueOr dereferences v, giving fallback for nil
func ValueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// Ptr returns a pointer to a copy of v
func Ptr[T any](v T) *T {
	return &v
}
