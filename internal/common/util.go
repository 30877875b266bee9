package common

// Page normalizes limit/offset pairs coming from the API. A nil or
// non-positive limit becomes def, a limit above max is clamped, and a nil or
// negative offset becomes zero.
func Page(limit, offset *int, def, max int) (int, int) {
	l, o := def, 0
	if limit != nil && *limit > 0 {
		l = *limit
	}
	if max > 0 && l > max {
		l = max
	}
	if offset != nil && *offset > 0 {
		o = *offset
	}
	return l, o
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
