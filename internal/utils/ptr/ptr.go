// Package ptr holds helpers for optional fields modelled as pointers.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Float64 returns a pointer to f.
func Float64(f float64) *float64 {
	return &f
}

// Int returns a pointer to i.
func Int(i int) *int {
	return &i
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// DerefOr returns *p, or fallback when p is nil.
func DerefOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
