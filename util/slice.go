package util

// Concat returns a new slice holding a followed by b.
func Concat[T any](a []T, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// CopySlice returns a copy of s, nil stays nil.
func CopySlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
