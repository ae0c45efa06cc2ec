package common

// Coalesce returns the first of values that is not the zero value of T, or the zero value.
func Coalesce[T comparable](values ...T) (first T) {
	for _, v := range values {
		if v != first {
			return v
		}
	}
	return first
}
