package mocks

type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

// Last returns the most recent call, or the zero value when none were
// recorded.
func (l CallLog[T]) Last() (T, bool) {
	if len(l) == 0 {
		var zero T
		return zero, false
	}
	return l[len(l)-1], true
}
