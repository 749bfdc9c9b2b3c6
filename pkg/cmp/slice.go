package cmp

// SliceEq checks a == b element-wise, ordering matters.
func SliceEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for nth, va := range a {
		if va != b[nth] {
			return false
		}
	}
	return true
}

// SliceEqWith checks a == b element-wise with eq, ordering matters.
func SliceEqWith[T any, U any](a []T, b []U, eq func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for nth := range a {
		if !eq(a[nth], b[nth]) {
			return false
		}
	}
	return true
}

// SliceContentEq checks that a and b hold the same elements,
// ignoring ordering and multiplicity beyond counts.
func SliceContentEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	counts := map[T]int{}
	for _, va := range a {
		counts[va]++
	}
	for _, vb := range b {
		counts[vb]--
		if counts[vb] < 0 {
			return false
		}
	}
	return true
}
