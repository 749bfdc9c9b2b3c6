package cmp

// MapEq checks a == b by key and value.
func MapEq[K comparable, V comparable](a map[K]V, b map[K]V) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || va != vb {
			return false
		}
	}
	return true
}

// MapEqWith checks a == b, comparing values with eq.
func MapEqWith[K comparable, V any, U any](a map[K]V, b map[K]U, eq func(V, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !eq(va, vb) {
			return false
		}
	}
	return true
}

// KeysEq checks that a and b have the same key set.
func KeysEq[K comparable, V any, U any](a map[K]V, b map[K]U) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
