package tuple

import "fmt"

type Pair[A, B any] struct {
	First  A
	Second B
}

func PairOf[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

func (p Pair[A, B]) Decompose() (A, B) {
	return p.First, p.Second
}

func (p Pair[A, B]) String() string {
	return fmt.Sprintf("Pair{%v, %v}", p.First, p.Second)
}

// ToMap converts pairs to a map. Later pairs win on key collision.
func ToMap[A comparable, B any](ps []Pair[A, B]) map[A]B {
	ret := make(map[A]B, len(ps))
	for _, p := range ps {
		ret[p.First] = p.Second
	}
	return ret
}
