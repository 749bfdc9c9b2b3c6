package slices_test

import (
	"strconv"
	"testing"

	"github.com/cohortlab/eventflow/pkg/cmp"
	"github.com/cohortlab/eventflow/pkg/utils/slices"
)

func TestMap(t *testing.T) {
	actual := slices.Map([]int{1, 2, 3}, strconv.Itoa)
	if !cmp.SliceEq(actual, []string{"1", "2", "3"}) {
		t.Errorf("unmatch: (actual, expected) = (%v, [1 2 3])", actual)
	}
}

func TestFilter(t *testing.T) {
	actual := slices.Filter([]string{"a", "", "b", ""}, func(s string) bool { return s != "" })
	if !cmp.SliceEq(actual, []string{"a", "b"}) {
		t.Errorf("unmatch: (actual, expected) = (%v, [a b])", actual)
	}
}

func TestUniq(t *testing.T) {
	t.Run("duplicates are dropped, first-seen order is kept", func(t *testing.T) {
		actual := slices.Uniq([]string{"b", "a", "b", "c", "a"})
		if !cmp.SliceEq(actual, []string{"b", "a", "c"}) {
			t.Errorf("unmatch: (actual, expected) = (%v, [b a c])", actual)
		}
	})
	t.Run("an empty slice stays empty", func(t *testing.T) {
		if actual := slices.Uniq([]string{}); len(actual) != 0 {
			t.Errorf("unexpected: %v", actual)
		}
	})
}

func TestToMap(t *testing.T) {
	type entity struct{ uid string }
	actual := slices.ToMap(
		[]entity{{uid: "a"}, {uid: "b"}},
		func(e entity) string { return e.uid },
	)
	want := map[string]entity{"a": {uid: "a"}, "b": {uid: "b"}}
	if !cmp.MapEq(actual, want) {
		t.Errorf("unmatch: (actual, expected) = (%v, %v)", actual, want)
	}
}

func TestKeysOf(t *testing.T) {
	actual := slices.KeysOf(map[string]struct{}{"a": {}, "b": {}})
	if !cmp.SliceContentEq(actual, []string{"a", "b"}) {
		t.Errorf("unmatch: (actual, expected) = (%v, [a b])", actual)
	}
}
