package postgres

import (
	"strconv"

	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/utils/slices"
)

// collectRefs gathers the distinct non-blank references of a batch, in
// first-seen order.
func collectRefs(events []domain.Event, get func(domain.Event) string) []string {
	return slices.Uniq(slices.Filter(
		slices.Map(events, get),
		func(ref string) bool { return ref != "" },
	))
}

// reverseIndex maps each reference to the uids of the events carrying
// it, so one resolved row can be fanned out to every referencing event.
// Built before querying, as the correlation key is the reference
// itself.
func reverseIndex(events []domain.Event, get func(domain.Event) string) map[string][]string {
	return slices.ToMultiMap(
		slices.Filter(events, func(ev domain.Event) bool {
			return get(ev) != "" && ev.Uid != ""
		}),
		func(ev domain.Event) (string, string) { return get(ev), ev.Uid },
	)
}

// asInt64s parses numeric references for the ID scheme, dropping the
// unparsable ones (they cannot match a primary key anyway).
func asInt64s(refs []string) []int64 {
	ids := []int64{}
	for _, ref := range refs {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
