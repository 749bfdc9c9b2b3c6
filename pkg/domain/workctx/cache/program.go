package cache

import (
	"sync/atomic"
	"time"

	"github.com/cohortlab/eventflow/pkg/domain"
)

const DefaultProgramTTL = 60 * time.Second

// ProgramSnapshot is one fully built generation of the program cache:
// every program aggregate, keyed under the scheme it was built for.
type ProgramSnapshot struct {
	Scheme  domain.IdScheme
	ByKey   map[string]*domain.Program
	builtAt time.Time
}

// ProgramCache holds the whole program hierarchy behind a single slot.
//
// Readers either see a complete generation or none: rebuilds swap the
// slot pointer, never mutate the published snapshot. There is no
// partial refresh; any referenced key missing from the snapshot
// invalidates the whole cache (simplicity over staleness granularity).
type ProgramCache struct {
	ttl  time.Duration
	now  func() time.Time
	slot atomic.Pointer[ProgramSnapshot]
}

func NewProgramCache(ttl time.Duration) *ProgramCache {
	if ttl <= 0 {
		ttl = DefaultProgramTTL
	}
	return &ProgramCache{ttl: ttl, now: time.Now}
}

// Lookup returns the cached map when the current snapshot is fresh, was
// built under scheme, and covers every key in refs.
//
// ok == false means the caller must rebuild (and Replace).
func (c *ProgramCache) Lookup(scheme domain.IdScheme, refs []string) (map[string]*domain.Program, bool) {
	snap := c.slot.Load()
	if snap == nil {
		return nil, false
	}
	if c.now().Sub(snap.builtAt) > c.ttl {
		return nil, false
	}
	if snap.Scheme != scheme {
		return nil, false
	}
	for _, key := range refs {
		if _, ok := snap.ByKey[key]; !ok {
			return nil, false
		}
	}
	return snap.ByKey, true
}

// Replace atomically publishes a newly built generation.
func (c *ProgramCache) Replace(scheme domain.IdScheme, byKey map[string]*domain.Program) {
	c.slot.Store(&ProgramSnapshot{
		Scheme:  scheme,
		ByKey:   byKey,
		builtAt: c.now(),
	})
}

// Clear drops the current generation, forcing the next Lookup to miss.
func (c *ProgramCache) Clear() {
	c.slot.Store(nil)
}
