package cache_test

import (
	"testing"
	"time"

	"github.com/cohortlab/eventflow/pkg/cmp"
	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/domain/workctx/cache"
)

func someProgramsByUid(uids ...string) map[string]*domain.Program {
	byKey := map[string]*domain.Program{}
	for _, uid := range uids {
		byKey[uid] = &domain.Program{
			Identifiable: domain.Identifiable{Uid: uid},
			Type:         domain.WithRegistration,
		}
	}
	return byKey
}

func TestProgramCache_Lookup(t *testing.T) {
	t.Run("an empty cache misses", func(t *testing.T) {
		c := cache.NewProgramCache(time.Minute)
		if _, ok := c.Lookup(domain.SchemeUID, []string{"progUid0001"}); ok {
			t.Error("lookup on an empty cache should miss")
		}
	})

	t.Run("a fresh snapshot covering the refs hits", func(t *testing.T) {
		c := cache.NewProgramCache(time.Minute)
		c.Replace(domain.SchemeUID, someProgramsByUid("progUid0001", "progUid0002"))

		byKey, ok := c.Lookup(domain.SchemeUID, []string{"progUid0001"})
		if !ok {
			t.Fatal("lookup should hit")
		}
		if !cmp.KeysEq(byKey, someProgramsByUid("progUid0001", "progUid0002")) {
			t.Error("the hit should expose the whole snapshot")
		}
	})

	t.Run("a ref missing from the snapshot invalidates the whole lookup", func(t *testing.T) {
		c := cache.NewProgramCache(time.Minute)
		c.Replace(domain.SchemeUID, someProgramsByUid("progUid0001", "progUid0002"))

		if _, ok := c.Lookup(domain.SchemeUID, []string{"progUid0001", "progUid0003"}); ok {
			t.Error("a single unknown ref should force a rebuild")
		}
	})

	t.Run("a snapshot built under another scheme misses", func(t *testing.T) {
		c := cache.NewProgramCache(time.Minute)
		c.Replace(domain.SchemeUID, someProgramsByUid("progUid0001"))

		if _, ok := c.Lookup(domain.SchemeCode, []string{"progUid0001"}); ok {
			t.Error("scheme mismatch should miss")
		}
	})

	t.Run("an expired snapshot misses", func(t *testing.T) {
		c := cache.NewProgramCache(10 * time.Millisecond)
		c.Replace(domain.SchemeUID, someProgramsByUid("progUid0001"))

		time.Sleep(30 * time.Millisecond)

		if _, ok := c.Lookup(domain.SchemeUID, []string{"progUid0001"}); ok {
			t.Error("lookup after the TTL should miss")
		}
	})

	t.Run("Clear drops the snapshot", func(t *testing.T) {
		c := cache.NewProgramCache(time.Minute)
		c.Replace(domain.SchemeUID, someProgramsByUid("progUid0001"))
		c.Clear()

		if _, ok := c.Lookup(domain.SchemeUID, []string{"progUid0001"}); ok {
			t.Error("lookup after Clear should miss")
		}
	})

	t.Run("Replace swaps generations atomically for readers", func(t *testing.T) {
		c := cache.NewProgramCache(time.Minute)
		c.Replace(domain.SchemeUID, someProgramsByUid("progUid0001"))

		before, ok := c.Lookup(domain.SchemeUID, []string{"progUid0001"})
		if !ok {
			t.Fatal("lookup should hit")
		}

		c.Replace(domain.SchemeUID, someProgramsByUid("progUid0002"))

		// the generation handed out earlier is untouched
		if !cmp.KeysEq(before, someProgramsByUid("progUid0001")) {
			t.Error("a published generation should never mutate")
		}
		after, ok := c.Lookup(domain.SchemeUID, []string{"progUid0002"})
		if !ok {
			t.Fatal("lookup should hit the new generation")
		}
		if !cmp.KeysEq(after, someProgramsByUid("progUid0002")) {
			t.Error("the new generation should replace the old one")
		}
	})
}
