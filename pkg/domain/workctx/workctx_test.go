package workctx_test

import (
	"context"
	"testing"
	"time"

	"github.com/cohortlab/eventflow/pkg/cmp"
	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/domain/workctx"
	"github.com/cohortlab/eventflow/pkg/domain/workctx/cache"
	"github.com/cohortlab/eventflow/pkg/utils/try"
)

func TestWorkContext_PointLookups(t *testing.T) {
	stage := &domain.ProgramStage{
		Identifiable: domain.Identifiable{Uid: "stageUid001", Code: "VISIT_1"},
		ProgramUid:   "progUid0001",
	}
	program := &domain.Program{
		Identifiable: domain.Identifiable{Uid: "progUid0001"},
		Type:         domain.WithRegistration,
		Stages:       []*domain.ProgramStage{stage},
	}
	orgUnit := &domain.OrganisationUnit{
		Identifiable: domain.Identifiable{Uid: "orgUnit0001"},
	}

	opts := domain.DefaultImportOptions()
	wc := workctx.New(opts, workctx.Parts{
		Programs:      map[string]*domain.Program{"progUid0001": program},
		OrgUnits:      map[string]*domain.OrganisationUnit{"orgUnit0001": orgUnit},
		EventOrgUnits: map[string]string{"eventUid001": "orgUnit0001"},
		Enrollments: map[string]*domain.Enrollment{
			"eventUid001": {Uid: "enrollUid01", ProgramUid: "progUid0001"},
		},
		PersistedEvents: map[string]*domain.PersistedEvent{
			"eventUid001": {Uid: "eventUid001", EnrollmentUid: "enrollUid01"},
		},
		Notes: map[string][]domain.Note{
			"eventUid001": {{Value: "follow up next week"}},
		},
	}, nil)

	t.Run("entities resolve by their key", func(t *testing.T) {
		if p, ok := wc.Program("progUid0001"); !ok || p != program {
			t.Error("program should resolve")
		}
		if ou, ok := wc.OrgUnit("orgUnit0001"); !ok || ou != orgUnit {
			t.Error("org unit should resolve")
		}
	})

	t.Run("event-keyed entities resolve by event uid", func(t *testing.T) {
		if ou, ok := wc.OrgUnitOf("eventUid001"); !ok || ou != orgUnit {
			t.Error("the event's org unit should resolve")
		}
		if en, ok := wc.Enrollment("eventUid001"); !ok || en.Uid != "enrollUid01" {
			t.Error("the event's enrollment should resolve")
		}
		if pe, ok := wc.PersistedEvent("eventUid001"); !ok || pe.EnrollmentUid != "enrollUid01" {
			t.Error("the persisted event should resolve with its enrollment uid")
		}
		if notes := wc.Notes("eventUid001"); len(notes) != 1 {
			t.Errorf("unexpected notes: %v", notes)
		}
	})

	t.Run("program stages resolve across all programs of the batch", func(t *testing.T) {
		if st, ok := wc.ProgramStage("stageUid001"); !ok || st != stage {
			t.Error("the stage should resolve by uid")
		}
		if _, ok := wc.ProgramStage("stageUid999"); ok {
			t.Error("an unknown stage should not resolve")
		}
	})

	t.Run("missing entities report not-found, never panic", func(t *testing.T) {
		if _, ok := wc.Program("progUid9999"); ok {
			t.Error("unknown program")
		}
		if _, ok := wc.OrgUnitOf("eventUid999"); ok {
			t.Error("unknown event")
		}
		if _, ok := wc.TrackedEntity("eventUid999"); ok {
			t.Error("unknown tracked entity")
		}
		if _, ok := wc.AssignedUser("eventUid999"); ok {
			t.Error("unknown assigned user")
		}
		if _, ok := wc.DataElement("dataElem999"); ok {
			t.Error("unknown data element")
		}
		if _, ok := wc.CategoryOptionCombo("combo999999"); ok {
			t.Error("unknown option combo")
		}
		if notes := wc.Notes("eventUid999"); len(notes) != 0 {
			t.Errorf("unexpected notes: %v", notes)
		}
	})

	t.Run("stats count the resolved entities", func(t *testing.T) {
		stats := wc.Stats()
		if stats.Programs != 1 || stats.OrgUnits != 1 || stats.Enrollments != 1 ||
			stats.PersistedEvents != 1 || stats.Notes != 1 || stats.TrackedEntities != 0 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})
}

func TestWorkContext_IsolatedFromItsParts(t *testing.T) {
	parts := workctx.Parts{
		Programs: map[string]*domain.Program{
			"progUid0001": {Identifiable: domain.Identifiable{Uid: "progUid0001"}},
		},
	}
	wc := workctx.New(domain.DefaultImportOptions(), parts, nil)

	delete(parts.Programs, "progUid0001")
	parts.Programs["progUid0002"] = &domain.Program{}

	if _, ok := wc.Program("progUid0001"); !ok {
		t.Error("the context should keep its own copy of the part maps")
	}
	if _, ok := wc.Program("progUid0002"); ok {
		t.Error("later writes to the parts should not leak in")
	}
}

func TestWorkContext_GroupMembers(t *testing.T) {
	ctx := context.Background()

	loads := 0
	groups := cache.NewUserGroupCache(8, time.Minute, func(_ context.Context, groupUid string) (map[string]struct{}, error) {
		loads++
		return map[string]struct{}{"userUid0001": {}}, nil
	})
	wc := workctx.New(domain.DefaultImportOptions(), workctx.Parts{}, groups)

	members := try.To(wc.GroupMembers(ctx, "groupUid001")).OrFatal(t)
	if !cmp.MapEq(members, map[string]struct{}{"userUid0001": {}}) {
		t.Errorf("unexpected members: %v", members)
	}

	try.To(wc.GroupMembers(ctx, "groupUid001")).OrFatal(t)
	if loads != 1 {
		t.Errorf("unmatch loads: (actual, expected) = (%d, 1)", loads)
	}
}
