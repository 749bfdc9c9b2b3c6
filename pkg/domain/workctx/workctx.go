// Package workctx defines the per-batch work context: the read-only
// aggregate of every entity an import batch references, assembled once
// by the loader and consumed by the validation and persistence stages.
package workctx

import (
	"context"

	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/domain/workctx/cache"
)

// Parts carries the supplier outputs into New. Maps keyed "by event
// uid" hold the entity each event resolved to; the others are keyed by
// the entity's own key under the batch's id scheme.
type Parts struct {
	Programs        map[string]*domain.Program             // by program key
	OrgUnits        map[string]*domain.OrganisationUnit    // by org unit key
	EventOrgUnits   map[string]string                      // event uid -> org unit key
	TrackedEntities map[string]*domain.TrackedEntity       // by event uid
	Enrollments     map[string]*domain.Enrollment          // by event uid
	PersistedEvents map[string]*domain.PersistedEvent      // by event uid
	OptionCombos    map[string]*domain.CategoryOptionCombo // by combo key
	DataElements    map[string]*domain.DataElement         // by data element key
	AssignedUsers   map[string]*domain.User                // by event uid
	Notes           map[string][]domain.Note               // by event uid, new notes only
}

// WorkContext is read-only after construction. It lives for one import
// call; nothing in it is shared across batches except the user-group
// cache handle.
type WorkContext struct {
	opts  domain.ImportOptions
	parts Parts

	userGroups *cache.UserGroupCache
}

// New copies the part maps into a fresh context. Nil maps become empty
// ones, so point lookups never distinguish "no entities of this type"
// from "none resolved".
func New(opts domain.ImportOptions, parts Parts, userGroups *cache.UserGroupCache) *WorkContext {
	return &WorkContext{
		opts: opts,
		parts: Parts{
			Programs:        copyMap(parts.Programs),
			OrgUnits:        copyMap(parts.OrgUnits),
			EventOrgUnits:   copyMap(parts.EventOrgUnits),
			TrackedEntities: copyMap(parts.TrackedEntities),
			Enrollments:     copyMap(parts.Enrollments),
			PersistedEvents: copyMap(parts.PersistedEvents),
			OptionCombos:    copyMap(parts.OptionCombos),
			DataElements:    copyMap(parts.DataElements),
			AssignedUsers:   copyMap(parts.AssignedUsers),
			Notes:           copyMap(parts.Notes),
		},
		userGroups: userGroups,
	}
}

func copyMap[V any](m map[string]V) map[string]V {
	ret := make(map[string]V, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

func (w *WorkContext) Options() domain.ImportOptions {
	return w.opts
}

// Program looks up a program by its key under the batch's scheme.
func (w *WorkContext) Program(key string) (*domain.Program, bool) {
	p, ok := w.parts.Programs[key]
	return p, ok
}

// ProgramStage finds a stage by its key under the batch's program-stage
// scheme, scanning every program's stages. Programs are few relative to
// events, so the linear scan is acceptable and keeps the context free
// of a second stage index.
func (w *WorkContext) ProgramStage(key string) (*domain.ProgramStage, bool) {
	scheme := w.opts.IdSchemes.ProgramStage
	for _, p := range w.parts.Programs {
		if st, ok := p.StageByKey(scheme, key); ok {
			return st, true
		}
	}
	return nil, false
}

// OrgUnit looks up an org unit by its key under the batch's scheme.
func (w *WorkContext) OrgUnit(key string) (*domain.OrganisationUnit, bool) {
	ou, ok := w.parts.OrgUnits[key]
	return ou, ok
}

// OrgUnitOf returns the org unit the event resolved to.
func (w *WorkContext) OrgUnitOf(eventUid string) (*domain.OrganisationUnit, bool) {
	key, ok := w.parts.EventOrgUnits[eventUid]
	if !ok {
		return nil, false
	}
	return w.OrgUnit(key)
}

func (w *WorkContext) TrackedEntity(eventUid string) (*domain.TrackedEntity, bool) {
	te, ok := w.parts.TrackedEntities[eventUid]
	return te, ok
}

func (w *WorkContext) Enrollment(eventUid string) (*domain.Enrollment, bool) {
	en, ok := w.parts.Enrollments[eventUid]
	return en, ok
}

// PersistedEvent returns the already-stored row for the event uid, set
// only for updates of previously imported events.
func (w *WorkContext) PersistedEvent(eventUid string) (*domain.PersistedEvent, bool) {
	pe, ok := w.parts.PersistedEvents[eventUid]
	return pe, ok
}

func (w *WorkContext) CategoryOptionCombo(key string) (*domain.CategoryOptionCombo, bool) {
	coc, ok := w.parts.OptionCombos[key]
	return coc, ok
}

func (w *WorkContext) DataElement(key string) (*domain.DataElement, bool) {
	de, ok := w.parts.DataElements[key]
	return de, ok
}

func (w *WorkContext) AssignedUser(eventUid string) (*domain.User, bool) {
	u, ok := w.parts.AssignedUsers[eventUid]
	return u, ok
}

// Notes returns the event's notes that are not yet persisted.
func (w *WorkContext) Notes(eventUid string) []domain.Note {
	return w.parts.Notes[eventUid]
}

// GroupMembers resolves a user group's member set through the shared
// cache. ACL entries hold group uids only; this is the lookup side.
func (w *WorkContext) GroupMembers(ctx context.Context, groupUid string) (map[string]struct{}, error) {
	return w.userGroups.Members(ctx, groupUid)
}

// Stats summarizes map sizes, for logging and tests.
type Stats struct {
	Programs, OrgUnits, TrackedEntities, Enrollments,
	PersistedEvents, OptionCombos, DataElements, AssignedUsers, Notes int
}

func (w *WorkContext) Stats() Stats {
	return Stats{
		Programs:        len(w.parts.Programs),
		OrgUnits:        len(w.parts.OrgUnits),
		TrackedEntities: len(w.parts.TrackedEntities),
		Enrollments:     len(w.parts.Enrollments),
		PersistedEvents: len(w.parts.PersistedEvents),
		OptionCombos:    len(w.parts.OptionCombos),
		DataElements:    len(w.parts.DataElements),
		AssignedUsers:   len(w.parts.AssignedUsers),
		Notes:           len(w.parts.Notes),
	}
}
