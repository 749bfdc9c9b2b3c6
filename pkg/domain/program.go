package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownProgramType = errors.New("unknown program type")

type ProgramType string

const (
	WithRegistration    ProgramType = "WITH_REGISTRATION"
	WithoutRegistration ProgramType = "WITHOUT_REGISTRATION"
)

func (p ProgramType) String() string {
	return string(p)
}

func AsProgramType(s string) (ProgramType, error) {
	switch ProgramType(s) {
	case WithRegistration, WithoutRegistration:
		return ProgramType(s), nil
	default:
		return ProgramType(s), fmt.Errorf("%w: %s", ErrUnknownProgramType, s)
	}
}

// Program is the fully hydrated program aggregate held by the program
// cache: stages, assigned org units and sharing are loaded wholesale and
// the aggregate is replaced, never mutated, on rebuild.
type Program struct {
	Identifiable
	Type                     ProgramType
	CategoryComboUid         string
	TrackedEntityTypeUid     string
	TrackedEntityTypeSharing Sharing
	Stages                   []*ProgramStage
	OrgUnitUids              map[string]struct{}
	Sharing                  Sharing
}

// StageByKey finds a stage of this program by its key under scheme.
func (p *Program) StageByKey(scheme IdScheme, key string) (*ProgramStage, bool) {
	for _, st := range p.Stages {
		if k, ok := scheme.Resolve(st.Identifiable); ok && k == key {
			return st, true
		}
	}
	return nil, false
}

// HasOrgUnit reports whether the org unit is assigned to this program.
func (p *Program) HasOrgUnit(uid string) bool {
	_, ok := p.OrgUnitUids[uid]
	return ok
}

// ProgramStage belongs to exactly one program. ProgramUid is the lookup
// key back to the owning program; the stage never embeds it.
type ProgramStage struct {
	Identifiable
	ProgramUid            string
	SortOrder             int
	Repeatable            bool
	MandatoryDataElements map[string]struct{}
	Sharing               Sharing
}
