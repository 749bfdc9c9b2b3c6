package domain

import "fmt"

// IdSchemes fixes, per entity type, which identifier scheme the batch's
// references use. Set once per import call and immutable afterwards.
type IdSchemes struct {
	Program             IdScheme
	ProgramStage        IdScheme
	OrgUnit             IdScheme
	CategoryOptionCombo IdScheme
	DataElement         IdScheme
}

// DefaultIdSchemes resolves everything by UID.
func DefaultIdSchemes() IdSchemes {
	return IdSchemes{
		Program:             SchemeUID,
		ProgramStage:        SchemeUID,
		OrgUnit:             SchemeUID,
		CategoryOptionCombo: SchemeUID,
		DataElement:         SchemeUID,
	}
}

// ImportOptions is the per-batch import configuration.
type ImportOptions struct {
	IdSchemes IdSchemes

	// SkipCache force-clears the process-wide caches before loading.
	SkipCache bool

	// User is the uid of the importing user.
	User string
}

func DefaultImportOptions() ImportOptions {
	return ImportOptions{IdSchemes: DefaultIdSchemes()}
}

// Validate rejects misconfigured identifier schemes before any supplier
// runs. Failures are client-facing bad-request errors.
func (o ImportOptions) Validate() error {
	for name, s := range map[string]IdScheme{
		"program":             o.IdSchemes.Program,
		"programStage":        o.IdSchemes.ProgramStage,
		"orgUnit":             o.IdSchemes.OrgUnit,
		"categoryOptionCombo": o.IdSchemes.CategoryOptionCombo,
		"dataElement":         o.IdSchemes.DataElement,
	} {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("idScheme for %s: %w", name, err)
		}
	}
	return nil
}
