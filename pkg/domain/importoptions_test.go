package domain_test

import (
	"errors"
	"testing"

	"github.com/cohortlab/eventflow/pkg/domain"
)

func TestImportOptions_Validate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		if err := domain.DefaultImportOptions().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("an ATTRIBUTE scheme without an attribute id is rejected", func(t *testing.T) {
		opts := domain.DefaultImportOptions()
		opts.IdSchemes.OrgUnit = domain.IdScheme{Kind: domain.KindAttribute}

		if err := opts.Validate(); !errors.Is(err, domain.ErrAttributeRequired) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("an unknown scheme kind is rejected", func(t *testing.T) {
		opts := domain.DefaultImportOptions()
		opts.IdSchemes.DataElement = domain.IdScheme{Kind: "SHORTNAME"}

		if err := opts.Validate(); !errors.Is(err, domain.ErrUnknownIdScheme) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
