package domain_test

import (
	"errors"
	"testing"

	"github.com/cohortlab/eventflow/pkg/domain"
)

func TestIdScheme_Resolve(t *testing.T) {
	row := domain.Identifiable{
		Id: 42, Uid: "a1b2c3d4e5f", Code: "MALARIA_CASE", Name: "Malaria case",
		AttributeValues: []byte(`{"attrUid0001": {"value": "ext-7"}, "attrUid0002": {"value": ""}}`),
	}

	for name, testcase := range map[string]struct {
		scheme  domain.IdScheme
		row     domain.Identifiable
		wantKey string
		wantOk  bool
	}{
		"ID resolves to the decimal row id": {
			scheme: domain.SchemeID, row: row, wantKey: "42", wantOk: true,
		},
		"ID of a row without id is not indexable": {
			scheme: domain.SchemeID, row: domain.Identifiable{Uid: "a1b2c3d4e5f"},
		},
		"UID resolves to the uid": {
			scheme: domain.SchemeUID, row: row, wantKey: "a1b2c3d4e5f", wantOk: true,
		},
		"CODE resolves to the code": {
			scheme: domain.SchemeCode, row: row, wantKey: "MALARIA_CASE", wantOk: true,
		},
		"CODE of a codeless row is not indexable": {
			scheme: domain.SchemeCode, row: domain.Identifiable{Uid: "a1b2c3d4e5f"},
		},
		"NAME resolves to the name": {
			scheme: domain.SchemeName, row: row, wantKey: "Malaria case", wantOk: true,
		},
		"ATTRIBUTE resolves to the attribute value": {
			scheme: domain.SchemeAttribute("attrUid0001"), row: row,
			wantKey: "ext-7", wantOk: true,
		},
		"ATTRIBUTE with an absent attribute is not indexable": {
			scheme: domain.SchemeAttribute("attrUid9999"), row: row,
		},
		"ATTRIBUTE with an empty value is not indexable": {
			scheme: domain.SchemeAttribute("attrUid0002"), row: row,
		},
		"ATTRIBUTE of a row without attribute values is not indexable": {
			scheme: domain.SchemeAttribute("attrUid0001"),
			row:    domain.Identifiable{Uid: "a1b2c3d4e5f"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			key, ok := testcase.scheme.Resolve(testcase.row)
			if ok != testcase.wantOk {
				t.Fatalf("unmatch ok: (actual, expected) = (%v, %v)", ok, testcase.wantOk)
			}
			if key != testcase.wantKey {
				t.Errorf("unmatch key: (actual, expected) = (%q, %q)", key, testcase.wantKey)
			}
		})
	}
}

func TestIdScheme_Validate(t *testing.T) {
	t.Run("ATTRIBUTE without an attribute id is rejected", func(t *testing.T) {
		err := domain.IdScheme{Kind: domain.KindAttribute}.Validate()
		if !errors.Is(err, domain.ErrAttributeRequired) {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("unknown kind is rejected", func(t *testing.T) {
		err := domain.IdScheme{Kind: "GUID"}.Validate()
		if !errors.Is(err, domain.ErrUnknownIdScheme) {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("well-formed schemes pass", func(t *testing.T) {
		for _, s := range []domain.IdScheme{
			domain.SchemeID, domain.SchemeUID, domain.SchemeCode, domain.SchemeName,
			domain.SchemeAttribute("attrUid0001"),
		} {
			if err := s.Validate(); err != nil {
				t.Errorf("%s: unexpected error: %v", s, err)
			}
		}
	})
}
