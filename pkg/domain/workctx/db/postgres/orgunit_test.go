package postgres_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v4"

	"github.com/cohortlab/eventflow/pkg/cmp"
	"github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool/testpool"
	"github.com/cohortlab/eventflow/pkg/domain"
	kpgworkctx "github.com/cohortlab/eventflow/pkg/domain/workctx/db/postgres"
	"github.com/cohortlab/eventflow/pkg/utils/try"
)

// Under the ATTRIBUTE scheme the org-unit candidate set is narrowed to
// the units assigned to the batch's programs, and rows lacking the
// attribute are excluded from the result.
func TestLoad_OrgUnitsByAttributeScheme(t *testing.T) {
	ctx := context.Background()

	var orgUnitArgs []interface{}
	handler, _ := scriptDB()
	narrowing := func(sql string, args []interface{}) (pgx.Rows, error) {
		if strings.Contains(sql, `from "organisationunit" as ou`) {
			orgUnitArgs = args
			return testpool.NewRows(
				[]string{"id", "uid", "code", "name", "path", "attrs"},
				[]interface{}{
					int64(301), "orgUnit0001", "", "Clinic A", "/rootOu00001/orgUnit0001",
					`{"attrUid0001": {"value": "facility-7"}}`,
				},
				// no attribute value, so not indexable under the scheme
				[]interface{}{
					int64(302), "orgUnit0002", "", "Clinic B", "/rootOu00001/orgUnit0002", "{}",
				},
			), nil
		}
		return handler(sql, args)
	}
	loader := kpgworkctx.New(testpool.New(narrowing))

	opts := domain.DefaultImportOptions()
	opts.IdSchemes.OrgUnit = domain.SchemeAttribute("attrUid0001")

	events := []domain.Event{
		{Uid: "eventUid001", Program: "progUid0001", OrgUnit: "facility-7"},
		{Uid: "eventUid002", Program: "progUid0001", OrgUnit: "facility-7"},
	}
	wc := try.To(loader.Load(ctx, opts, events)).OrFatal(t)

	if len(orgUnitArgs) != 3 {
		t.Fatalf("the query should be narrowed to the programs' org units: args = %v", orgUnitArgs)
	}
	if refs, ok := orgUnitArgs[0].([]string); !ok || !cmp.SliceContentEq(refs, []string{"facility-7"}) {
		t.Errorf("unexpected refs: %v", orgUnitArgs[0])
	}
	if attr, ok := orgUnitArgs[1].(string); !ok || attr != "attrUid0001" {
		t.Errorf("unexpected attribute: %v", orgUnitArgs[1])
	}
	if narrowed, ok := orgUnitArgs[2].([]string); !ok ||
		!cmp.SliceContentEq(narrowed, []string{"orgUnit0001", "orgUnit0002"}) {
		t.Errorf("unexpected narrowing set: %v", orgUnitArgs[2])
	}

	ou, ok := wc.OrgUnit("facility-7")
	if !ok || ou.Uid != "orgUnit0001" {
		t.Errorf("the unit should be keyed by its attribute value: %+v", ou)
	}
	if wc.Stats().OrgUnits != 1 {
		t.Errorf("the attribute-less row should be excluded (got %d units)", wc.Stats().OrgUnits)
	}

	for _, evUid := range []string{"eventUid001", "eventUid002"} {
		if got, ok := wc.OrgUnitOf(evUid); !ok || got != ou {
			t.Errorf("%s should fan out to the resolved unit", evUid)
		}
	}
}
