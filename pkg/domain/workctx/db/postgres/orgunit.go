package postgres

import (
	"context"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/utils/slices"
)

// getOrgUnits resolves the batch's org-unit references in one batched
// query and parses each unit's materialized path into its ancestor
// chain locally.
//
// Under the ATTRIBUTE scheme the jsonb predicate cannot use an index,
// so the candidate set is narrowed to the units assigned to the batch's
// programs (which is why the program supplier runs first).
//
// Returns the units keyed by their resolved key, plus event uid ->
// key so each event finds its unit.
func getOrgUnits(
	ctx context.Context, conn kpool.Queryer,
	scheme domain.IdScheme, events []domain.Event,
	programUnits map[string]struct{},
) (map[string]*domain.OrganisationUnit, map[string]string, error) {
	byKey := map[string]*domain.OrganisationUnit{}
	byEvent := map[string]string{}

	refs := collectRefs(events, func(ev domain.Event) string { return ev.OrgUnit })
	if len(refs) == 0 {
		return byKey, byEvent, nil
	}
	revIdx := reverseIndex(events, func(ev domain.Event) string { return ev.OrgUnit })

	const baseSelect = `
		select
			ou."organisationunitid", ou."uid", coalesce(ou."code", ''), ou."name",
			coalesce(ou."path", ''), coalesce(ou."attributevalues", '{}'::jsonb)
		from "organisationunit" as ou
	`

	var rows pgx.Rows
	var err error
	switch scheme.Kind {
	case domain.KindID:
		rows, err = conn.Query(ctx,
			baseSelect+`where ou."organisationunitid" = any($1::bigint[])`,
			asInt64s(refs),
		)
	case domain.KindUID:
		rows, err = conn.Query(ctx,
			baseSelect+`where ou."uid" = any($1::text[])`, refs)
	case domain.KindCode:
		rows, err = conn.Query(ctx,
			baseSelect+`where ou."code" = any($1::text[])`, refs)
	case domain.KindName:
		rows, err = conn.Query(ctx,
			baseSelect+`where ou."name" = any($1::text[])`, refs)
	case domain.KindAttribute:
		if len(programUnits) == 0 {
			rows, err = conn.Query(ctx,
				baseSelect+`where ou."attributevalues" -> $2 ->> 'value' = any($1::text[])`,
				refs, scheme.Attribute,
			)
		} else {
			rows, err = conn.Query(ctx,
				baseSelect+`
				where ou."attributevalues" -> $2 ->> 'value' = any($1::text[])
					and ou."uid" = any($3::text[])`,
				refs, scheme.Attribute, slices.KeysOf(programUnits),
			)
		}
	}
	if err != nil {
		return nil, nil, wrap("org units", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attrValues pgtype.JSONB
		ou := &domain.OrganisationUnit{}
		if err := rows.Scan(
			&ou.Id, &ou.Uid, &ou.Code, &ou.Name, &ou.Path, &attrValues,
		); err != nil {
			return nil, nil, wrap("org units", err)
		}
		ou.AttributeValues = attrValues.Bytes
		ou.BuildParentChain()

		key, ok := scheme.Resolve(ou.Identifiable)
		if !ok {
			// not indexable under this scheme (attribute absent)
			continue
		}
		byKey[key] = ou
		for _, evUid := range revIdx[key] {
			byEvent[evUid] = key
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, wrap("org units", err)
	}

	return byKey, byEvent, nil
}
