package postgres

import (
	"context"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
)

const optionComboSelect = `
	select
		coc."categoryoptioncomboid", coc."uid", coalesce(coc."code", ''), coc."name",
		coalesce(coc."attributevalues", '{}'::jsonb), coalesce(cc."uid", '')
	from "categoryoptioncombo" as coc
	left join "categorycombo" as cc using ("categorycomboid")
`

// getOptionCombos resolves the explicit attribute-option-combo
// references of the batch, keyed by combo key. ID, UID, CODE and NAME
// resolve in one batched query; ATTRIBUTE falls back to one query per
// distinct reference, the jsonb predicate being too costly to batch
// over the whole combo table.
//
// Events carrying only a category-option list (no explicit combo
// reference) resolve downstream against the program's category combo;
// the loader only pre-fetches what it can batch.
func getOptionCombos(
	ctx context.Context, conn kpool.Queryer,
	scheme domain.IdScheme, events []domain.Event,
) (map[string]*domain.CategoryOptionCombo, error) {
	byKey := map[string]*domain.CategoryOptionCombo{}

	refs := collectRefs(events, func(ev domain.Event) string { return ev.AttributeOptionCombo })
	if len(refs) == 0 {
		return byKey, nil
	}

	if scheme.Kind == domain.KindAttribute {
		for _, ref := range refs {
			rows, err := conn.Query(
				ctx,
				optionComboSelect+`where coc."attributevalues" -> $2 ->> 'value' = $1`,
				ref, scheme.Attribute,
			)
			if err != nil {
				return nil, wrap("option combos", err)
			}
			if err := scanOptionCombos(rows, scheme, byKey); err != nil {
				return nil, err
			}
		}
		return byKey, nil
	}

	var rows pgx.Rows
	var err error
	switch scheme.Kind {
	case domain.KindID:
		rows, err = conn.Query(ctx,
			optionComboSelect+`where coc."categoryoptioncomboid" = any($1::bigint[])`,
			asInt64s(refs),
		)
	case domain.KindUID:
		rows, err = conn.Query(ctx,
			optionComboSelect+`where coc."uid" = any($1::text[])`, refs)
	case domain.KindCode:
		rows, err = conn.Query(ctx,
			optionComboSelect+`where coc."code" = any($1::text[])`, refs)
	case domain.KindName:
		rows, err = conn.Query(ctx,
			optionComboSelect+`where coc."name" = any($1::text[])`, refs)
	}
	if err != nil {
		return nil, wrap("option combos", err)
	}
	if err := scanOptionCombos(rows, scheme, byKey); err != nil {
		return nil, err
	}

	return byKey, nil
}

func scanOptionCombos(
	rows pgx.Rows, scheme domain.IdScheme, byKey map[string]*domain.CategoryOptionCombo,
) error {
	defer rows.Close()

	for rows.Next() {
		var attrValues pgtype.JSONB
		coc := &domain.CategoryOptionCombo{}
		if err := rows.Scan(
			&coc.Id, &coc.Uid, &coc.Code, &coc.Name, &attrValues, &coc.CategoryComboUid,
		); err != nil {
			return wrap("option combos", err)
		}
		coc.AttributeValues = attrValues.Bytes
		coc.Default = coc.Name == "default"

		if key, ok := scheme.Resolve(coc.Identifiable); ok {
			byKey[key] = coc
		}
	}
	return wrap("option combos", rows.Err())
}
