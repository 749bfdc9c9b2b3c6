package postgres

import (
	"context"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
)

// getDataElements resolves every data element referenced by the batch's
// data values in one batched query, keyed by data element key.
func getDataElements(
	ctx context.Context, conn kpool.Queryer,
	scheme domain.IdScheme, events []domain.Event,
) (map[string]*domain.DataElement, error) {
	byKey := map[string]*domain.DataElement{}

	seen := map[string]struct{}{}
	refs := []string{}
	for _, ev := range events {
		for _, dv := range ev.DataValues {
			if dv.DataElement == "" {
				continue
			}
			if _, ok := seen[dv.DataElement]; ok {
				continue
			}
			seen[dv.DataElement] = struct{}{}
			refs = append(refs, dv.DataElement)
		}
	}
	if len(refs) == 0 {
		return byKey, nil
	}

	const baseSelect = `
		select
			de."dataelementid", de."uid", coalesce(de."code", ''), de."name",
			coalesce(de."attributevalues", '{}'::jsonb),
			de."valuetype", coalesce(os."uid", '')
		from "dataelement" as de
		left join "optionset" as os using ("optionsetid")
	`

	var rows pgx.Rows
	var err error
	switch scheme.Kind {
	case domain.KindID:
		rows, err = conn.Query(ctx,
			baseSelect+`where de."dataelementid" = any($1::bigint[])`,
			asInt64s(refs),
		)
	case domain.KindUID:
		rows, err = conn.Query(ctx,
			baseSelect+`where de."uid" = any($1::text[])`, refs)
	case domain.KindCode:
		rows, err = conn.Query(ctx,
			baseSelect+`where de."code" = any($1::text[])`, refs)
	case domain.KindName:
		rows, err = conn.Query(ctx,
			baseSelect+`where de."name" = any($1::text[])`, refs)
	case domain.KindAttribute:
		rows, err = conn.Query(ctx,
			baseSelect+`where de."attributevalues" -> $2 ->> 'value' = any($1::text[])`,
			refs, scheme.Attribute,
		)
	}
	if err != nil {
		return nil, wrap("data elements", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attrValues pgtype.JSONB
		var valueType string
		de := &domain.DataElement{}
		if err := rows.Scan(
			&de.Id, &de.Uid, &de.Code, &de.Name, &attrValues, &valueType, &de.OptionSetUid,
		); err != nil {
			return nil, wrap("data elements", err)
		}
		de.AttributeValues = attrValues.Bytes
		de.ValueType = domain.ValueType(valueType)

		if key, ok := scheme.Resolve(de.Identifiable); ok {
			byKey[key] = de
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("data elements", err)
	}

	return byKey, nil
}
