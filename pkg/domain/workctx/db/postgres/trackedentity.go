package postgres

import (
	"context"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
)

// getTrackedEntities resolves the batch's tracked entity references
// (always by uid) and fans each row out to the events carrying it.
// Keyed by event uid.
func getTrackedEntities(
	ctx context.Context, conn kpool.Queryer, events []domain.Event,
) (map[string]*domain.TrackedEntity, error) {
	byEvent := map[string]*domain.TrackedEntity{}

	refs := collectRefs(events, func(ev domain.Event) string { return ev.TrackedEntity })
	if len(refs) == 0 {
		return byEvent, nil
	}
	revIdx := reverseIndex(events, func(ev domain.Event) string { return ev.TrackedEntity })

	rows, err := conn.Query(
		ctx,
		`
		select
			tei."trackedentityinstanceid", tei."uid",
			coalesce(tet."uid", ''), coalesce(ou."uid", ''),
			tei."inactive", tei."deleted"
		from "trackedentityinstance" as tei
		left join "trackedentitytype" as tet using ("trackedentitytypeid")
		left join "organisationunit" as ou
			on ou."organisationunitid" = tei."organisationunitid"
		where tei."uid" = any($1::text[])
		`,
		refs,
	)
	if err != nil {
		return nil, wrap("tracked entities", err)
	}
	defer rows.Close()

	for rows.Next() {
		te := &domain.TrackedEntity{}
		if err := rows.Scan(
			&te.Id, &te.Uid, &te.TypeUid, &te.OrgUnitUid, &te.Inactive, &te.Deleted,
		); err != nil {
			return nil, wrap("tracked entities", err)
		}
		for _, evUid := range revIdx[te.Uid] {
			byEvent[evUid] = te
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("tracked entities", err)
	}

	return byEvent, nil
}
