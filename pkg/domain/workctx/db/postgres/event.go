package postgres

import (
	"context"
	"encoding/json"

	slogcontext "github.com/veqryn/slog-context"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
)

// getPersistedEvents loads the already-stored rows for the batch's event
// uids, keyed by event uid. Only events being updated resolve here; the
// stored enrollment uid feeds the enrollment fallback.
//
// Rows whose stored geometry does not render as valid GeoJSON are
// dropped with a warning rather than failing the batch.
func getPersistedEvents(
	ctx context.Context, conn kpool.Queryer, events []domain.Event,
) (map[string]*domain.PersistedEvent, error) {
	byEvent := map[string]*domain.PersistedEvent{}

	uids := collectRefs(events, func(ev domain.Event) string { return ev.Uid })
	if len(uids) == 0 {
		return byEvent, nil
	}

	rows, err := conn.Query(
		ctx,
		`
		select
			psi."programstageinstanceid", psi."uid",
			coalesce(pi."programinstanceid", 0), coalesce(pi."uid", ''),
			coalesce(psi."programstageid", 0),
			psi."status", psi."deleted",
			coalesce(ST_AsGeoJSON(psi."geometry"), '')
		from "programstageinstance" as psi
		left join "programinstance" as pi using ("programinstanceid")
		where psi."uid" = any($1::text[])
		`,
		uids,
	)
	if err != nil {
		return nil, wrap("persisted events", err)
	}
	defer rows.Close()

	for rows.Next() {
		pe := &domain.PersistedEvent{}
		var status, geometry string
		if err := rows.Scan(
			&pe.Id, &pe.Uid, &pe.EnrollmentId, &pe.EnrollmentUid,
			&pe.ProgramStageId, &status, &pe.Deleted, &geometry,
		); err != nil {
			return nil, wrap("persisted events", err)
		}
		pe.Status = domain.EventStatus(status)
		if geometry != "" {
			if !json.Valid([]byte(geometry)) {
				slogcontext.FromCtx(ctx).Warn(
					"dropping persisted event with malformed geometry",
					"event", pe.Uid,
				)
				continue
			}
			pe.Geometry = []byte(geometry)
		}
		byEvent[pe.Uid] = pe
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("persisted events", err)
	}

	return byEvent, nil
}
