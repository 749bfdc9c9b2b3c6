package postgres

import (
	"context"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
)

// getEnrollments resolves each event's enrollment in two tiers, keyed
// by event uid.
//
// Tier 1 matches explicit enrollment references batch-wide. Tier 2
// covers events whose reference is blank or did not resolve: it follows
// the event-to-enrollment link already stored for the event uid, so it
// only helps updates of previously persisted events. Tier 1 wins when
// both tiers resolve the same event.
func getEnrollments(
	ctx context.Context, conn kpool.Queryer,
	events []domain.Event, programs map[string]*domain.Program,
) (map[string]*domain.Enrollment, error) {
	byEvent := map[string]*domain.Enrollment{}

	refs := collectRefs(events, func(ev domain.Event) string { return ev.Enrollment })
	if len(refs) > 0 {
		revIdx := reverseIndex(events, func(ev domain.Event) string { return ev.Enrollment })

		rows, err := conn.Query(
			ctx,
			`
			select
				pi."programinstanceid", pi."uid", pi."status", pi."deleted",
				coalesce(p."uid", ''), coalesce(tei."uid", '')
			from "programinstance" as pi
			inner join "program" as p using ("programid")
			left join "trackedentityinstance" as tei using ("trackedentityinstanceid")
			where pi."uid" = any($1::text[])
			`,
			refs,
		)
		if err != nil {
			return nil, wrap("enrollments", err)
		}
		defer rows.Close()

		for rows.Next() {
			en, err := scanEnrollment(rows.Scan)
			if err != nil {
				return nil, wrap("enrollments", err)
			}
			for _, evUid := range revIdx[en.Uid] {
				byEvent[evUid] = en
			}
		}
		if err := rows.Err(); err != nil {
			return nil, wrap("enrollments", err)
		}
	}

	// fallback tier: follow the stored event -> enrollment link
	missing := []string{}
	for _, ev := range events {
		if ev.Uid == "" {
			continue
		}
		if _, ok := byEvent[ev.Uid]; !ok {
			missing = append(missing, ev.Uid)
		}
	}
	if len(missing) > 0 {
		rows, err := conn.Query(
			ctx,
			`
			select
				psi."uid",
				pi."programinstanceid", pi."uid", pi."status", pi."deleted",
				coalesce(p."uid", ''), coalesce(tei."uid", '')
			from "programstageinstance" as psi
			inner join "programinstance" as pi using ("programinstanceid")
			inner join "program" as p on p."programid" = pi."programid"
			left join "trackedentityinstance" as tei
				on tei."trackedentityinstanceid" = pi."trackedentityinstanceid"
			where psi."uid" = any($1::text[])
			`,
			missing,
		)
		if err != nil {
			return nil, wrap("enrollments", err)
		}
		defer rows.Close()

		for rows.Next() {
			var evUid string
			en, err := scanEnrollment(func(dest ...interface{}) error {
				return rows.Scan(append([]interface{}{&evUid}, dest...)...)
			})
			if err != nil {
				return nil, wrap("enrollments", err)
			}
			if _, ok := byEvent[evUid]; ok {
				continue // explicit reference wins
			}
			byEvent[evUid] = en
		}
		if err := rows.Err(); err != nil {
			return nil, wrap("enrollments", err)
		}
	}

	// re-attach resolved programs to their enrollments
	byProgramUid := map[string]*domain.Program{}
	for _, p := range programs {
		byProgramUid[p.Uid] = p
	}
	for _, en := range byEvent {
		en.Program = byProgramUid[en.ProgramUid]
	}

	return byEvent, nil
}

func scanEnrollment(scan func(dest ...interface{}) error) (*domain.Enrollment, error) {
	en := &domain.Enrollment{}
	var status string
	if err := scan(
		&en.Id, &en.Uid, &status, &en.Deleted, &en.ProgramUid, &en.TrackedEntityUid,
	); err != nil {
		return nil, err
	}
	en.Status = domain.EnrollmentStatus(status)
	return en, nil
}
