package postgres

import (
	"context"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
)

// getAssignedUsers resolves the batch's assigned-user references
// (usernames) in one batched query, keyed by event uid.
func getAssignedUsers(
	ctx context.Context, conn kpool.Queryer, events []domain.Event,
) (map[string]*domain.User, error) {
	byEvent := map[string]*domain.User{}

	refs := collectRefs(events, func(ev domain.Event) string { return ev.AssignedUser })
	if len(refs) == 0 {
		return byEvent, nil
	}
	revIdx := reverseIndex(events, func(ev domain.Event) string { return ev.AssignedUser })

	rows, err := conn.Query(
		ctx,
		`
		select u."userinfoid", u."uid", u."username", coalesce(u."disabled", false)
		from "userinfo" as u
		where u."username" = any($1::text[])
		`,
		refs,
	)
	if err != nil {
		return nil, wrap("assigned users", err)
	}
	defer rows.Close()

	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.Id, &u.Uid, &u.Username, &u.Disabled); err != nil {
			return nil, wrap("assigned users", err)
		}
		for _, evUid := range revIdx[u.Username] {
			byEvent[evUid] = u
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("assigned users", err)
	}

	return byEvent, nil
}
