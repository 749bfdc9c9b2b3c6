package postgres

import (
	"context"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/utils/slices"
	"github.com/cohortlab/eventflow/pkg/utils/tuple"
)

// getNotes returns, per event uid, the event's notes not yet persisted.
// One query checks which incoming note uids already exist; notes without
// a uid are always new.
func getNotes(
	ctx context.Context, conn kpool.Queryer, events []domain.Event,
) (map[string][]domain.Note, error) {
	noteUids := []string{}
	seen := map[string]struct{}{}
	for _, ev := range events {
		for _, note := range ev.Notes {
			if note.Uid == "" {
				continue
			}
			if _, ok := seen[note.Uid]; ok {
				continue
			}
			seen[note.Uid] = struct{}{}
			noteUids = append(noteUids, note.Uid)
		}
	}

	existing := map[string]struct{}{}
	if len(noteUids) > 0 {
		rows, err := conn.Query(
			ctx,
			`select "uid" from "trackedentitycomment" where "uid" = any($1::text[])`,
			noteUids,
		)
		if err != nil {
			return nil, wrap("notes", err)
		}
		defer rows.Close()

		for rows.Next() {
			var uid string
			if err := rows.Scan(&uid); err != nil {
				return nil, wrap("notes", err)
			}
			existing[uid] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			return nil, wrap("notes", err)
		}
	}

	newNotes := []tuple.Pair[string, domain.Note]{}
	for _, ev := range events {
		if ev.Uid == "" {
			continue
		}
		for _, note := range ev.Notes {
			if _, ok := existing[note.Uid]; ok {
				continue
			}
			newNotes = append(newNotes, tuple.PairOf(ev.Uid, note))
		}
	}

	return slices.ToMultiMap(newNotes, tuple.Pair[string, domain.Note].Decompose), nil
}
