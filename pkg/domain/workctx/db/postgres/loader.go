package postgres

import (
	"context"

	slogcontext "github.com/veqryn/slog-context"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool/proxy"
	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/domain/workctx"
	"github.com/cohortlab/eventflow/pkg/domain/workctx/cache"
	wdb "github.com/cohortlab/eventflow/pkg/domain/workctx/db"
	"github.com/cohortlab/eventflow/pkg/metrics"
)

type loaderPG struct { // implements wdb.LoaderInterface

	// connection pool used for all supplier queries
	pool kpool.Pool

	programs   *cache.ProgramCache
	userGroups *cache.UserGroupCache
	metrics    *metrics.Importer
}

var _ wdb.LoaderInterface = &loaderPG{}

type Option func(*loaderPG) *loaderPG

// WithProgramCache substitutes the process-wide program cache.
func WithProgramCache(c *cache.ProgramCache) Option {
	return func(l *loaderPG) *loaderPG {
		l.programs = c
		return l
	}
}

// WithUserGroupCache substitutes the group membership cache.
func WithUserGroupCache(c *cache.UserGroupCache) Option {
	return func(l *loaderPG) *loaderPG {
		l.userGroups = c
		return l
	}
}

// WithMetrics attaches collectors; the pool is proxied so every query
// the loader sends is counted.
func WithMetrics(m *metrics.Importer) Option {
	return func(l *loaderPG) *loaderPG {
		l.metrics = m
		return l
	}
}

// args:
//   - pool: connection pool used to query
//   - option: see WithProgramCache, WithUserGroupCache, WithMetrics
func New(pool kpool.Pool, option ...Option) *loaderPG {
	l := &loaderPG{
		pool:     pool,
		programs: cache.NewProgramCache(0),
	}
	for _, opt := range option {
		l = opt(l)
	}
	if l.metrics != nil {
		l.pool = proxy.Wrap(l.pool).OnQuery(func(string) {
			l.metrics.Queries.Inc()
		})
	}
	if l.userGroups == nil {
		l.userGroups = cache.NewUserGroupCache(0, 0, groupLoader(l.pool, l.metrics))
	}
	return l
}

// Load runs the suppliers in dependency order and assembles the
// context. Any supplier may return an empty map; assembly never fails
// for missing entities.
func (l *loaderPG) Load(ctx context.Context, opts domain.ImportOptions, events []domain.Event) (*workctx.WorkContext, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.SkipCache {
		l.programs.Clear()
		l.userGroups.Clear()
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, wrap("acquire", err)
	}
	defer conn.Release()

	parts := workctx.Parts{}

	if parts.Programs, err = l.getPrograms(ctx, conn, opts, events); err != nil {
		return nil, err
	}

	programUnits := map[string]struct{}{}
	for _, p := range parts.Programs {
		for uid := range p.OrgUnitUids {
			programUnits[uid] = struct{}{}
		}
	}
	if parts.OrgUnits, parts.EventOrgUnits, err = getOrgUnits(
		ctx, conn, opts.IdSchemes.OrgUnit, events, programUnits,
	); err != nil {
		return nil, err
	}

	if parts.TrackedEntities, err = getTrackedEntities(ctx, conn, events); err != nil {
		return nil, err
	}
	if parts.Enrollments, err = getEnrollments(ctx, conn, events, parts.Programs); err != nil {
		return nil, err
	}
	if parts.PersistedEvents, err = getPersistedEvents(ctx, conn, events); err != nil {
		return nil, err
	}
	if parts.OptionCombos, err = getOptionCombos(
		ctx, conn, opts.IdSchemes.CategoryOptionCombo, events,
	); err != nil {
		return nil, err
	}
	if parts.DataElements, err = getDataElements(
		ctx, conn, opts.IdSchemes.DataElement, events,
	); err != nil {
		return nil, err
	}
	if parts.Notes, err = getNotes(ctx, conn, events); err != nil {
		return nil, err
	}
	if parts.AssignedUsers, err = getAssignedUsers(ctx, conn, events); err != nil {
		return nil, err
	}

	wc := workctx.New(opts, parts, l.userGroups)

	slogcontext.FromCtx(ctx).Debug(
		"work context assembled",
		"events", len(events),
		"programs", wc.Stats().Programs,
		"orgUnits", wc.Stats().OrgUnits,
		"enrollments", wc.Stats().Enrollments,
	)

	return wc, nil
}

// groupLoader is the miss path of the user-group cache: one query per
// group, joining membership to user info.
func groupLoader(pool kpool.Pool, m *metrics.Importer) cache.GroupLoader {
	return func(ctx context.Context, groupUid string) (map[string]struct{}, error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, wrap("user groups", err)
		}
		defer conn.Release()

		rows, err := conn.Query(
			ctx,
			`
			select u."uid"
			from "usergroupmembers" as ugm
			inner join "usergroup" as ug using ("usergroupid")
			inner join "userinfo" as u on u."userinfoid" = ugm."userid"
			where ug."uid" = $1
			`,
			groupUid,
		)
		if err != nil {
			return nil, wrap("user groups", err)
		}
		defer rows.Close()

		members := map[string]struct{}{}
		for rows.Next() {
			var uid string
			if err := rows.Scan(&uid); err != nil {
				return nil, wrap("user groups", err)
			}
			members[uid] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			return nil, wrap("user groups", err)
		}

		if m != nil {
			m.UserGroupLoads.Inc()
		}
		return members, nil
	}
}
