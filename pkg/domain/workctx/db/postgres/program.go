package postgres

import (
	"context"

	"github.com/jackc/pgtype"
	slogcontext "github.com/veqryn/slog-context"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
	"github.com/cohortlab/eventflow/pkg/domain"
)

// getPrograms resolves the batch's program references against the
// process-wide cache. The cache holds every program aggregate; the
// returned map is filtered down to the batch's keys. Any referenced key
// missing from the current snapshot forces a full rebuild (there is no
// partial refresh).
func (l *loaderPG) getPrograms(
	ctx context.Context, conn kpool.Queryer,
	opts domain.ImportOptions, events []domain.Event,
) (map[string]*domain.Program, error) {
	scheme := opts.IdSchemes.Program

	refs := collectRefs(events, func(ev domain.Event) string { return ev.Program })
	if len(refs) == 0 {
		return map[string]*domain.Program{}, nil
	}

	byKey, ok := l.programs.Lookup(scheme, refs)
	if !ok {
		if l.metrics != nil {
			l.metrics.ProgramCacheMisses.Inc()
			l.metrics.ProgramCacheRebuilds.Inc()
		}
		var err error
		if byKey, err = loadAllPrograms(ctx, conn, scheme); err != nil {
			return nil, err
		}
		l.programs.Replace(scheme, byKey)
		slogcontext.FromCtx(ctx).Debug(
			"program cache rebuilt", "scheme", scheme.String(), "programs", len(byKey),
		)
	} else if l.metrics != nil {
		l.metrics.ProgramCacheHits.Inc()
	}

	result := map[string]*domain.Program{}
	for _, key := range refs {
		if p, ok := byKey[key]; ok {
			result[key] = p
		}
	}
	return result, nil
}

// loadAllPrograms rebuilds the whole program hierarchy in four batched
// queries: programs with stages, mandatory data elements, assigned org
// units, and sharing. The aggregates are assembled in memory and only
// then handed to the cache, so readers never see a partial hierarchy.
func loadAllPrograms(
	ctx context.Context, conn kpool.Queryer, scheme domain.IdScheme,
) (map[string]*domain.Program, error) {
	programs, stages, tetIds, err := getProgramsWithStages(ctx, conn)
	if err != nil {
		return nil, err
	}

	if err := attachMandatoryDataElements(ctx, conn, stages); err != nil {
		return nil, err
	}
	if err := attachProgramOrgUnits(ctx, conn, programs); err != nil {
		return nil, err
	}
	if err := attachSharing(ctx, conn, programs, stages, tetIds); err != nil {
		return nil, err
	}

	byKey := map[string]*domain.Program{}
	for _, p := range programs {
		if key, ok := scheme.Resolve(p.Identifiable); ok {
			byKey[key] = p
		}
	}
	return byKey, nil
}

// getProgramsWithStages loads programs joined to their stages as flat
// rows ordered by program id and groups them in memory. The returned
// tetIds map remembers each program's tracked entity type row id so
// sharing rows can be fanned back out; the id is not part of the
// domain type.
func getProgramsWithStages(
	ctx context.Context, conn kpool.Queryer,
) (map[int64]*domain.Program, map[int64]*domain.ProgramStage, map[int64]int64, error) {
	rows, err := conn.Query(
		ctx,
		`
		select
			p."programid", p."uid", coalesce(p."code", ''), p."name", p."type",
			coalesce(p."attributevalues", '{}'::jsonb),
			coalesce(cc."uid", ''), coalesce(tet."uid", ''), coalesce(p."trackedentitytypeid", 0),
			coalesce(p."publicaccess", ''),
			coalesce(ps."programstageid", 0), coalesce(ps."uid", ''), coalesce(ps."code", ''),
			coalesce(ps."name", ''), coalesce(ps."sort_order", 0),
			coalesce(ps."repeatable", false), coalesce(ps."publicaccess", '')
		from "program" as p
		left join "categorycombo" as cc using ("categorycomboid")
		left join "trackedentitytype" as tet using ("trackedentitytypeid")
		left join "programstage" as ps on ps."programid" = p."programid"
		order by p."programid"
		`,
	)
	if err != nil {
		return nil, nil, nil, wrap("programs", err)
	}
	defer rows.Close()

	programs := map[int64]*domain.Program{}
	stages := map[int64]*domain.ProgramStage{}
	tetIds := map[int64]int64{}

	for rows.Next() {
		var (
			pId                       int64
			pUid, pCode, pName, pType string
			attrValues                pgtype.JSONB
			ccUid, tetUid             string
			tetId                     int64
			pAccess                   string
			stId                      int64
			stUid, stCode, stName     string
			stSortOrder               int
			stRepeatable              bool
			stAccess                  string
		)
		if err := rows.Scan(
			&pId, &pUid, &pCode, &pName, &pType,
			&attrValues,
			&ccUid, &tetUid, &tetId,
			&pAccess,
			&stId, &stUid, &stCode, &stName, &stSortOrder,
			&stRepeatable, &stAccess,
		); err != nil {
			return nil, nil, nil, wrap("programs", err)
		}

		p, ok := programs[pId]
		if !ok {
			p = &domain.Program{
				Identifiable: domain.Identifiable{
					Id: pId, Uid: pUid, Code: pCode, Name: pName,
					AttributeValues: attrValues.Bytes,
				},
				Type:                 domain.ProgramType(pType),
				CategoryComboUid:     ccUid,
				TrackedEntityTypeUid: tetUid,
				OrgUnitUids:          map[string]struct{}{},
				Sharing:              domain.Sharing{PublicAccess: pAccess},
			}
			programs[pId] = p
			tetIds[pId] = tetId
		}

		if stId == 0 { // program without stages
			continue
		}
		st := &domain.ProgramStage{
			Identifiable: domain.Identifiable{
				Id: stId, Uid: stUid, Code: stCode, Name: stName,
			},
			ProgramUid:            pUid,
			SortOrder:             stSortOrder,
			Repeatable:            stRepeatable,
			MandatoryDataElements: map[string]struct{}{},
			Sharing:               domain.Sharing{PublicAccess: stAccess},
		}
		stages[stId] = st
		p.Stages = append(p.Stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, wrap("programs", err)
	}

	return programs, stages, tetIds, nil
}

func attachMandatoryDataElements(
	ctx context.Context, conn kpool.Queryer, stages map[int64]*domain.ProgramStage,
) error {
	rows, err := conn.Query(
		ctx,
		`
		select psd."programstageid", de."uid"
		from "programstagedataelement" as psd
		inner join "dataelement" as de using ("dataelementid")
		where psd."compulsory"
		`,
	)
	if err != nil {
		return wrap("mandatory data elements", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stageId int64
		var deUid string
		if err := rows.Scan(&stageId, &deUid); err != nil {
			return wrap("mandatory data elements", err)
		}
		if st, ok := stages[stageId]; ok {
			st.MandatoryDataElements[deUid] = struct{}{}
		}
	}
	return wrap("mandatory data elements", rows.Err())
}

func attachProgramOrgUnits(
	ctx context.Context, conn kpool.Queryer, programs map[int64]*domain.Program,
) error {
	rows, err := conn.Query(
		ctx,
		`
		select po."programid", ou."uid"
		from "program_organisationunits" as po
		inner join "organisationunit" as ou using ("organisationunitid")
		`,
	)
	if err != nil {
		return wrap("program org units", err)
	}
	defer rows.Close()

	for rows.Next() {
		var programId int64
		var ouUid string
		if err := rows.Scan(&programId, &ouUid); err != nil {
			return wrap("program org units", err)
		}
		if p, ok := programs[programId]; ok {
			p.OrgUnitUids[ouUid] = struct{}{}
		}
	}
	return wrap("program org units", rows.Err())
}

// attachSharing loads user- and group-level access rows for programs,
// program stages and tracked entity types in one union query, then fans
// each row out to its owning aggregate.
func attachSharing(
	ctx context.Context, conn kpool.Queryer,
	programs map[int64]*domain.Program, stages map[int64]*domain.ProgramStage,
	tetIds map[int64]int64,
) error {
	rows, err := conn.Query(
		ctx,
		`
		select 'P' as "kind", pua."programid" as "targetid",
			u."uid" as "useruid", '' as "groupuid", ua."access"
		from "programuseraccesses" as pua
		inner join "useraccess" as ua using ("useraccessid")
		inner join "userinfo" as u on u."userinfoid" = ua."userid"
		union all
		select 'P', pga."programid", '', ug."uid", ga."access"
		from "programusergroupaccesses" as pga
		inner join "usergroupaccess" as ga using ("usergroupaccessid")
		inner join "usergroup" as ug using ("usergroupid")
		union all
		select 'S', sua."programstageid", u."uid", '', ua."access"
		from "programstageuseraccesses" as sua
		inner join "useraccess" as ua using ("useraccessid")
		inner join "userinfo" as u on u."userinfoid" = ua."userid"
		union all
		select 'S', sga."programstageid", '', ug."uid", ga."access"
		from "programstageusergroupaccesses" as sga
		inner join "usergroupaccess" as ga using ("usergroupaccessid")
		inner join "usergroup" as ug using ("usergroupid")
		union all
		select 'T', tua."trackedentitytypeid", u."uid", '', ua."access"
		from "trackedentitytypeuseraccesses" as tua
		inner join "useraccess" as ua using ("useraccessid")
		inner join "userinfo" as u on u."userinfoid" = ua."userid"
		union all
		select 'T', tga."trackedentitytypeid", '', ug."uid", ga."access"
		from "trackedentitytypeusergroupaccesses" as tga
		inner join "usergroupaccess" as ga using ("usergroupaccessid")
		inner join "usergroup" as ug using ("usergroupid")
		`,
	)
	if err != nil {
		return wrap("sharing", err)
	}
	defer rows.Close()

	tetSharing := map[int64]domain.Sharing{}

	for rows.Next() {
		var kind string
		var targetId int64
		var userUid, groupUid, access string
		if err := rows.Scan(&kind, &targetId, &userUid, &groupUid, &access); err != nil {
			return wrap("sharing", err)
		}

		apply := func(s *domain.Sharing) {
			if userUid != "" {
				s.UserAccesses = append(s.UserAccesses, domain.UserAccess{UserUid: userUid, Access: access})
			}
			if groupUid != "" {
				s.GroupAccesses = append(s.GroupAccesses, domain.UserGroupAccess{GroupUid: groupUid, Access: access})
			}
		}

		switch kind {
		case "P":
			if p, ok := programs[targetId]; ok {
				apply(&p.Sharing)
			}
		case "S":
			if st, ok := stages[targetId]; ok {
				apply(&st.Sharing)
			}
		case "T":
			s := tetSharing[targetId]
			apply(&s)
			tetSharing[targetId] = s
		}
	}
	if err := rows.Err(); err != nil {
		return wrap("sharing", err)
	}

	for pId, p := range programs {
		if s, ok := tetSharing[tetIds[pId]]; ok {
			p.TrackedEntityTypeSharing = s
		}
	}
	return nil
}
