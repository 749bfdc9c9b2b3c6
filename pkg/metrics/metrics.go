// Package metrics exposes prometheus collectors for the work-context
// loader. Collectors are registered on a caller-supplied registerer so
// library users (and tests) control registration.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Importer struct {
	// Queries counts SQL queries sent while loading work contexts.
	Queries prometheus.Counter

	// ProgramCacheHits / Misses / Rebuilds describe the program cache.
	// A miss always implies a rebuild; Rebuilds also counts forced
	// (skipCache) reloads.
	ProgramCacheHits     prometheus.Counter
	ProgramCacheMisses   prometheus.Counter
	ProgramCacheRebuilds prometheus.Counter

	// UserGroupLoads counts group-membership queries (cache misses).
	UserGroupLoads prometheus.Counter
}

func NewImporter(reg prometheus.Registerer) *Importer {
	m := &Importer{
		Queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventflow", Subsystem: "workctx",
			Name: "queries_total",
			Help: "SQL queries issued while loading work contexts.",
		}),
		ProgramCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventflow", Subsystem: "workctx",
			Name: "program_cache_hits_total",
			Help: "Program cache lookups answered from the cache.",
		}),
		ProgramCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventflow", Subsystem: "workctx",
			Name: "program_cache_misses_total",
			Help: "Program cache lookups requiring a rebuild.",
		}),
		ProgramCacheRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventflow", Subsystem: "workctx",
			Name: "program_cache_rebuilds_total",
			Help: "Full program cache rebuilds, including forced ones.",
		}),
		UserGroupLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventflow", Subsystem: "workctx",
			Name: "user_group_loads_total",
			Help: "User group membership loads (cache misses).",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Queries,
			m.ProgramCacheHits, m.ProgramCacheMisses, m.ProgramCacheRebuilds,
			m.UserGroupLoads,
		)
	}
	return m
}
