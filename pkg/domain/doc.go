// Package domain holds the entity model of the event-import pipeline:
// incoming events, the metadata they reference (programs, org units,
// tracked entities, enrollments, option combos, data elements, users)
// and the identifier schemes used to resolve references to rows.
//
// Types here are plain values with no persistence concerns; loading
// them is the job of pkg/domain/workctx/db.
package domain
