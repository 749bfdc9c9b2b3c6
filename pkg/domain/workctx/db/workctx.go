package db

import (
	"context"

	"github.com/cohortlab/eventflow/pkg/domain"
	"github.com/cohortlab/eventflow/pkg/domain/workctx"
)

// LoaderInterface assembles the work context for one import batch.
type LoaderInterface interface {
	// Load resolves every entity referenced by the batch in a bounded
	// number of batched queries and returns the read-only context.
	//
	// Missing entities are not errors: the loader over-supplies and
	// leaves "required but absent" decisions to downstream validation.
	// Load fails only for misconfigured import options or
	// infrastructure faults.
	Load(ctx context.Context, opts domain.ImportOptions, events []domain.Event) (*workctx.WorkContext, error)
}
