package mocks

import (
	"context"
	"errors"

	"github.com/cohortlab/eventflow/pkg/domain"
	dbmock "github.com/cohortlab/eventflow/pkg/domain/internal/db/mock"
	"github.com/cohortlab/eventflow/pkg/domain/workctx"
	wdb "github.com/cohortlab/eventflow/pkg/domain/workctx/db"
)

type LoaderInterface struct {
	Impl struct {
		Load func(context.Context, domain.ImportOptions, []domain.Event) (*workctx.WorkContext, error)
	}
	Calls struct {
		Load dbmock.CallLog[struct {
			Opts   domain.ImportOptions
			Events []domain.Event
		}]
	}
}

func NewLoaderInterface() *LoaderInterface {
	return &LoaderInterface{}
}

var _ wdb.LoaderInterface = &LoaderInterface{}

func (li *LoaderInterface) Load(ctx context.Context, opts domain.ImportOptions, events []domain.Event) (*workctx.WorkContext, error) {
	li.Calls.Load = append(li.Calls.Load, struct {
		Opts   domain.ImportOptions
		Events []domain.Event
	}{
		Opts: opts, Events: events,
	})
	if li.Impl.Load != nil {
		return li.Impl.Load(ctx, opts, events)
	}
	panic(errors.New("it should no be called"))
}
