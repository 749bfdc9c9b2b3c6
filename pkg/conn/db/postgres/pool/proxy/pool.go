package proxy

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
)

type Callback func(sql string)

// Pool proxies a pool.Pool and invokes callbacks around every query.
//
// Register callbacks with OnQuery / OnAfterQuery; they fire before and
// after each Exec / Query / QueryRow on every connection acquired from
// this pool. Tests use this to assert the batching invariant (exactly
// one query per supplier per batch); the loader uses it to feed query
// counters.
type Pool struct {
	Base   kpool.Pool
	events *events
}

type events struct {
	before []Callback
	after  []Callback
}

func (e *events) invoke(sql string, f func()) {
	for _, cb := range e.before {
		cb(sql)
	}
	defer func() {
		for _, cb := range e.after {
			cb(sql)
		}
	}()
	f()
}

func Wrap(p kpool.Pool) *Pool {
	return &Pool{Base: p, events: &events{}}
}

func (p *Pool) OnQuery(cb ...Callback) *Pool {
	p.events.before = append(p.events.before, cb...)
	return p
}

func (p *Pool) OnAfterQuery(cb ...Callback) *Pool {
	p.events.after = append(p.events.after, cb...)
	return p
}

var _ kpool.Pool = &Pool{}

func (p *Pool) Acquire(ctx context.Context) (kpool.Conn, error) {
	conn, err := p.Base.Acquire(ctx)
	if conn == nil {
		return nil, err
	}
	return &connProxy{base: conn, events: p.events}, err
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.Base.Ping(ctx)
}

type connProxy struct {
	base   kpool.Conn
	events *events
}

var _ kpool.Conn = &connProxy{}

func (c *connProxy) Release() {
	c.base.Release()
}

func (c *connProxy) Exec(ctx context.Context, sql string, arguments ...interface{}) (ctag pgconn.CommandTag, err error) {
	c.events.invoke(sql, func() {
		ctag, err = c.base.Exec(ctx, sql, arguments...)
	})
	return
}

func (c *connProxy) Query(ctx context.Context, sql string, args ...interface{}) (rs pgx.Rows, err error) {
	c.events.invoke(sql, func() {
		rs, err = c.base.Query(ctx, sql, args...)
	})
	return
}

func (c *connProxy) QueryRow(ctx context.Context, sql string, args ...interface{}) (r pgx.Row) {
	c.events.invoke(sql, func() {
		r = c.base.QueryRow(ctx, sql, args...)
	})
	return
}

func (c *connProxy) Ping(ctx context.Context) error {
	return c.base.Ping(ctx)
}
