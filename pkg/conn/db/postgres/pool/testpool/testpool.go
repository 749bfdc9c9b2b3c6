// Package testpool provides an in-memory stand-in for the postgres
// pool, scripted per test. Queries are dispatched to a Handler which
// inspects the SQL text and returns canned rows.
package testpool

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"
	"github.com/jackc/pgx/v4"

	kpool "github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool"
)

// Handler receives every query sent to the pool.
type Handler func(sql string, args []interface{}) (pgx.Rows, error)

type Pool struct {
	handler Handler
}

var _ kpool.Pool = &Pool{}

func New(handler Handler) *Pool {
	return &Pool{handler: handler}
}

// NoQueries fails the test on any query. Use it for batches that must
// not touch the database.
func NoQueries(t interface{ Errorf(string, ...any) }) *Pool {
	return New(func(sql string, args []interface{}) (pgx.Rows, error) {
		t.Errorf("unexpected query: %s", sql)
		return NewRows(nil), nil
	})
}

func (p *Pool) Acquire(ctx context.Context) (kpool.Conn, error) {
	return &conn{handler: p.handler}, nil
}

func (p *Pool) Ping(ctx context.Context) error {
	return nil
}

type conn struct {
	handler Handler
}

var _ kpool.Conn = &conn{}

func (c *conn) Release() {}

func (c *conn) Ping(ctx context.Context) error {
	return nil
}

func (c *conn) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	rows, err := c.handler(sql, arguments)
	if rows != nil {
		rows.Close()
	}
	return pgconn.CommandTag("SELECT 0"), err
}

func (c *conn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return c.handler(sql, args)
}

func (c *conn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	rows, err := c.handler(sql, args)
	return &row{rows: rows, err: err}
}

type row struct {
	rows pgx.Rows
	err  error
}

func (r *row) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	defer r.rows.Close()
	if !r.rows.Next() {
		return pgx.ErrNoRows
	}
	return r.rows.Scan(dest...)
}

// Rows replays canned result rows as pgx.Rows.
type Rows struct {
	columns []string
	rows    [][]interface{}
	nth     int
	err     error
	closed  bool
}

var _ pgx.Rows = &Rows{}

// NewRows builds canned rows. Each row must have len(columns) values.
func NewRows(columns []string, rows ...[]interface{}) *Rows {
	return &Rows{columns: columns, nth: -1, rows: rows}
}

// Failing returns rows whose Err reports err after iteration.
func Failing(err error) *Rows {
	return &Rows{nth: -1, err: err}
}

func (r *Rows) Close() {
	r.closed = true
}

func (r *Rows) Err() error {
	return r.err
}

func (r *Rows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag(fmt.Sprintf("SELECT %d", len(r.rows)))
}

func (r *Rows) FieldDescriptions() []pgproto3.FieldDescription {
	fds := make([]pgproto3.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgproto3.FieldDescription{Name: []byte(c)}
	}
	return fds
}

func (r *Rows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	r.nth++
	return r.nth < len(r.rows)
}

func (r *Rows) Scan(dest ...interface{}) error {
	if r.nth < 0 || len(r.rows) <= r.nth {
		return errors.New("testpool: Scan without Next")
	}
	vals := r.rows[r.nth]
	if len(vals) != len(dest) {
		return fmt.Errorf("testpool: %d destinations for %d columns", len(dest), len(vals))
	}
	for i, d := range dest {
		if err := assign(d, vals[i]); err != nil {
			return fmt.Errorf("testpool: column %d: %w", i, err)
		}
	}
	return nil
}

func (r *Rows) Values() ([]interface{}, error) {
	if r.nth < 0 || len(r.rows) <= r.nth {
		return nil, errors.New("testpool: Values without Next")
	}
	return r.rows[r.nth], nil
}

func (r *Rows) RawValues() [][]byte {
	return nil
}

type scanner interface {
	Scan(src interface{}) error
}

func assign(dst interface{}, src interface{}) error {
	if sc, ok := dst.(scanner); ok {
		return sc.Scan(src)
	}

	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("destination %T is not a pointer", dst)
	}
	ev := dv.Elem()

	if src == nil {
		ev.Set(reflect.Zero(ev.Type()))
		return nil
	}

	sv := reflect.ValueOf(src)
	switch {
	case sv.Type().AssignableTo(ev.Type()):
		ev.Set(sv)
	case sv.Type().ConvertibleTo(ev.Type()):
		ev.Set(sv.Convert(ev.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %T", src, dst)
	}
	return nil
}
