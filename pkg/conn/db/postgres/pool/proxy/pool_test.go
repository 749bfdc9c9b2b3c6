package proxy_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v4"

	"github.com/cohortlab/eventflow/pkg/cmp"
	"github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool/proxy"
	"github.com/cohortlab/eventflow/pkg/conn/db/postgres/pool/testpool"
	"github.com/cohortlab/eventflow/pkg/utils/try"
)

func TestProxy_FiresCallbacksAroundQueries(t *testing.T) {
	ctx := context.Background()

	base := testpool.New(func(sql string, args []interface{}) (pgx.Rows, error) {
		return testpool.NewRows([]string{"n"}, []interface{}{int64(1)}), nil
	})

	before := []string{}
	after := []string{}
	pool := proxy.Wrap(base).
		OnQuery(func(sql string) { before = append(before, sql) }).
		OnAfterQuery(func(sql string) { after = append(after, sql) })

	conn := try.To(pool.Acquire(ctx)).OrFatal(t)
	defer conn.Release()

	rows := try.To(conn.Query(ctx, "select 1")).OrFatal(t)
	rows.Close()
	try.To(conn.Exec(ctx, "select 2")).OrFatal(t)
	var n int64
	if err := conn.QueryRow(ctx, "select 3").Scan(&n); err != nil {
		t.Fatal(err)
	}

	want := []string{"select 1", "select 2", "select 3"}
	if !cmp.SliceEq(before, want) {
		t.Errorf("unmatch before callbacks: (actual, expected) = (%v, %v)", before, want)
	}
	if !cmp.SliceEq(after, want) {
		t.Errorf("unmatch after callbacks: (actual, expected) = (%v, %v)", after, want)
	}
}
