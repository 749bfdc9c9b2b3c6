package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// Error wraps an infrastructure fault raised while loading a work
// context. "Not found" never takes this path; only query execution
// failures do.
type Error struct {
	// Op names the supplier that failed.
	Op string

	cause error
}

func (e *Error) Error() string {
	var pgErr *pgconn.PgError
	if errors.As(e.cause, &pgErr) {
		return fmt.Sprintf("workctx: %s: %s (sqlstate %s)", e.Op, pgErr.Message, pgErr.Code)
	}
	return fmt.Sprintf("workctx: %s: %s", e.Op, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether the fault looks transient (connection
// level), so callers may retry the whole batch.
func (e *Error) Retryable() bool {
	var pgErr *pgconn.PgError
	if !errors.As(e.cause, &pgErr) {
		return false
	}
	return pgerrcode.IsConnectionException(pgErr.Code) ||
		pgerrcode.IsOperatorIntervention(pgErr.Code)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, cause: err}
}
