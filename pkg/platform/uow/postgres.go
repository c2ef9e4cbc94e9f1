package uow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dErrors "drivewise/pkg/domain-errors"
	sqltx "drivewise/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// Postgres backs the unit of work with a database transaction. The returned
// context carries the *sql.Tx; postgres stores pick it up via pkg/platform/tx
// so all facet writes inside the boundary share one transaction.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

// PostgresOption configures a Postgres unit of work.
type PostgresOption func(*Postgres)

// WithTimeout caps how long an open unit of work may run when the incoming
// context has no deadline.
func WithTimeout(d time.Duration) PostgresOption {
	return func(p *Postgres) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewPostgres constructs a database-backed unit of work.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, timeout: defaultTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Postgres) Begin(ctx context.Context) (context.Context, Tx, error) {
	if err := ctx.Err(); err != nil {
		return ctx, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "unit of work aborted: context cancelled")
	}

	cancel := func() {}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
	}

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		cancel()
		return ctx, nil, dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	return sqltx.WithTx(ctx, dbTx), &postgresTx{tx: dbTx, cancel: cancel}, nil
}

type postgresTx struct {
	tx     *sql.Tx
	cancel context.CancelFunc
	done   bool
}

func (t *postgresTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.cancel()
	if err := t.tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}

func (t *postgresTx) Discard() {
	if t.done {
		return
	}
	t.done = true
	defer t.cancel()
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		// Rollback failures leave nothing actionable for the caller; the
		// transaction is dead either way.
		return
	}
}
