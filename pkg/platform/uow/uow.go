// Package uow provides an explicit unit of work for local persistence writes.
//
// Orchestrators open a unit of work, hand the returned context to stores, and
// decide at the end whether the accumulated writes commit or are discarded.
// Remote calls made inside the boundary are not covered: a discarded unit of
// work rolls back only what the stores wrote.
//
// Discard is always safe to defer; after Commit it is a no-op, so every exit
// path releases the transaction:
//
//	txCtx, tx, err := u.Begin(ctx)
//	if err != nil { ... }
//	defer tx.Discard()
//	// writes through txCtx
//	return tx.Commit()
package uow

import "context"

// Tx is one open unit of work.
type Tx interface {
	// Commit makes the writes performed under the unit of work durable.
	Commit() error
	// Discard rolls the writes back. Calling it after Commit, or more than
	// once, is a no-op.
	Discard()
}

// UnitOfWork begins transactions spanning the persistence facets. The
// returned context must be used for every store call that should be part of
// the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, Tx, error)
}
