package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so a repository runs
// the same statement inside or outside a unit of work
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// UnitOfWork groups the writes of one contract operation: the contract
// document, the client status it drives and any notification it emits
type UnitOfWork interface {
	// Do runs fn in a transaction; a call made inside fn joins it
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type unitKey struct{}

// WithTx binds tx to ctx for the repositories called under it
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, unitKey{}, tx)
}

// TxFrom returns the transaction bound to ctx, or nil
func TxFrom(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(unitKey{}).(pgx.Tx)
	return tx
}
