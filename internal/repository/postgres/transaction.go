package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studioflow/internal/domain/repositories"
)

// UnitOfWork runs contract operations in a pgx transaction
type UnitOfWork struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewUnitOfWork creates a unit of work over the pool
func NewUnitOfWork(pool *pgxpool.Pool, logger *slog.Logger) repositories.UnitOfWork {
	return &UnitOfWork{pool: pool, logger: logger}
}

// Do commits when fn succeeds and rolls back otherwise.
// The NOTIFY a contract write issues is delivered only on commit.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if repositories.TxFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			u.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
