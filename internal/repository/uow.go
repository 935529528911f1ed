package repository

import (
	"context"

	"choresbot/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork opens pgx transactions and hands out scopes whose repositories
// all run on that one transaction. pgx.Tx.Rollback after Commit returns
// ErrTxClosed and is ignored by callers' deferred rollbacks.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Begin(ctx context.Context) (*service.Scope, error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return service.NewScope(
		tx,
		NewTaskRepository(tx),
		NewTaskAssociationRepository(tx),
		NewUserRepository(tx),
	), nil
}
