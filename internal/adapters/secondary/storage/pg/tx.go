package pg

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// executor запросы поверх *sqlx.DB или *sqlx.Tx
type executor struct {
	ext sqlx.ExtContext
}

func (e executor) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, e.ext, dest, query, args...)
}

func (e executor) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, e.ext, dest, query, args...)
}

func (e executor) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := e.ext.ExecContext(ctx, query, args...)
	return err
}

func (e executor) ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := e.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Tx открытая транзакция; реализует persistence.Transaction
type Tx struct {
	executor
	tx *sqlx.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
