package pg

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/birthday-bot/internal/ports/persistence"
	"github.com/jmoiron/sqlx"
)

// DB реализует Persistence и Transactor
type DB struct {
	executor
	db *sqlx.DB
}

func NewDB(db *sqlx.DB) *DB {
	return &DB{executor: executor{ext: db}, db: db}
}

func (d *DB) BeginTx(ctx context.Context) (persistence.Transaction, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{executor: executor{ext: tx}, tx: tx}, nil
}

// WithTransaction откатывает транзакцию и при панике в fn
func (d *DB) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	tx, err := d.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping проверка доступности для /ready
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}
