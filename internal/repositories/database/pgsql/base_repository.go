package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackhq/fintrack-backend/internal/middleware"
)

// BaseRepository carries the shared pool and the transaction helpers. Every
// balance-affecting write goes through Begin/Commit so the entry mutation and
// its account adjustment always land in one transaction.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback is safe to defer past a successful Commit; a closed transaction is
// not an error. A real rollback failure is logged through the request logger
// since deferred callers discard the return value.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	middleware.GetLoggerFromCtx(ctx).Error("Transaction rollback failed", slog.String("error", err.Error()))
	return fmt.Errorf("failed to rollback transaction: %w", err)
}
