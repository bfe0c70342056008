// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is implemented by both pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// statements adapts a pgx querier to the package interfaces, mapping the
// errors it returns.
type statements struct {
	q pgxQuerier
}

func (s statements) QueryRow(ctx context.Context, query string, args ...any) Row {
	return &mappedRow{inner: s.q.QueryRow(ctx, query, args...)}
}

func (s statements) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return &mappedRows{Rows: rows}, nil
}

func (s statements) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	tag, err := s.q.Exec(ctx, query, args...)
	return CommandTag{tag}, mapError(err)
}
