// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Querier runs statements against postgres. Errors are mapped to the package
// error types.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Exec(ctx context.Context, query string, args ...any) (CommandTag, error)
	// ExecInTx runs fn in a transaction, committed when fn returns no error
	// and rolled back otherwise.
	ExecInTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Tx is the statement surface available inside ExecInTx.
type Tx interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Exec(ctx context.Context, query string, args ...any) (CommandTag, error)
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type CommandTag struct {
	pgconn.CommandTag
}

type mappedRow struct {
	inner Row
}

func (mr *mappedRow) Scan(dest ...any) error {
	return mapError(mr.inner.Scan(dest...))
}

type mappedRows struct {
	Rows
}

func (mr *mappedRows) Scan(dest ...any) error {
	return mapError(mr.Rows.Scan(dest...))
}

func (mr *mappedRows) Err() error {
	return mapError(mr.Rows.Err())
}
