// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConnTimeout = errors.New("connection timeout")
	ErrNoRows      = errors.New("no rows")
)

type ErrRelationDoesNotExist struct {
	Details string
}

func (e *ErrRelationDoesNotExist) Error() string {
	return fmt.Sprintf("relation does not exist: %s", e.Details)
}

type ErrConstraintViolation struct {
	Constraint string
	Details    string
}

func (e *ErrConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation: %s", e.Details)
}

// ErrUniqueViolation is the constraint violation raised when a row collides
// with an existing unique key.
type ErrUniqueViolation struct {
	Constraint string
	Details    string
}

func (e *ErrUniqueViolation) Error() string {
	return fmt.Sprintf("unique violation on %s: %s", e.Constraint, e.Details)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	if pgconn.Timeout(err) {
		return ErrConnTimeout
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRows
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UndefinedTable, pgErr.Code == pgerrcode.UndefinedColumn:
			return &ErrRelationDoesNotExist{
				Details: pgErr.Message,
			}
		case pgErr.Code == pgerrcode.UniqueViolation:
			return &ErrUniqueViolation{
				Constraint: pgErr.ConstraintName,
				Details:    pgErr.Message,
			}
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return &ErrConstraintViolation{
				Constraint: pgErr.ConstraintName,
				Details:    pgErr.Message,
			}
		}
	}

	return err
}
