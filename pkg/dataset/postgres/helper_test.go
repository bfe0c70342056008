// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"fmt"
	"reflect"

	pglib "github.com/xataio/recordhub/internal/postgres"
	pgmocks "github.com/xataio/recordhub/internal/postgres/mocks"
)

// scanInto copies values into the scan destinations. Nil values leave the
// destination untouched.
func scanInto(dest []any, values ...any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("expected %d scan destinations, got %d", len(values), len(dest))
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// newRows returns mock rows iterating over the given row values.
func newRows(rows ...[]any) pglib.Rows {
	return &pgmocks.Rows{
		NextFn: func(i uint) bool { return int(i) <= len(rows) },
		ScanFn: func(i uint, dest ...any) error {
			return scanInto(dest, rows[i-1]...)
		},
	}
}
