// SPDX-License-Identifier: Apache-2.0

package postgres

type mockRow struct {
	scanFn func(args ...any) error
}

func (m *mockRow) Scan(args ...any) error {
	return m.scanFn(args...)
}
