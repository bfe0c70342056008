// SPDX-License-Identifier: Apache-2.0

// Package postgres holds the relational schema of the record store.
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
