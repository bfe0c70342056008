// SPDX-License-Identifier: Apache-2.0

package migrator

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgmigrations "github.com/xataio/recordhub/migrations/postgres"
)

type Migrator struct {
	migrator *migrate.Migrate
	assets   *MigrationAssets
}

type MigrationAssets struct {
	FS        fs.FS
	Path      string
	TableName string
}

type MigrationStatus struct {
	TableName              string `json:"table_name"`
	Version                uint   `json:"version"`
	Dirty                  bool   `json:"dirty"`
	ExpectedMigrationCount uint   `json:"expected_migration_count"`
}

func (s *MigrationStatus) PrettyPrint() string {
	state := "up to date"
	switch {
	case s.Dirty:
		state = "dirty"
	case s.Version < s.ExpectedMigrationCount:
		state = fmt.Sprintf("%d pending", s.ExpectedMigrationCount-s.Version)
	}
	return fmt.Sprintf("Migrations table: %s\nVersion: %d/%d (%s)", s.TableName, s.Version, s.ExpectedMigrationCount, state)
}

var (
	ErrNoChange         = errors.New("no change")
	ErrNoAssetsProvided = errors.New("no migration assets provided")
	ErrNoMigration      = errors.New("no migration found")
)

// NewPGMigrator creates a Migrator for the postgres url using the embedded
// migration files. The applied version is tracked in the assets table.
func NewPGMigrator(pgURL string, assets *MigrationAssets) (*Migrator, error) {
	if assets == nil {
		return nil, ErrNoAssetsProvided
	}

	src, err := iofs.New(assets.FS, assets.Path)
	if err != nil {
		return nil, fmt.Errorf("reading migration assets: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrationsURL(pgURL, assets.TableName))
	if err != nil {
		return nil, err
	}

	return &Migrator{migrator: m, assets: assets}, nil
}

func (m *Migrator) Up() error {
	if err := m.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return mapError(err)
	}
	return nil
}

func (m *Migrator) Down() error {
	if err := m.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return mapError(err)
	}
	return nil
}

func (m *Migrator) Close() {
	_, _ = m.migrator.Close()
}

func (m *Migrator) Status() (*MigrationStatus, error) {
	expected, err := countMigrations(m.assets)
	if err != nil {
		return nil, err
	}

	version, dirty, err := m.migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return &MigrationStatus{
				TableName:              m.assets.TableName,
				ExpectedMigrationCount: expected,
			}, nil
		}
		return nil, fmt.Errorf("getting migration version: %w", mapError(err))
	}

	return &MigrationStatus{
		TableName:              m.assets.TableName,
		Version:                version,
		Dirty:                  dirty,
		ExpectedMigrationCount: expected,
	}, nil
}

func GetRecordMigrationAssets() *MigrationAssets {
	return &MigrationAssets{
		FS:        pgmigrations.FS,
		Path:      ".",
		TableName: "recordhub_schema_migrations",
	}
}

// countMigrations counts the up files, each migration has an up and a down
// file.
func countMigrations(assets *MigrationAssets) (uint, error) {
	entries, err := fs.ReadDir(assets.FS, assets.Path)
	if err != nil {
		return 0, fmt.Errorf("reading migration assets: %w", err)
	}
	count := uint(0)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			count++
		}
	}
	return count, nil
}

func migrationsURL(pgURL, table string) string {
	sep := "?"
	if strings.Contains(pgURL, "?") {
		sep = "&"
	}
	return pgURL + sep + "x-migrations-table=" + table
}

func mapError(err error) error {
	if errors.Is(err, migrate.ErrNilVersion) {
		return ErrNoMigration
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return ErrNoChange
	}
	return err
}
