// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/recordhub/cmd/config"
	"github.com/xataio/recordhub/internal/migrator"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manages the recordhub postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Applies all pending recordhub migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("applying recordhub migrations...").Start()

		m, err := newMigrator()
		if err != nil {
			sp.Fail(err.Error())
			return err
		}
		defer m.Close()

		if err := m.Up(); err != nil {
			sp.Fail(err.Error())
			return err
		}

		sp.Success("recordhub migrations applied")
		return nil
	},
	Example: `
	recordhub migrate up --postgres-url <postgres-url>
	recordhub migrate up -c config.yaml`,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Reverts all recordhub migrations, removing the recordhub schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("reverting recordhub migrations...").Start()

		m, err := newMigrator()
		if err != nil {
			sp.Fail(err.Error())
			return err
		}
		defer m.Close()

		if err := m.Down(); err != nil {
			sp.Fail(err.Error())
			return err
		}

		sp.Success("recordhub migrations reverted")
		return nil
	},
	Example: `
	recordhub migrate down --postgres-url <postgres-url>`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the version of the recordhub postgres schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()

		status, err := m.Status()
		if err != nil {
			return err
		}

		return print(cmd, status)
	},
	Example: `
	recordhub migrate status -c config.env
	recordhub migrate status --postgres-url <postgres-url> --json`,
}

func newMigrator() (*migrator.Migrator, error) {
	pgURL, err := config.ParsePostgresURL()
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return migrator.NewPGMigrator(pgURL, migrator.GetRecordMigrationAssets())
}
