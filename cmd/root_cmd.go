// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/recordhub/cmd/config"
	"github.com/xataio/recordhub/internal/profiling"
)

// Version and Env are set at build time.
var (
	Version = "development"
	Env     string
)

// boundRootFlags are the persistent root flags resolved through viper, so
// they can also be provided via config file or environment.
var boundRootFlags = []string{"config", "log-level", "postgres-url", "schema-dir"}

// Prepare builds the recordhub command tree.
func Prepare() *cobra.Command {
	root := &cobra.Command{
		Use:          "recordhub",
		Short:        "Bulk ingestion and search of dataset records",
		SilenceUsage: true,
		Version:      buildVersion(),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			return nil
		},
	}

	viper.AutomaticEnv()

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", ".env or .yaml config file to use with recordhub if any")
	flags.String("log-level", "", "log level for the application. One of trace, debug, info, warn, error, fatal, panic")
	flags.String("postgres-url", "", "Postgres URL where the records are stored")
	flags.String("schema-dir", "", "Directory holding the dataset schema files")
	for _, name := range boundRootFlags {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		migrateCommand(),
		datasetCommand(),
		recordsCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return Prepare().Execute()
}

func migrateCommand() *cobra.Command {
	migrateStatusCmd.Flags().Bool("json", false, "Output the migration status in JSON format")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	return migrateCmd
}

func datasetCommand() *cobra.Command {
	datasetCmd.PersistentFlags().StringP("dataset", "d", "", "ID of the dataset")
	datasetShowCmd.Flags().Bool("json", false, "Output the dataset in JSON format")
	datasetAddMetadataCmd.Flags().StringP("file", "f", "", "YAML or JSON file with the metadata property definition")

	vectorFlags := datasetAddVectorCmd.Flags()
	vectorFlags.String("name", "", "Name of the vector settings")
	vectorFlags.String("title", "", "Title of the vector settings")
	vectorFlags.Int("dimensions", 0, "Number of dimensions of the vectors")

	datasetCmd.AddCommand(datasetShowCmd, datasetPublishCmd, datasetAddMetadataCmd, datasetAddVectorCmd, datasetDeleteCmd)
	return datasetCmd
}

func recordsCommand() *cobra.Command {
	recordsCmd.PersistentFlags().StringP("dataset", "d", "", "ID of the dataset")

	ingestFlags := recordsIngestCmd.Flags()
	ingestFlags.StringP("file", "f", "", "JSON file with the list of records to ingest")
	ingestFlags.String("mode", string(defaultIngestMode), "Ingestion mode. One of create, update, upsert")
	ingestFlags.Int("batch-size", defaultBatchSize, "Number of records sent on each bulk operation")
	ingestFlags.Bool("profile", false, "Write CPU and memory profiles and serve /debug/pprof on "+profilingAddress)

	recordsDeleteCmd.Flags().StringSlice("ids", nil, "IDs of the records to delete")

	searchFlags(recordsSearchCmd)
	recordsSearchCmd.Flags().StringSlice("sort", nil, "Sort criteria in the format <field>:<asc|desc>, where field is inserted_at, updated_at or metadata.<property>")
	recordsSearchCmd.Flags().Int("offset", 0, "Number of results to skip")
	recordsSearchCmd.Flags().Int("limit", 0, "Maximum number of results returned")

	searchFlags(recordsSimilarCmd)
	similarFlags := recordsSimilarCmd.Flags()
	similarFlags.String("vector", "", "Name of the vector settings to search on")
	similarFlags.String("record", "", "ID of the record used as anchor")
	similarFlags.Float32Slice("value", nil, "Explicit query vector used as anchor")
	similarFlags.String("order", "most_similar", "One of most_similar, least_similar")
	similarFlags.Int("max-results", 0, "Maximum number of similar records returned")

	recordsCmd.AddCommand(recordsIngestCmd, recordsDeleteCmd, recordsSearchCmd, recordsSimilarCmd)
	return recordsCmd
}

type commandFn func(cmd *cobra.Command, args []string) error

// withSignalWatcher cancels the command context on termination signals.
func withSignalWatcher(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) commandFn {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		defer stop()
		return fn(ctx, cmd, args)
	}
}

const profilingAddress = "localhost:6060"

func withProfiling(fn commandFn) commandFn {
	return func(cmd *cobra.Command, args []string) error {
		if enabled, _ := cmd.Flags().GetBool("profile"); !enabled {
			return fn(cmd, args)
		}

		session, err := profiling.Start(profiling.Config{ServerAddress: profilingAddress})
		if err != nil {
			return err
		}
		defer func() {
			if err := session.Stop(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}()

		return fn(cmd, args)
	}
}

func buildVersion() string {
	if Env == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Env, Version)
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, fmt.Errorf("an id must be provided")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
