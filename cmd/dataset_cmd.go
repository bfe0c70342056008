// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/dataset/schemafile"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manages the dataset schemas and their search indexes",
}

var datasetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Shows the schema of a dataset",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		return withServices(ctx, "dataset_show", func(s *services) error {
			ds, err := s.dataset(ctx, datasetFlag(cmd))
			if err != nil {
				return err
			}
			return print(cmd, &datasetView{ds})
		})
	}),
	Example: `
	recordhub dataset show -d <dataset-id> -c config.yaml
	recordhub dataset show -d <dataset-id> --json`,
}

var datasetPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publishes a draft dataset, creating its search index",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		return withSpinner("publishing dataset...", func() (string, error) {
			return "dataset published", withServices(ctx, "dataset_publish", func(s *services) error {
				id, err := parseUUID(datasetFlag(cmd))
				if err != nil {
					return err
				}
				_, err = s.lifecycle.Publish(ctx, id)
				return err
			})
		})
	}),
	Example: `
	recordhub dataset publish -d <dataset-id> -c config.yaml`,
}

var datasetAddMetadataCmd = &cobra.Command{
	Use:   "add-metadata",
	Short: "Adds a metadata property to a dataset",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		return withSpinner("adding metadata property...", func() (string, error) {
			b, err := os.ReadFile(cmd.Flags().Lookup("file").Value.String())
			if err != nil {
				return "", fmt.Errorf("reading metadata property file: %w", err)
			}
			property, err := schemafile.UnmarshalMetadataProperty(b)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("metadata property %s added", property.Name), withServices(ctx, "dataset_add_metadata", func(s *services) error {
				id, err := parseUUID(datasetFlag(cmd))
				if err != nil {
					return err
				}
				_, err = s.lifecycle.AddMetadataProperty(ctx, id, *property)
				return err
			})
		})
	}),
	Example: `
	recordhub dataset add-metadata -d <dataset-id> -f genre.yaml`,
}

var datasetAddVectorCmd = &cobra.Command{
	Use:   "add-vector",
	Short: "Adds vector settings to a dataset",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		title, _ := cmd.Flags().GetString("title")
		dims, _ := cmd.Flags().GetInt("dimensions")
		if title == "" {
			title = name
		}
		return withSpinner("adding vector settings...", func() (string, error) {
			return fmt.Sprintf("vector settings %s added", name), withServices(ctx, "dataset_add_vector", func(s *services) error {
				id, err := parseUUID(datasetFlag(cmd))
				if err != nil {
					return err
				}
				_, err = s.lifecycle.AddVectorSettings(ctx, id, dataset.VectorSettings{
					Name:       name,
					Title:      title,
					Dimensions: dims,
				})
				return err
			})
		})
	}),
	Example: `
	recordhub dataset add-vector -d <dataset-id> --name embedding --dimensions 384`,
}

var datasetDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Deletes a dataset schema and its search index",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		return withSpinner("deleting dataset...", func() (string, error) {
			return "dataset deleted", withServices(ctx, "dataset_delete", func(s *services) error {
				id, err := parseUUID(datasetFlag(cmd))
				if err != nil {
					return err
				}
				return s.lifecycle.Delete(ctx, id)
			})
		})
	}),
	Example: `
	recordhub dataset delete -d <dataset-id>`,
}

func datasetFlag(cmd *cobra.Command) string {
	return cmd.Flags().Lookup("dataset").Value.String()
}

func withServices(ctx context.Context, name string, fn func(s *services) error) error {
	s, err := newServices(ctx, name)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

// withSpinner runs fn with a spinner, reporting the success message returned
// by fn.
func withSpinner(text string, fn func() (string, error)) error {
	sp, _ := pterm.DefaultSpinner.WithText(text).Start()
	msg, err := fn()
	if err != nil {
		sp.Fail(err.Error())
		return err
	}
	sp.Success(msg)
	return nil
}

type datasetView struct {
	*dataset.Dataset
}

func (v *datasetView) PrettyPrint() string {
	rows := [][]string{{"kind", "name", "title", "type", "required"}}
	for _, f := range v.Fields {
		rows = append(rows, []string{"field", f.Name, f.Title, string(f.Settings.Type), strconv.FormatBool(f.Required)})
	}
	for _, q := range v.Questions {
		rows = append(rows, []string{"question", q.Name, q.Title, questionType(q), strconv.FormatBool(q.Required)})
	}
	for _, m := range v.MetadataProperties {
		rows = append(rows, []string{"metadata", m.Name, m.Title, metadataType(m), ""})
	}
	for _, vs := range v.VectorSettings {
		rows = append(rows, []string{"vector", vs.Name, vs.Title, fmt.Sprintf("%d dims", vs.Dimensions), ""})
	}
	header := fmt.Sprintf("Dataset %s (%s), status: %s\n", v.Name, v.ID, v.Status)
	return header + renderTable(rows)
}

func questionType(q dataset.Question) string {
	if q.Settings == nil {
		return ""
	}
	return string(q.Settings.Type())
}

func metadataType(m dataset.MetadataProperty) string {
	if m.Settings == nil {
		return ""
	}
	return string(m.Settings.Type())
}
