// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/recordhub/internal/json"
	"github.com/xataio/recordhub/internal/progress"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/dataset/bulk"
	"github.com/xataio/recordhub/pkg/search"
)

const (
	defaultIngestMode = bulk.ModeUpsert
	defaultBatchSize  = 500
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Ingests, deletes and searches the records of a dataset",
}

var recordsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingests the records from a JSON file into a ready dataset",
	RunE:  withProfiling(withSignalWatcher(ingest)),
	Example: `
	recordhub records ingest -d <dataset-id> -f records.json
	recordhub records ingest -d <dataset-id> -f records.json --mode create --batch-size 100 -c config.yaml`,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Deletes records from a dataset",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		rawIDs, _ := cmd.Flags().GetStringSlice("ids")
		ids := make([]uuid.UUID, 0, len(rawIDs))
		for _, raw := range rawIDs {
			id, err := parseUUID(raw)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		return withSpinner("deleting records...", func() (string, error) {
			var deleted int
			err := withServices(ctx, "records_delete", func(s *services) error {
				ds, err := s.dataset(ctx, datasetFlag(cmd))
				if err != nil {
					return err
				}
				res, err := s.ingester.Delete(ctx, ds, ids)
				if err != nil {
					return err
				}
				deleted = res.Deleted
				return nil
			})
			return fmt.Sprintf("%d records deleted", deleted), err
		})
	}),
	Example: `
	recordhub records delete -d <dataset-id> --ids <id1>,<id2>`,
}

var recordsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches the records of a dataset",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		flags := readQueryFlags(cmd)
		return withServices(ctx, "records_search", func(s *services) error {
			ds, err := s.dataset(ctx, datasetFlag(cmd))
			if err != nil {
				return err
			}
			query, err := flags.toQuery(ds)
			if err != nil {
				return err
			}
			res, err := s.search.Search(ctx, ds, query)
			if err != nil {
				return err
			}
			return printResult(ctx, cmd, s, ds, res)
		})
	}),
	Example: `
	recordhub records search -d <dataset-id> --query "hello world" --field text
	recordhub records search -d <dataset-id> --filter genre=rock,jazz --filter year=2000: --sort metadata.year:desc --json`,
}

var recordsSimilarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Finds the records most or least similar to a record or a vector",
	RunE: withSignalWatcher(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		flags := readQueryFlags(cmd)
		vectorName, _ := cmd.Flags().GetString("vector")
		rawRecordID, _ := cmd.Flags().GetString("record")
		value, _ := cmd.Flags().GetFloat32Slice("value")
		order, _ := cmd.Flags().GetString("order")
		maxResults, _ := cmd.Flags().GetInt("max-results")

		req := &search.SimilarityRequest{
			VectorName: vectorName,
			Value:      value,
			Order:      search.SimilarityOrder(order),
			MaxResults: maxResults,
			Text:       flags.textQuery(),
		}
		if rawRecordID != "" {
			recordID, err := parseUUID(rawRecordID)
			if err != nil {
				return err
			}
			req.RecordID = &recordID
		}

		return withServices(ctx, "records_similar", func(s *services) error {
			ds, err := s.dataset(ctx, datasetFlag(cmd))
			if err != nil {
				return err
			}
			if req.MetadataFilters, err = parseMetadataFilters(ds, flags.filters); err != nil {
				return err
			}
			if req.ResponseStatus, err = parseResponseStatusFilter(flags.statuses, flags.userID); err != nil {
				return err
			}
			res, err := s.search.SimilaritySearch(ctx, ds, req)
			if err != nil {
				return err
			}
			return printResult(ctx, cmd, s, ds, res)
		})
	}),
	Example: `
	recordhub records similar -d <dataset-id> --vector embedding --record <record-id>
	recordhub records similar -d <dataset-id> --vector embedding --value 0.1,0.2,0.3 --order least_similar`,
}

func ingest(ctx context.Context, cmd *cobra.Command, args []string) error {
	mode, err := bulk.ParseMode(cmd.Flags().Lookup("mode").Value.String())
	if err != nil {
		return err
	}
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	items, err := readRecordsFile(cmd.Flags().Lookup("file").Value.String())
	if err != nil {
		return err
	}

	return withServices(ctx, "records_ingest", func(s *services) error {
		ds, err := s.dataset(ctx, datasetFlag(cmd))
		if err != nil {
			return err
		}

		bar := progress.NewRecordsBar(len(items), "ingesting records")
		loader := bulk.NewLoader(s.ingester, batchSize,
			bulk.WithLoaderLogger(s.logger),
			bulk.WithProgressBar(bar))

		res, err := loader.Load(ctx, ds, mode, items)
		if err != nil {
			if validationErr := (&dataset.SchemaValidationError{}); errors.As(err, &validationErr) {
				for _, v := range validationErr.Violations {
					pterm.Error.Println(v.Error())
				}
			}
			pterm.Warning.Printfln("%d records created, %d updated before the failure", res.Created, res.Updated)
			return err
		}

		pterm.Success.Printfln("%d records created, %d updated", res.Created, res.Updated)
		return nil
	})
}

func readRecordsFile(path string) ([]*dataset.RecordUpsert, error) {
	if path == "" {
		return nil, errors.New("a records file must be provided")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	items := []*dataset.RecordUpsert{}
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding records file: %w", err)
	}
	return items, nil
}

func searchFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "Full text query")
	cmd.Flags().String("field", "", "Name of the text field the full text query applies to. All text fields if empty")
	cmd.Flags().StringArray("filter", nil, "Metadata filter in the format <property>=<v1>,<v2> for terms or <property>=<ge>:<le> for numeric properties")
	cmd.Flags().StringSlice("status", nil, "Response statuses to filter by. Any of submitted, discarded, draft, pending")
	cmd.Flags().String("user", "", "ID of the user the response status filter applies to")
	cmd.Flags().Bool("json", false, "Output the results in JSON format")
}

func readQueryFlags(cmd *cobra.Command) *queryFlags {
	f := &queryFlags{}
	f.query, _ = cmd.Flags().GetString("query")
	f.field, _ = cmd.Flags().GetString("field")
	f.filters, _ = cmd.Flags().GetStringArray("filter")
	f.statuses, _ = cmd.Flags().GetStringSlice("status")
	f.userID, _ = cmd.Flags().GetString("user")
	// only registered for the search command
	f.sort, _ = cmd.Flags().GetStringSlice("sort")
	f.offset, _ = cmd.Flags().GetInt("offset")
	f.limit, _ = cmd.Flags().GetInt("limit")
	return f
}

type resultView struct {
	Total int          `json:"total"`
	Items []resultItem `json:"items"`
}

type resultItem struct {
	ID         uuid.UUID      `json:"id"`
	ExternalID *string        `json:"external_id,omitempty"`
	Score      float64        `json:"score"`
	Fields     map[string]any `json:"fields,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func printResult(ctx context.Context, cmd *cobra.Command, s *services, ds *dataset.Dataset, res *search.Result) error {
	records, err := s.records.GetRecordsByIDs(ctx, ds.ID, res.RecordIDs())
	if err != nil {
		return err
	}
	return print(cmd, newResultView(res, records))
}

func newResultView(res *search.Result, records []*dataset.Record) *resultView {
	byID := make(map[uuid.UUID]*dataset.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	view := &resultView{Total: res.Total, Items: make([]resultItem, 0, len(res.Items))}
	for _, item := range res.Items {
		ri := resultItem{ID: item.RecordID, Score: item.Score}
		if r, found := byID[item.RecordID]; found {
			ri.ExternalID = r.ExternalID
			ri.Fields = r.Fields
			ri.Metadata = r.Metadata
		}
		view.Items = append(view.Items, ri)
	}
	return view
}

func (v *resultView) PrettyPrint() string {
	rows := [][]string{{"id", "external id", "score", "fields"}}
	for _, item := range v.Items {
		externalID := ""
		if item.ExternalID != nil {
			externalID = *item.ExternalID
		}
		fields := ""
		if len(item.Fields) > 0 {
			b, err := json.Marshal(item.Fields)
			if err == nil {
				fields = truncate(string(b), 80)
			}
		}
		rows = append(rows, []string{item.ID.String(), externalID, strconv.FormatFloat(item.Score, 'f', 4, 64), fields})
	}
	return fmt.Sprintf("%d of %d records\n", len(v.Items), v.Total) + renderTable(rows)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
