// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xataio/recordhub/internal/testcontainers"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/search"
)

var (
	opensearchURL    string
	elasticsearchURL string
)

func TestMain(m *testing.M) {
	// if integration tests are not enabled, nothing to setup
	if os.Getenv("RECORDHUB_INTEGRATION_TESTS") != "" {
		ctx := context.Background()
		osCtr, err := testcontainers.StartOpenSearch(ctx)
		if err != nil {
			log.Fatal(err)
		}
		defer osCtr.Terminate(ctx)
		opensearchURL = osCtr.URL

		esCtr, err := testcontainers.StartElasticsearch(ctx)
		if err != nil {
			log.Fatal(err)
		}
		defer esCtr.Terminate(ctx)
		elasticsearchURL = esCtr.URL
	}

	os.Exit(m.Run())
}

func Test_Store_Integration(t *testing.T) {
	if os.Getenv("RECORDHUB_INTEGRATION_TESTS") == "" {
		t.Skip("skipping integration test...")
	}

	tests := []struct {
		name string
		cfg  Config

		// approximate vector search needs index.knn on OpenSearch
		wantSimilarity bool
	}{
		{
			name:           "opensearch",
			cfg:            Config{OpenSearchURL: opensearchURL, KNNEnabled: true, Refresh: true},
			wantSimilarity: true,
		},
		{
			name: "opensearch - knn disabled by default",
			cfg:  Config{OpenSearchURL: opensearchURL, Refresh: true},
		},
		{
			name:           "elasticsearch",
			cfg:            Config{ElasticsearchURL: elasticsearchURL, Refresh: true},
			wantSimilarity: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s, err := NewStore(tc.cfg)
			require.NoError(t, err)

			ds := newTestDataset()
			ds.ID = uuid.New()
			ds.VectorSettings[0].DatasetID = ds.ID

			require.NoError(t, s.CreateIndex(ctx, ds))
			defer func() {
				require.NoError(t, s.DeleteIndex(ctx, ds))
			}()

			err = s.CreateIndex(ctx, ds)
			require.ErrorAs(t, err, &dataset.ConflictError{})

			// vector mappings, hnsw method included, are accepted on the live index
			require.NoError(t, s.ConfigureIndexVectors(ctx, ds))

			now := time.Now().UTC().Truncate(time.Millisecond)
			hello := newIntegrationRecord(ds, "hello world", "a", []float32{1, 0, 0}, now)
			bye := newIntegrationRecord(ds, "goodbye moon", "b", []float32{0, 1, 0}, now)
			require.NoError(t, s.IndexRecords(ctx, ds, []*dataset.Record{hello, bye}))

			res, err := s.Search(ctx, ds, &search.Query{Text: &search.TextQuery{Q: "hello"}})
			require.NoError(t, err)
			require.Equal(t, 1, res.Total)
			require.Equal(t, []uuid.UUID{hello.ID}, res.RecordIDs())

			res, err = s.Search(ctx, ds, &search.Query{
				MetadataFilters: []search.MetadataFilter{search.TermsFilter{Property: "colors", Values: []string{"b"}}},
			})
			require.NoError(t, err)
			require.Equal(t, []uuid.UUID{bye.ID}, res.RecordIDs())

			if tc.wantSimilarity {
				res, err = s.SimilaritySearch(ctx, ds, &search.SimilarityQuery{
					VectorSettings: &ds.VectorSettings[0],
					Value:          []float32{0.9, 0.1, 0},
					Order:          search.MostSimilar,
					MaxResults:     1,
				})
				require.NoError(t, err)
				require.Equal(t, []uuid.UUID{hello.ID}, res.RecordIDs())
			}

			require.NoError(t, s.DeleteRecords(ctx, ds, []uuid.UUID{hello.ID}))
			res, err = s.Search(ctx, ds, &search.Query{})
			require.NoError(t, err)
			require.Equal(t, []uuid.UUID{bye.ID}, res.RecordIDs())
		})
	}
}

func newIntegrationRecord(ds *dataset.Dataset, text, color string, vector []float32, now time.Time) *dataset.Record {
	id := uuid.New()
	return &dataset.Record{
		ID:        id,
		DatasetID: ds.ID,
		Fields:    map[string]any{"text": text},
		Metadata:  map[string]any{"colors": color},
		Vectors: []dataset.Vector{
			{ID: uuid.New(), RecordID: id, VectorSettingsID: ds.VectorSettings[0].ID, Value: vector},
		},
		InsertedAt: now,
		UpdatedAt:  now,
	}
}
