// SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/google/uuid"
	"github.com/xataio/recordhub/internal/searchstore"
	searchstoremocks "github.com/xataio/recordhub/internal/searchstore/mocks"
	opensearchstore "github.com/xataio/recordhub/internal/searchstore/opensearch"
	"github.com/xataio/recordhub/pkg/dataset"
)

var (
	testDatasetID   = uuid.MustParse("5a1f2d3c-0b6e-4c1e-9d62-8f4a0c1b2e3d")
	testEmbeddingID = uuid.MustParse("0c9e8a7b-6d5c-4b3a-8291-a0b1c2d3e4f5")
	testRecordID    = uuid.MustParse("11111111-2222-4333-8444-555555555555")
	testUserID      = uuid.MustParse("71111111-2222-4333-8444-555555555555")

	testAlias = "ds." + testDatasetID.String()
	testIndex = testAlias + "-1"
)

func newTestDataset() *dataset.Dataset {
	return &dataset.Dataset{
		ID:     testDatasetID,
		Status: dataset.StatusReady,
		Fields: []dataset.Field{
			{Name: "text", Required: true, Settings: dataset.FieldSettings{Type: dataset.FieldTypeText}},
			{Name: "image", Settings: dataset.FieldSettings{Type: dataset.FieldTypeImage}},
		},
		MetadataProperties: []dataset.MetadataProperty{
			{Name: "colors", Settings: dataset.TermsMetadataSettings{Values: []string{"a", "b", "c"}}},
			{Name: "count", Settings: dataset.IntegerMetadataSettings{}},
			{Name: "score", Settings: dataset.FloatMetadataSettings{}},
		},
		VectorSettings: []dataset.VectorSettings{
			{ID: testEmbeddingID, Name: "emb", Dimensions: 3, DatasetID: testDatasetID},
		},
	}
}

func newTestClient() *searchstoremocks.Client {
	return &searchstoremocks.Client{
		GetMapperFn: func() searchstore.Mapper {
			return opensearchstore.NewMapper()
		},
	}
}

func newTestStore(client searchstore.Client) *Store {
	return NewStoreWithClient(client, Config{})
}
