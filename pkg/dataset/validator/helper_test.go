// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

var (
	testDatasetID       = uuid.MustParse("5a1f2d3c-0b6e-4c1e-9d62-8f4a0c1b2e3d")
	testEmbeddingID     = uuid.MustParse("0c9e8a7b-6d5c-4b3a-8291-a0b1c2d3e4f5")
	testSentimentID     = uuid.MustParse("11111111-2222-4333-8444-555555555555")
	testTopicsID        = uuid.MustParse("21111111-2222-4333-8444-555555555555")
	testRatingID        = uuid.MustParse("31111111-2222-4333-8444-555555555555")
	testEntitiesID      = uuid.MustParse("41111111-2222-4333-8444-555555555555")
	testRankingID       = uuid.MustParse("51111111-2222-4333-8444-555555555555")
	testCommentID       = uuid.MustParse("61111111-2222-4333-8444-555555555555")
	testUserID          = uuid.MustParse("71111111-2222-4333-8444-555555555555")
	testOverlappingID   = uuid.MustParse("81111111-2222-4333-8444-555555555555")
	testUnknownQuestion = uuid.MustParse("91111111-2222-4333-8444-555555555555")
	testScoreMin        = float64(0)
	testScoreMax        = float64(1)
	testCountMin        = int64(0)
	testCountMax        = int64(10)
)

func testOptions(values ...string) []dataset.Option {
	opts := make([]dataset.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, dataset.Option{Value: v, Text: v})
	}
	return opts
}

func newTestDataset() *dataset.Dataset {
	return &dataset.Dataset{
		ID:     testDatasetID,
		Status: dataset.StatusReady,
		Fields: []dataset.Field{
			{Name: "text", Required: true, Settings: dataset.FieldSettings{Type: dataset.FieldTypeText}},
			{Name: "context", Required: false, Settings: dataset.FieldSettings{Type: dataset.FieldTypeText}},
		},
		Questions: []dataset.Question{
			{ID: testSentimentID, Name: "sentiment", Required: true, Settings: dataset.LabelSelectionQuestionSettings{Options: testOptions("positive", "negative")}},
			{ID: testTopicsID, Name: "topics", Settings: dataset.MultiLabelSelectionQuestionSettings{Options: testOptions("sports", "politics", "tech")}},
			{ID: testRatingID, Name: "quality", Settings: dataset.RatingQuestionSettings{Options: []dataset.RatingOption{{Value: 1}, {Value: 2}, {Value: 3}}}},
			{ID: testEntitiesID, Name: "entities", Settings: dataset.SpanQuestionSettings{Field: "text", Options: testOptions("PER", "ORG")}},
			{ID: testOverlappingID, Name: "nested", Settings: dataset.SpanQuestionSettings{Field: "text", Options: testOptions("PER", "ORG"), AllowOverlapping: true}},
			{ID: testRankingID, Name: "preference", Settings: dataset.RankingQuestionSettings{Options: testOptions("a", "b", "c")}},
			{ID: testCommentID, Name: "comment", Settings: dataset.TextQuestionSettings{}},
		},
		MetadataProperties: []dataset.MetadataProperty{
			{Name: "colors", Settings: dataset.TermsMetadataSettings{Values: []string{"a", "b", "c"}}},
			{Name: "tags", Settings: dataset.TermsMetadataSettings{}},
			{Name: "count", Settings: dataset.IntegerMetadataSettings{Min: &testCountMin, Max: &testCountMax}},
			{Name: "score", Settings: dataset.FloatMetadataSettings{Min: &testScoreMin, Max: &testScoreMax}},
		},
		VectorSettings: []dataset.VectorSettings{
			{ID: testEmbeddingID, Name: "emb", Dimensions: 5, DatasetID: testDatasetID},
		},
	}
}

func reasons(violations []dataset.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Reason)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
