// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xataio/recordhub/internal/searchstore"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/search"
)

func TestStore_compileSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sortBy  []search.SortBy
		hasText bool

		wantSort *searchstore.Sort
		wantErr  error
	}{
		{
			name: "ok - compound sort keeps order and direction",
			sortBy: []search.SortBy{
				{Field: "inserted_at", Order: search.SortOrderAsc},
				{Field: "metadata.score", Order: search.SortOrderDesc},
			},
			wantSort: &searchstore.Sort{
				{"inserted_at": map[string]any{"order": "asc"}},
				{"metadata.score": map[string]any{"order": "desc"}},
			},
		},
		{
			name: "ok - default sort",
			wantSort: &searchstore.Sort{
				{"inserted_at": map[string]any{"order": "asc"}},
				{"id": map[string]any{"order": "asc"}},
			},
		},
		{
			name:     "ok - relevance for text queries",
			hasText:  true,
			wantSort: nil,
		},
		{
			name:    "error - unknown metadata property",
			sortBy:  []search.SortBy{{Field: "metadata.unknown", Order: search.SortOrderAsc}},
			wantErr: dataset.NotFoundError{Msg: "metadata property with name `unknown` not found for dataset `" + testDatasetID.String() + "`"},
		},
		{
			name:    "error - invalid order",
			sortBy:  []search.SortBy{{Field: "updated_at", Order: "up"}},
			wantErr: dataset.InvalidQueryError{Msg: "sort order `up` for field `updated_at` is not one of [asc, desc]"},
		},
		{
			name:    "error - invalid field",
			sortBy:  []search.SortBy{{Field: "fields.text", Order: search.SortOrderAsc}},
			wantErr: dataset.InvalidQueryError{Msg: "sort field `fields.text` is not one of [inserted_at, updated_at, metadata.<property>]"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sort, err := compileSort(newTestDataset(), tc.sortBy, tc.hasText)
			require.Equal(t, tc.wantErr, err)
			require.Equal(t, tc.wantSort, sort)
		})
	}
}

func TestStore_compileSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query *search.Query

		wantBody *searchstore.QueryBody
		wantErr  error
	}{
		{
			name:  "ok - match all with defaults",
			query: &search.Query{},
			wantBody: &searchstore.QueryBody{
				Query: &searchstore.Query{MatchAll: &struct{}{}},
				Sort: &searchstore.Sort{
					{"inserted_at": map[string]any{"order": "asc"}},
					{"id": map[string]any{"order": "asc"}},
				},
				Size:           defaultLimit,
				Source:         searchstore.Ptr(false),
				TrackTotalHits: true,
			},
		},
		{
			name: "ok - text with filters",
			query: &search.Query{
				Text: &search.TextQuery{Q: "hello", Field: "text"},
				MetadataFilters: []search.MetadataFilter{
					search.TermsFilter{Property: "colors", Values: []string{"a"}},
					search.IntegerRangeFilter{Property: "count", GE: ptr(int64(1))},
				},
				ResponseStatus: &search.ResponseStatusFilter{
					UserID:   &testUserID,
					Statuses: []search.ResponseFilterStatus{search.ResponseFilterStatusSubmitted, search.ResponseFilterStatusPending},
				},
				Offset: 10,
				Limit:  5,
			},
			wantBody: &searchstore.QueryBody{
				Query: &searchstore.Query{
					Bool: &searchstore.BoolFilter{
						Must: []searchstore.Condition{
							{Match: map[string]any{"fields.text": map[string]any{"query": "hello", "operator": "and"}}},
						},
						Filter: []searchstore.Condition{
							{Terms: map[string]any{"metadata.colors": []string{"a"}}},
							{Range: map[string]any{"metadata.count": map[string]any{"gte": int64(1)}}},
							{Bool: &searchstore.BoolFilter{
								Should: []searchstore.Condition{
									{Terms: map[string]any{"responses." + testUserID.String() + ".status": []string{"submitted"}}},
									{Bool: &searchstore.BoolFilter{
										MustNot: []searchstore.Condition{{Exists: &searchstore.ExistsFilter{Field: "responses." + testUserID.String()}}},
									}},
								},
								MinimumShouldMatch: 1,
							}},
						},
					},
				},
				From:           10,
				Size:           5,
				Source:         searchstore.Ptr(false),
				TrackTotalHits: true,
			},
		},
		{
			name: "ok - any user status",
			query: &search.Query{
				ResponseStatus: &search.ResponseStatusFilter{
					Statuses: []search.ResponseFilterStatus{search.ResponseFilterStatusDraft},
				},
				Sort: []search.SortBy{{Field: "updated_at", Order: search.SortOrderDesc}},
			},
			wantBody: &searchstore.QueryBody{
				Query: &searchstore.Query{
					Bool: &searchstore.BoolFilter{
						Filter: []searchstore.Condition{
							{Bool: &searchstore.BoolFilter{
								Should: []searchstore.Condition{
									{Terms: map[string]any{"all_responses_statuses": []string{"draft"}}},
								},
								MinimumShouldMatch: 1,
							}},
						},
					},
				},
				Sort:           &searchstore.Sort{{"updated_at": map[string]any{"order": "desc"}}},
				Size:           defaultLimit,
				Source:         searchstore.Ptr(false),
				TrackTotalHits: true,
			},
		},
		{
			name:    "error - result window exceeded",
			query:   &search.Query{Offset: 9990, Limit: 20},
			wantErr: dataset.LimitExceededError{Msg: "offset+limit must be less than or equal to 10000, got 10010"},
		},
		{
			name:    "error - unknown text field",
			query:   &search.Query{Text: &search.TextQuery{Q: "hello", Field: "unknown"}},
			wantErr: dataset.NotFoundError{Msg: "field with name `unknown` not found for dataset `" + testDatasetID.String() + "`"},
		},
		{
			name: "error - filter type mismatch",
			query: &search.Query{
				MetadataFilters: []search.MetadataFilter{search.TermsFilter{Property: "count", Values: []string{"1"}}},
			},
			wantErr: dataset.InvalidQueryError{Msg: "metadata property `count` is of type `integer`, cannot apply a `terms` filter"},
		},
		{
			name: "error - unknown metadata property",
			query: &search.Query{
				MetadataFilters: []search.MetadataFilter{search.FloatRangeFilter{Property: "unknown", LE: ptr(1.0)}},
			},
			wantErr: dataset.NotFoundError{Msg: "metadata property with name `unknown` not found for dataset `" + testDatasetID.String() + "`"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStore(newTestClient())
			body, err := s.compileSearch(newTestDataset(), tc.query)
			require.Equal(t, tc.wantErr, err)
			require.Equal(t, tc.wantBody, body)
		})
	}
}

func TestStore_compileSimilarity(t *testing.T) {
	t.Parallel()

	ds := newTestDataset()
	vs := &ds.VectorSettings[0]
	field := "vectors." + testEmbeddingID.String()

	tests := []struct {
		name  string
		query *search.SimilarityQuery

		wantBody *searchstore.QueryBody
		wantErr  error
	}{
		{
			name: "ok - most similar excluding anchor record",
			query: &search.SimilarityQuery{
				VectorSettings:  vs,
				Value:           []float32{1, 2, 3},
				Order:           search.MostSimilar,
				MaxResults:      5,
				ExcludeRecordID: &testRecordID,
			},
			wantBody: &searchstore.QueryBody{
				Query: &searchstore.Query{
					KNN: map[string]searchstore.KNNQuery{
						field: {
							Vector: []float32{1, 2, 3},
							K:      5,
							Filter: &searchstore.Condition{Bool: &searchstore.BoolFilter{
								Filter:  []searchstore.Condition{},
								MustNot: []searchstore.Condition{{IDs: map[string]any{"values": []string{testRecordID.String()}}}},
							}},
						},
					},
				},
				Size:   5,
				Source: searchstore.Ptr(false),
			},
		},
		{
			name: "ok - least similar negates the vector",
			query: &search.SimilarityQuery{
				VectorSettings: vs,
				Value:          []float32{1, -2, 3},
				Order:          search.LeastSimilar,
				MaxResults:     2,
			},
			wantBody: &searchstore.QueryBody{
				Query: &searchstore.Query{
					KNN: map[string]searchstore.KNNQuery{
						field: {Vector: []float32{-1, 2, -3}, K: 2},
					},
				},
				Size:   2,
				Source: searchstore.Ptr(false),
			},
		},
		{
			name: "error - wrong dimensions",
			query: &search.SimilarityQuery{
				VectorSettings: vs,
				Value:          []float32{1},
				MaxResults:     2,
			},
			wantErr: dataset.InvalidQueryError{Msg: "vector value for `emb` must have 3 elements, got 1 elements"},
		},
		{
			name: "error - too many results",
			query: &search.SimilarityQuery{
				VectorSettings: vs,
				Value:          []float32{1, 2, 3},
				MaxResults:     10001,
			},
			wantErr: dataset.LimitExceededError{Msg: "max results must be less than or equal to 10000, got 10001"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStore(newTestClient())
			body, err := s.compileSimilarity(ds, tc.query)
			require.Equal(t, tc.wantErr, err)
			require.Equal(t, tc.wantBody, body)
		})
	}
}

func TestNumCandidates(t *testing.T) {
	t.Parallel()

	require.Equal(t, 50, numCandidates(5))
	require.Equal(t, maxNumCandidates, numCandidates(5000))
	require.Equal(t, 10000, numCandidates(10000))
}

func ptr[T any](v T) *T { return &v }
