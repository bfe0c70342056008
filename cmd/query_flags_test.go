// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/search"
)

var testDataset = &dataset.Dataset{
	ID:     uuid.MustParse("5f5b1a2e-8d1c-4e3a-9a57-2c9b1f0e6d4a"),
	Name:   "reviews",
	Status: dataset.StatusReady,
	MetadataProperties: []dataset.MetadataProperty{
		{Name: "genre", Settings: dataset.TermsMetadataSettings{}},
		{Name: "year", Settings: dataset.IntegerMetadataSettings{}},
		{Name: "score", Settings: dataset.FloatMetadataSettings{}},
	},
}

func ptr[T any](v T) *T { return &v }

func TestParseMetadataFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []string

		wantFilters []search.MetadataFilter
		wantErr     bool
	}{
		{
			name:        "ok - no filters",
			wantFilters: []search.MetadataFilter{},
		},
		{
			name: "ok - terms",
			raw:  []string{"genre=rock,jazz"},
			wantFilters: []search.MetadataFilter{
				search.TermsFilter{Property: "genre", Values: []string{"rock", "jazz"}},
			},
		},
		{
			name: "ok - ranges",
			raw:  []string{"year=2000:", "score=0.5:0.9"},
			wantFilters: []search.MetadataFilter{
				search.IntegerRangeFilter{Property: "year", GE: ptr(int64(2000))},
				search.FloatRangeFilter{Property: "score", GE: ptr(0.5), LE: ptr(0.9)},
			},
		},
		{
			name:    "error - missing value separator",
			raw:     []string{"genre"},
			wantErr: true,
		},
		{
			name:    "error - unknown property",
			raw:     []string{"author=me"},
			wantErr: true,
		},
		{
			name:    "error - range without separator",
			raw:     []string{"year=2000"},
			wantErr: true,
		},
		{
			name:    "error - invalid integer bound",
			raw:     []string{"year=1.5:"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			filters, err := parseMetadataFilters(testDataset, tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantFilters, filters)
		})
	}
}

func TestParseResponseStatusFilter(t *testing.T) {
	t.Parallel()

	filter, err := parseResponseStatusFilter(nil, "")
	require.NoError(t, err)
	require.Nil(t, filter)

	userID := uuid.New()
	filter, err = parseResponseStatusFilter([]string{"submitted", "pending"}, userID.String())
	require.NoError(t, err)
	require.Equal(t, &search.ResponseStatusFilter{
		UserID:   &userID,
		Statuses: []search.ResponseFilterStatus{search.ResponseFilterStatusSubmitted, search.ResponseFilterStatusPending},
	}, filter)

	_, err = parseResponseStatusFilter([]string{"submitted"}, "not-a-uuid")
	require.Error(t, err)
}

func TestParseSort(t *testing.T) {
	t.Parallel()

	sort, err := parseSort([]string{"inserted_at", "metadata.year:desc"})
	require.NoError(t, err)
	require.Equal(t, []search.SortBy{
		{Field: "inserted_at", Order: search.SortOrderAsc},
		{Field: "metadata.year", Order: search.SortOrderDesc},
	}, sort)

	_, err = parseSort([]string{":desc"})
	require.Error(t, err)
}

func TestQueryFlags_toQuery(t *testing.T) {
	t.Parallel()

	flags := &queryFlags{
		query:   "great",
		field:   "text",
		filters: []string{"genre=rock"},
		sort:    []string{"updated_at:desc"},
		offset:  10,
		limit:   5,
	}
	query, err := flags.toQuery(testDataset)
	require.NoError(t, err)
	require.Equal(t, &search.Query{
		Text: &search.TextQuery{Q: "great", Field: "text"},
		MetadataFilters: []search.MetadataFilter{
			search.TermsFilter{Property: "genre", Values: []string{"rock"}},
		},
		Sort:   []search.SortBy{{Field: "updated_at", Order: search.SortOrderDesc}},
		Offset: 10,
		Limit:  5,
	}, query)

	require.Nil(t, (&queryFlags{}).textQuery())
}
