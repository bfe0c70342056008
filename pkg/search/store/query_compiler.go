// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"
	"strings"

	"github.com/xataio/recordhub/internal/searchstore"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/search"
)

const (
	defaultLimit = 50
	// upper bound for the candidates considered per shard by approximate knn
	maxNumCandidates = 10000
)

// compileSearch translates a search query into the backend query DSL. It is
// shared by both backends.
func (s *Store) compileSearch(ds *dataset.Dataset, q *search.Query) (*searchstore.QueryBody, error) {
	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 0 || q.Offset < 0 {
		return nil, dataset.InvalidQueryError{Msg: "offset and limit must be positive"}
	}
	if q.Offset+limit > s.indexSettings.MaxResultWindow {
		return nil, dataset.LimitExceededError{Msg: fmt.Sprintf("offset+limit must be less than or equal to %d, got %d", s.indexSettings.MaxResultWindow, q.Offset+limit)}
	}

	filters, err := s.compileFilters(ds, q.MetadataFilters, q.ResponseStatus)
	if err != nil {
		return nil, err
	}

	boolQuery := &searchstore.BoolFilter{Filter: filters}
	if q.Text != nil {
		text, err := compileTextQuery(ds, q.Text)
		if err != nil {
			return nil, err
		}
		boolQuery.Must = []searchstore.Condition{*text}
	}

	sort, err := compileSort(ds, q.Sort, q.Text != nil)
	if err != nil {
		return nil, err
	}

	body := &searchstore.QueryBody{
		Sort:           sort,
		From:           q.Offset,
		Size:           limit,
		Source:         searchstore.Ptr(false),
		TrackTotalHits: true,
	}
	if len(boolQuery.Filter) == 0 && len(boolQuery.Must) == 0 {
		body.Query = &searchstore.Query{MatchAll: &struct{}{}}
	} else {
		body.Query = &searchstore.Query{Bool: boolQuery}
	}
	return body, nil
}

// compileSimilarity translates a resolved similarity query into the backend
// knn DSL. Filters are applied as knn pre-filters.
func (s *Store) compileSimilarity(ds *dataset.Dataset, q *search.SimilarityQuery) (*searchstore.QueryBody, error) {
	if q.VectorSettings == nil {
		return nil, dataset.InvalidQueryError{Msg: "similarity search requires vector settings"}
	}
	if len(q.Value) != q.VectorSettings.Dimensions {
		return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("vector value for `%s` must have %d elements, got %d elements", q.VectorSettings.Name, q.VectorSettings.Dimensions, len(q.Value))}
	}
	k := q.MaxResults
	if k <= 0 {
		return nil, dataset.InvalidQueryError{Msg: "max results must be positive"}
	}
	if k > s.indexSettings.MaxResultWindow {
		return nil, dataset.LimitExceededError{Msg: fmt.Sprintf("max results must be less than or equal to %d, got %d", s.indexSettings.MaxResultWindow, k)}
	}

	filters, err := s.compileFilters(ds, q.MetadataFilters, q.ResponseStatus)
	if err != nil {
		return nil, err
	}
	var filter *searchstore.BoolFilter
	if len(filters) > 0 || q.ExcludeRecordID != nil {
		filter = &searchstore.BoolFilter{Filter: filters}
		if q.ExcludeRecordID != nil {
			filter.MustNot = []searchstore.Condition{
				{IDs: map[string]any{"values": []string{q.ExcludeRecordID.String()}}},
			}
		}
	}

	var text *searchstore.Condition
	if q.Text != nil {
		if text, err = compileTextQuery(ds, q.Text); err != nil {
			return nil, err
		}
	}

	value := q.Value
	if q.Order == search.LeastSimilar {
		value = negate(value)
	}

	body := s.mapper.KNNQuery(&searchstore.KNNRequest{
		Field:         vectorsProperty + "." + q.VectorSettings.ID.String(),
		Vector:        value,
		K:             k,
		NumCandidates: numCandidates(k),
		Filter:        filter,
		Text:          text,
	})
	body.Source = searchstore.Ptr(false)
	return body, nil
}

func (s *Store) compileFilters(ds *dataset.Dataset, metadataFilters []search.MetadataFilter, statusFilter *search.ResponseStatusFilter) ([]searchstore.Condition, error) {
	conditions := make([]searchstore.Condition, 0, len(metadataFilters)+1)
	for _, f := range metadataFilters {
		c, err := compileMetadataFilter(ds, f)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, *c)
	}
	if statusFilter != nil {
		c, err := compileResponseStatusFilter(statusFilter)
		if err != nil {
			return nil, err
		}
		if c != nil {
			conditions = append(conditions, *c)
		}
	}
	return conditions, nil
}

func compileTextQuery(ds *dataset.Dataset, text *search.TextQuery) (*searchstore.Condition, error) {
	if text.Field == "" {
		return nil, dataset.InvalidQueryError{Msg: "text query requires a field"}
	}
	if _, found := ds.FieldByName(text.Field); !found {
		return nil, dataset.NotFoundError{Msg: fmt.Sprintf("field with name `%s` not found for dataset `%s`", text.Field, ds.ID)}
	}
	return &searchstore.Condition{
		Match: map[string]any{
			fieldsProperty + "." + text.Field: map[string]any{
				"query":    text.Q,
				"operator": "and",
			},
		},
	}, nil
}

func compileMetadataFilter(ds *dataset.Dataset, f search.MetadataFilter) (*searchstore.Condition, error) {
	property, found := ds.MetadataPropertyByName(f.PropertyName())
	if !found {
		return nil, dataset.NotFoundError{Msg: fmt.Sprintf("metadata property with name `%s` not found for dataset `%s`", f.PropertyName(), ds.ID)}
	}
	if property.Type() != f.PropertyType() {
		return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("metadata property `%s` is of type `%s`, cannot apply a `%s` filter", property.Name, property.Type(), f.PropertyType())}
	}

	field := metadataProperty + "." + property.Name
	switch filter := f.(type) {
	case search.TermsFilter:
		if len(filter.Values) == 0 {
			return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("terms filter for `%s` requires at least one value", property.Name)}
		}
		return &searchstore.Condition{Terms: map[string]any{field: filter.Values}}, nil
	case search.IntegerRangeFilter:
		if filter.GE == nil && filter.LE == nil {
			return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("range filter for `%s` requires ge or le", property.Name)}
		}
		return rangeCondition(field, filter.GE, filter.LE), nil
	case search.FloatRangeFilter:
		if filter.GE == nil && filter.LE == nil {
			return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("range filter for `%s` requires ge or le", property.Name)}
		}
		return rangeCondition(field, filter.GE, filter.LE), nil
	default:
		return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("unsupported metadata filter %T", f)}
	}
}

func rangeCondition[T int64 | float64](field string, ge, le *T) *searchstore.Condition {
	bounds := map[string]any{}
	if ge != nil {
		bounds["gte"] = *ge
	}
	if le != nil {
		bounds["lte"] = *le
	}
	return &searchstore.Condition{Range: map[string]any{field: bounds}}
}

// compileResponseStatusFilter scopes the statuses to one user's response when
// a user is given, or to any response otherwise. Pending matches records
// without a response.
func compileResponseStatusFilter(f *search.ResponseStatusFilter) (*searchstore.Condition, error) {
	if len(f.Statuses) == 0 {
		return nil, nil
	}

	statusField := allResponsesStatusesProperty
	existsField := allResponsesStatusesProperty
	if f.UserID != nil {
		existsField = responsesProperty + "." + f.UserID.String()
		statusField = existsField + "." + statusProperty
	}

	statuses := []string{}
	pending := false
	for _, st := range f.Statuses {
		switch st {
		case search.ResponseFilterStatusPending:
			pending = true
		case search.ResponseFilterStatusSubmitted, search.ResponseFilterStatusDiscarded, search.ResponseFilterStatusDraft:
			statuses = append(statuses, string(st))
		default:
			return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("response status `%s` is not one of [pending, submitted, discarded, draft]", st)}
		}
	}

	should := []searchstore.Condition{}
	if len(statuses) > 0 {
		should = append(should, searchstore.Condition{Terms: map[string]any{statusField: statuses}})
	}
	if pending {
		should = append(should, searchstore.Condition{
			Bool: &searchstore.BoolFilter{
				MustNot: []searchstore.Condition{{Exists: &searchstore.ExistsFilter{Field: existsField}}},
			},
		})
	}
	return &searchstore.Condition{
		Bool: &searchstore.BoolFilter{Should: should, MinimumShouldMatch: 1},
	}, nil
}

// compileSort keeps the input order as the tie-break priority. Without an
// explicit sort, text queries rank by relevance and everything else by
// insertion time.
func compileSort(ds *dataset.Dataset, sortBy []search.SortBy, hasText bool) (*searchstore.Sort, error) {
	if len(sortBy) == 0 {
		if hasText {
			return nil, nil
		}
		return &searchstore.Sort{
			{insertedAtProperty: map[string]any{"order": string(search.SortOrderAsc)}},
			{idProperty: map[string]any{"order": string(search.SortOrderAsc)}},
		}, nil
	}

	sort := make(searchstore.Sort, 0, len(sortBy))
	for _, sb := range sortBy {
		if sb.Order != search.SortOrderAsc && sb.Order != search.SortOrderDesc {
			return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("sort order `%s` for field `%s` is not one of [asc, desc]", sb.Order, sb.Field)}
		}
		field, err := sortField(ds, sb.Field)
		if err != nil {
			return nil, err
		}
		sort = append(sort, map[string]any{field: map[string]any{"order": string(sb.Order)}})
	}
	return &sort, nil
}

func sortField(ds *dataset.Dataset, field string) (string, error) {
	switch field {
	case insertedAtProperty, updatedAtProperty:
		return field, nil
	}
	if name, found := strings.CutPrefix(field, metadataProperty+"."); found {
		if _, exists := ds.MetadataPropertyByName(name); !exists {
			return "", dataset.NotFoundError{Msg: fmt.Sprintf("metadata property with name `%s` not found for dataset `%s`", name, ds.ID)}
		}
		return field, nil
	}
	return "", dataset.InvalidQueryError{Msg: fmt.Sprintf("sort field `%s` is not one of [inserted_at, updated_at, metadata.<property>]", field)}
}

func negate(v []float32) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = -f
	}
	return out
}

func numCandidates(k int) int {
	n := k * 10
	if n > maxNumCandidates {
		n = maxNumCandidates
	}
	if n < k {
		n = k
	}
	return n
}
