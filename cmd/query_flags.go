// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/search"
)

// queryFlags holds the raw search flag values shared by the search and
// similar commands.
type queryFlags struct {
	query    string
	field    string
	filters  []string
	statuses []string
	userID   string
	sort     []string
	offset   int
	limit    int
}

func (f *queryFlags) textQuery() *search.TextQuery {
	if f.query == "" {
		return nil
	}
	return &search.TextQuery{Q: f.query, Field: f.field}
}

func (f *queryFlags) toQuery(ds *dataset.Dataset) (*search.Query, error) {
	filters, err := parseMetadataFilters(ds, f.filters)
	if err != nil {
		return nil, err
	}
	status, err := parseResponseStatusFilter(f.statuses, f.userID)
	if err != nil {
		return nil, err
	}
	sort, err := parseSort(f.sort)
	if err != nil {
		return nil, err
	}
	return &search.Query{
		Text:            f.textQuery(),
		MetadataFilters: filters,
		ResponseStatus:  status,
		Sort:            sort,
		Offset:          f.offset,
		Limit:           f.limit,
	}, nil
}

// parseMetadataFilters parses filters in the format <property>=<v1>,<v2> for
// terms properties and <property>=<ge>:<le> for numeric properties, where
// either bound can be left empty.
func parseMetadataFilters(ds *dataset.Dataset, raw []string) ([]search.MetadataFilter, error) {
	filters := make([]search.MetadataFilter, 0, len(raw))
	for _, r := range raw {
		name, value, found := strings.Cut(r, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid metadata filter %q, expected <property>=<value>", r)
		}
		property, found := ds.MetadataPropertyByName(name)
		if !found || property.Settings == nil {
			return nil, fmt.Errorf("metadata property %q not found in dataset", name)
		}

		switch property.Settings.Type() {
		case dataset.MetadataPropertyTypeTerms:
			filters = append(filters, search.TermsFilter{Property: name, Values: strings.Split(value, ",")})
		case dataset.MetadataPropertyTypeInteger:
			ge, le, err := parseRange(value, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
			if err != nil {
				return nil, fmt.Errorf("metadata filter %q: %w", r, err)
			}
			filters = append(filters, search.IntegerRangeFilter{Property: name, GE: ge, LE: le})
		case dataset.MetadataPropertyTypeFloat:
			ge, le, err := parseRange(value, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
			if err != nil {
				return nil, fmt.Errorf("metadata filter %q: %w", r, err)
			}
			filters = append(filters, search.FloatRangeFilter{Property: name, GE: ge, LE: le})
		}
	}
	return filters, nil
}

func parseRange[T int64 | float64](value string, parse func(string) (T, error)) (*T, *T, error) {
	geStr, leStr, found := strings.Cut(value, ":")
	if !found {
		return nil, nil, fmt.Errorf("expected range in the format <ge>:<le>")
	}
	bound := func(s string) (*T, error) {
		if s == "" {
			return nil, nil
		}
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	ge, err := bound(geStr)
	if err != nil {
		return nil, nil, err
	}
	le, err := bound(leStr)
	if err != nil {
		return nil, nil, err
	}
	return ge, le, nil
}

func parseResponseStatusFilter(statuses []string, userID string) (*search.ResponseStatusFilter, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	filter := &search.ResponseStatusFilter{
		Statuses: make([]search.ResponseFilterStatus, 0, len(statuses)),
	}
	for _, s := range statuses {
		filter.Statuses = append(filter.Statuses, search.ResponseFilterStatus(s))
	}
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
		}
		filter.UserID = &id
	}
	return filter, nil
}

// parseSort parses sort criteria in the format <field>:<order>. The order
// defaults to ascending.
func parseSort(raw []string) ([]search.SortBy, error) {
	sort := make([]search.SortBy, 0, len(raw))
	for _, r := range raw {
		field, order, _ := strings.Cut(r, ":")
		if field == "" {
			return nil, fmt.Errorf("invalid sort %q, expected <field>:<order>", r)
		}
		if order == "" {
			order = string(search.SortOrderAsc)
		}
		sort = append(sort, search.SortBy{Field: field, Order: search.SortOrder(order)})
	}
	return sort, nil
}
