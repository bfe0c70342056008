// SPDX-License-Identifier: Apache-2.0

package search

import (
	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

type Query struct {
	Text            *TextQuery
	MetadataFilters []MetadataFilter
	ResponseStatus  *ResponseStatusFilter
	Sort            []SortBy
	Offset          int
	Limit           int
}

// TextQuery is a full text match on one record field.
type TextQuery struct {
	Q     string
	Field string
}

// MetadataFilter is implemented by TermsFilter, IntegerRangeFilter and
// FloatRangeFilter.
type MetadataFilter interface {
	PropertyName() string
	PropertyType() dataset.MetadataPropertyType
}

type TermsFilter struct {
	Property string
	Values   []string
}

// IntegerRangeFilter bounds are inclusive and independently optional.
type IntegerRangeFilter struct {
	Property string
	GE       *int64
	LE       *int64
}

type FloatRangeFilter struct {
	Property string
	GE       *float64
	LE       *float64
}

func (f TermsFilter) PropertyName() string        { return f.Property }
func (f IntegerRangeFilter) PropertyName() string { return f.Property }
func (f FloatRangeFilter) PropertyName() string   { return f.Property }

func (TermsFilter) PropertyType() dataset.MetadataPropertyType {
	return dataset.MetadataPropertyTypeTerms
}

func (IntegerRangeFilter) PropertyType() dataset.MetadataPropertyType {
	return dataset.MetadataPropertyTypeInteger
}

func (FloatRangeFilter) PropertyType() dataset.MetadataPropertyType {
	return dataset.MetadataPropertyTypeFloat
}

type ResponseFilterStatus string

const (
	ResponseFilterStatusSubmitted ResponseFilterStatus = ResponseFilterStatus(dataset.ResponseStatusSubmitted)
	ResponseFilterStatusDiscarded ResponseFilterStatus = ResponseFilterStatus(dataset.ResponseStatusDiscarded)
	ResponseFilterStatusDraft     ResponseFilterStatus = ResponseFilterStatus(dataset.ResponseStatusDraft)
	// ResponseFilterStatusPending matches records without a response.
	ResponseFilterStatusPending ResponseFilterStatus = "pending"
)

// ResponseStatusFilter restricts results by response status. With a user it
// applies to that user's response only, otherwise to any response.
type ResponseStatusFilter struct {
	UserID   *uuid.UUID
	Statuses []ResponseFilterStatus
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortBy field is one of inserted_at, updated_at or metadata.<property>.
type SortBy struct {
	Field string
	Order SortOrder
}

type SimilarityOrder string

const (
	MostSimilar  SimilarityOrder = "most_similar"
	LeastSimilar SimilarityOrder = "least_similar"
)

// SimilarityQuery is a resolved nearest neighbour query: the vector settings
// and the query vector are known.
type SimilarityQuery struct {
	VectorSettings  *dataset.VectorSettings
	Value           []float32
	Order           SimilarityOrder
	MaxResults      int
	Text            *TextQuery
	MetadataFilters []MetadataFilter
	ResponseStatus  *ResponseStatusFilter
	// ExcludeRecordID removes the anchor record from the results.
	ExcludeRecordID *uuid.UUID
}

// SimilarityRequest is anchored either by an existing record vector or by an
// explicit value, never both.
type SimilarityRequest struct {
	VectorName      string
	RecordID        *uuid.UUID
	Value           []float32
	Order           SimilarityOrder
	MaxResults      int
	Text            *TextQuery
	MetadataFilters []MetadataFilter
	ResponseStatus  *ResponseStatusFilter
}
