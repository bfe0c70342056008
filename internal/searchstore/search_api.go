// SPDX-License-Identifier: Apache-2.0

package searchstore

import "io"

// SearchRequest targets a single index or alias with a serialised
// QueryBody.
type SearchRequest struct {
	Index string
	Body  io.Reader
}

type BoolFilter struct {
	Filter             []Condition `json:"filter,omitempty"`
	Should             []Condition `json:"should,omitempty"`
	Must               []Condition `json:"must,omitempty"`
	MustNot            []Condition `json:"must_not,omitempty"`
	MinimumShouldMatch int         `json:"minimum_should_match,omitempty"`
}

type ExistsFilter struct {
	Field string `json:"field"`
}

type Condition struct {
	Term   map[string]any      `json:"term,omitempty"`
	Terms  map[string]any      `json:"terms,omitempty"`
	IDs    map[string]any      `json:"ids,omitempty"`
	Range  map[string]any      `json:"range,omitempty"`
	Match  map[string]any      `json:"match,omitempty"`
	Exists *ExistsFilter       `json:"exists,omitempty"`
	Bool   *BoolFilter         `json:"bool,omitempty"`
	KNN    map[string]KNNQuery `json:"knn,omitempty"`
}

type QueryBody struct {
	Query          *Query     `json:"query,omitempty"`
	KNN            *KNNSearch `json:"knn,omitempty"`
	Sort           *Sort      `json:"sort,omitempty"`
	From           int        `json:"from,omitempty"`
	Size           int        `json:"size,omitempty"`
	Source         *bool      `json:"_source,omitempty"`
	TrackTotalHits bool       `json:"track_total_hits,omitempty"`
}

type Query struct {
	Bool     *BoolFilter         `json:"bool,omitempty"`
	Match    map[string]any      `json:"match,omitempty"`
	MatchAll *struct{}           `json:"match_all,omitempty"`
	KNN      map[string]KNNQuery `json:"knn,omitempty"`
}

// KNNQuery is the OpenSearch k-NN query clause, keyed by the vector field.
type KNNQuery struct {
	Vector []float32  `json:"vector"`
	K      int        `json:"k"`
	Filter *Condition `json:"filter,omitempty"`
}

// KNNSearch is the Elasticsearch top level approximate kNN search option.
type KNNSearch struct {
	Field         string     `json:"field"`
	QueryVector   []float32  `json:"query_vector"`
	K             int        `json:"k"`
	NumCandidates int        `json:"num_candidates"`
	Filter        *Condition `json:"filter,omitempty"`
}

// KNNRequest is the backend independent description of a nearest neighbour
// search. Each Mapper turns it into its own query DSL.
type KNNRequest struct {
	Field         string
	Vector        []float32
	K             int
	NumCandidates int
	Filter        *BoolFilter
	Text          *Condition
}

type Sort []map[string]any

type Hit struct {
	ID     string         `json:"_id"`
	Index  string         `json:"_index"`
	Source map[string]any `json:"_source"`
	Score  float64        `json:"_score"`
}

type Hits struct {
	Total struct {
		Value    int    `json:"value"`
		Relation string `json:"relation"`
	} `json:"total"`
	Hits []Hit `json:"hits"`
}

type SearchResponse struct {
	Hits Hits `json:"hits"`
}
