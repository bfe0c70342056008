// SPDX-License-Identifier: Apache-2.0

package bulk

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

// searchableContent is the part of a record that is stored in the search
// index. Suggestions and response values are not indexed.
type searchableContent struct {
	ExternalID *string
	Fields     map[string]any
	Metadata   map[string]any
	Vectors    map[uuid.UUID][]float32
	Statuses   map[uuid.UUID]dataset.ResponseStatus
}

func newSearchableContent(r *dataset.Record) searchableContent {
	c := searchableContent{
		ExternalID: r.ExternalID,
		Fields:     r.Fields,
		Metadata:   r.Metadata,
		Vectors:    make(map[uuid.UUID][]float32, len(r.Vectors)),
		Statuses:   make(map[uuid.UUID]dataset.ResponseStatus, len(r.Responses)),
	}
	for _, v := range r.Vectors {
		c.Vectors[v.VectorSettingsID] = v.Value
	}
	for _, resp := range r.Responses {
		c.Statuses[resp.UserID] = resp.Status
	}
	return c
}

func searchableContentChanged(before, after *dataset.Record) bool {
	return !cmp.Equal(newSearchableContent(before), newSearchableContent(after), cmpopts.EquateEmpty())
}
