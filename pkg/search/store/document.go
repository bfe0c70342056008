// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/internal/searchstore"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/search"
)

// recordToBulkItem indexes the record under its id, so a later write for the
// same record replaces the document.
func recordToBulkItem(index IndexName, ds *dataset.Dataset, r *dataset.Record) searchstore.BulkItem {
	return searchstore.BulkItem{
		Index: &searchstore.BulkIndex{
			Index: index.Name(),
			ID:    r.ID.String(),
		},
		Doc: recordDocument(ds, r),
	}
}

func idToDeleteItem(index IndexName, id uuid.UUID) searchstore.BulkItem {
	return searchstore.BulkItem{
		Delete: &searchstore.BulkIndex{
			Index: index.Name(),
			ID:    id.String(),
		},
	}
}

func recordDocument(ds *dataset.Dataset, r *dataset.Record) map[string]any {
	doc := map[string]any{
		idProperty:         r.ID.String(),
		insertedAtProperty: r.InsertedAt,
		updatedAtProperty:  r.UpdatedAt,
	}
	if r.ExternalID != nil {
		doc[externalIDProperty] = *r.ExternalID
	}

	fields := map[string]any{}
	for i := range ds.Fields {
		f := &ds.Fields[i]
		if !f.IsText() {
			continue
		}
		if v, found := r.Fields[f.Name]; found && v != nil {
			fields[f.Name] = v
		}
	}
	doc[fieldsProperty] = fields

	metadata := make(map[string]any, len(r.Metadata))
	for k, v := range r.Metadata {
		if v != nil {
			metadata[k] = v
		}
	}
	doc[metadataProperty] = metadata

	responses := make(map[string]any, len(r.Responses))
	for _, resp := range r.Responses {
		responses[resp.UserID.String()] = map[string]any{
			statusProperty: string(resp.Status),
		}
	}
	doc[responsesProperty] = responses

	vectors := map[string]any{}
	for _, v := range r.Vectors {
		if _, found := ds.VectorSettingsByID(v.VectorSettingsID); found {
			vectors[v.VectorSettingsID.String()] = v.Value
		}
	}
	if len(vectors) > 0 {
		doc[vectorsProperty] = vectors
	}

	return doc
}

var errBulkItemsFailed = errors.New("search backend rejected documents")

// bulkFailuresToError summarises the failed bulk items. The error is
// retriable only when every failure is.
func bulkFailuresToError(failed []searchstore.BulkItem, total int) error {
	if len(failed) == 0 {
		return nil
	}
	retriable := true
	for _, item := range failed {
		if !isRetriableStatus(item.Status) {
			retriable = false
			break
		}
	}

	err := fmt.Errorf("%w: %d of %d failed, first error: [%d] %s", errBulkItemsFailed, len(failed), total, failed[0].Status, string(failed[0].Error))
	if retriable {
		return fmt.Errorf("%w: %w", search.ErrRetriable, err)
	}
	return err
}

func isRetriableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}
