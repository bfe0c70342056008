// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"net/http"

	"github.com/xataio/recordhub/internal/json"
)

// BulkItem is one action of a bulk request. Index actions carry the document
// in Doc, delete actions carry none. Status and Error are filled in from the
// bulk response when the action failed.
type BulkItem struct {
	Index  *BulkIndex         `json:"index,omitempty"`
	Delete *BulkIndex         `json:"delete,omitempty"`
	Doc    map[string]any     `json:"-"`
	Status int                `json:"-"`
	Error  stdjson.RawMessage `json:"-"`
}

type BulkIndex struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

type bulkActionResult struct {
	Status int                `json:"status"`
	Error  stdjson.RawMessage `json:"error"`
}

type BulkResponseItem struct {
	Index  bulkActionResult `json:"index"`
	Delete bulkActionResult `json:"delete"`
}

type BulkResponse struct {
	Errors bool               `json:"errors"`
	Items  []BulkResponseItem `json:"items"`
}

var emptyDocument = []byte("{}\n")

// EncodeBulkItems writes the items as newline delimited action and document
// pairs.
func EncodeBulkItems(buffer *bytes.Buffer, items []BulkItem) error {
	encoder := json.NewEncoder(buffer)
	for i, item := range items {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("encoding bulk action %d: %w", i, err)
		}

		switch {
		case item.Delete != nil:
		case item.Doc == nil:
			buffer.Write(emptyDocument)
		default:
			if err := encoder.Encode(item.Doc); err != nil {
				return fmt.Errorf("encoding bulk document %d: %w", i, err)
			}
		}
	}
	return nil
}

// FailedBulkItems returns the bulk items the backend failed to apply, with
// their status and error attached.
func FailedBulkItems(response *BulkResponse, items []BulkItem) []BulkItem {
	failed := []BulkItem{}
	if !response.Errors {
		return failed
	}

	for i, respItem := range response.Items {
		if i >= len(items) {
			break
		}

		var result bulkActionResult
		switch {
		case items[i].Index != nil:
			result = respItem.Index
		case items[i].Delete != nil:
			result = respItem.Delete
			// deleting a document that is not indexed is not a failure
			if result.Status == http.StatusNotFound {
				continue
			}
		default:
			continue
		}

		if result.Status < http.StatusMultipleChoices {
			continue
		}
		items[i].Status = result.Status
		items[i].Error = result.Error
		failed = append(failed, items[i])
	}
	return failed
}
