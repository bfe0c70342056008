// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeBulkItems(t *testing.T) {
	t.Parallel()

	items := []BulkItem{
		{Index: &BulkIndex{Index: "ds", ID: "1"}, Doc: map[string]any{"id": "1"}},
		{Index: &BulkIndex{Index: "ds", ID: "2"}},
		{Delete: &BulkIndex{Index: "ds", ID: "3"}},
	}

	buffer := &bytes.Buffer{}
	require.NoError(t, EncodeBulkItems(buffer, items))

	lines := bytes.Split(bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), []byte("\n"))
	require.Len(t, lines, 5)
	require.JSONEq(t, `{"index":{"_index":"ds","_id":"1"}}`, string(lines[0]))
	require.JSONEq(t, `{"id":"1"}`, string(lines[1]))
	require.JSONEq(t, `{"index":{"_index":"ds","_id":"2"}}`, string(lines[2]))
	require.JSONEq(t, `{}`, string(lines[3]))
	require.JSONEq(t, `{"delete":{"_index":"ds","_id":"3"}}`, string(lines[4]))
}

func TestFailedBulkItems(t *testing.T) {
	t.Parallel()

	items := []BulkItem{
		{Index: &BulkIndex{Index: "ds", ID: "1"}},
		{Index: &BulkIndex{Index: "ds", ID: "2"}},
		{Delete: &BulkIndex{Index: "ds", ID: "3"}},
	}
	body := `{"errors":true,"items":[
		{"index":{"status":201}},
		{"index":{"status":400,"error":{"type":"strict_dynamic_mapping_exception"}}},
		{"delete":{"status":404}}
	]}`

	var response BulkResponse
	require.NoError(t, json.Unmarshal([]byte(body), &response))

	failed := FailedBulkItems(&response, items)
	require.Len(t, failed, 1)
	require.Equal(t, "2", failed[0].Index.ID)
	require.Equal(t, http.StatusBadRequest, failed[0].Status)

	require.Empty(t, FailedBulkItems(&BulkResponse{Errors: false}, items))
}
