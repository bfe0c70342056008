// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	status int
	body   *trackingBody
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func newFakeResponse(status int, body string) *fakeResponse {
	return &fakeResponse{status: status, body: &trackingBody{Reader: strings.NewReader(body)}}
}

func (r *fakeResponse) GetBody() io.ReadCloser { return r.body }
func (r *fakeResponse) GetStatusCode() int     { return r.status }
func (r *fakeResponse) IsError() bool          { return r.status > 299 }

func TestHandleResponse(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")

	t.Run("decodes body", func(t *testing.T) {
		t.Parallel()
		res := newFakeResponse(http.StatusOK, `{"hits":{"total":{"value":2},"hits":[]}}`)
		var out SearchResponse
		require.NoError(t, HandleResponse("OpenSearch", "Search", res, nil, &out))
		require.Equal(t, 2, out.Hits.Total.Value)
		require.True(t, res.body.closed)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()
		err := HandleResponse("OpenSearch", "Search", nil, errTest, nil)
		require.ErrorIs(t, err, errTest)
		require.ErrorContains(t, err, "[Search] error from OpenSearch")
	})

	t.Run("missing response", func(t *testing.T) {
		t.Parallel()
		err := HandleResponse("OpenSearch", "Search", nil, nil, nil)
		require.ErrorIs(t, err, errMissingResponse)
	})

	t.Run("not found response", func(t *testing.T) {
		t.Parallel()
		res := newFakeResponse(http.StatusNotFound, `{"error":{"type":"index_not_found_exception","reason":"no such index"}}`)
		err := HandleResponse("Elasticsearch", "Search", res, nil, nil)
		require.ErrorIs(t, err, ErrResourceNotFound)
		require.True(t, res.body.closed)
	})

	t.Run("retryable response", func(t *testing.T) {
		t.Parallel()
		res := newFakeResponse(http.StatusTooManyRequests, `{}`)
		err := HandleResponse("Elasticsearch", "SendBulkRequest", res, nil, nil)
		require.ErrorAs(t, err, &RetryableError{})
	})
}

func TestHandleExistsResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		wantExists bool
		wantErr    bool
	}{
		{name: "exists", status: http.StatusOK, wantExists: true},
		{name: "not found", status: http.StatusNotFound, wantExists: false},
		{name: "error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			exists, err := HandleExistsResponse("OpenSearch", "IndexExists", newFakeResponse(tc.status, ""), nil)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantExists, exists)
		})
	}
}
