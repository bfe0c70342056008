// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xataio/recordhub/internal/json"
)

// Client is the subset of the cluster API the search store relies on. It is
// implemented for Elasticsearch and OpenSearch.
type Client interface {
	CreateIndex(ctx context.Context, index string, body map[string]any) error
	DeleteIndex(ctx context.Context, index string) error
	IndexExists(ctx context.Context, index string) (bool, error)
	PutIndexAlias(ctx context.Context, index, alias string) error
	PutIndexMappings(ctx context.Context, index string, body map[string]any) error
	RefreshIndex(ctx context.Context, index string) error
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
	SendBulkRequest(ctx context.Context, items []BulkItem) ([]BulkItem, error)
	GetMapper() Mapper
}

// Response exposes the parts of a go-elasticsearch or opensearch-go API
// response needed to interpret it.
type Response interface {
	GetBody() io.ReadCloser
	GetStatusCode() int
	IsError() bool
}

var errMissingResponse = errors.New("missing response")

func Ptr[T any](i T) *T { return &i }

// CreateReader returns a reader on the JSON representation of the given value.
func CreateReader(value any) (*bytes.Reader, error) {
	bytesValue, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("unexpected marshaling error: %w", err)
	}
	return bytes.NewReader(bytesValue), nil
}

// HandleResponse interprets the outcome of an API call made for op against
// backend. The response body is decoded into out when out is not nil, and
// always closed.
func HandleResponse(backend, op string, res Response, err error, out any) error {
	if err != nil {
		return fmt.Errorf("[%s] error from %s: %w", op, backend, err)
	}
	if res == nil {
		return fmt.Errorf("[%s] error from %s: %w", op, backend, errMissingResponse)
	}
	body := res.GetBody()
	if body != nil {
		defer body.Close()
	}

	if err := IsErrResponse(res); err != nil {
		return fmt.Errorf("[%s] error response from %s: %w", op, backend, err)
	}
	if out == nil {
		return nil
	}
	if body == nil {
		return fmt.Errorf("[%s] decoding %s response body: %w", op, backend, errMissingResponse)
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("[%s] decoding %s response body: %w", op, backend, err)
	}
	return nil
}

// HandleExistsResponse interprets a HEAD request, for which a not found
// status is a valid answer.
func HandleExistsResponse(backend, op string, res Response, err error) (bool, error) {
	if err != nil {
		return false, fmt.Errorf("[%s] error from %s: %w", op, backend, err)
	}
	if res == nil {
		return false, fmt.Errorf("[%s] error from %s: %w", op, backend, errMissingResponse)
	}
	if body := res.GetBody(); body != nil {
		defer body.Close()
	}

	switch status := res.GetStatusCode(); {
	case status == http.StatusNotFound:
		return false, nil
	case res.IsError():
		return false, fmt.Errorf("[%s] error response from %s: [%d]", op, backend, status)
	default:
		return true, nil
	}
}
