// SPDX-License-Identifier: Apache-2.0

package elasticsearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/xataio/recordhub/internal/searchstore"
)

// Client implements searchstore.Client on top of the official
// go-elasticsearch client.
type Client struct {
	client *elasticsearch.Client
}

const backend = "Elasticsearch"

var errNoAddress = errors.New("no address provided")

// NewClient creates a client for the cluster at url. A nil transport uses
// http.DefaultTransport.
func NewClient(url string, transport http.RoundTripper) (*Client, error) {
	if url == "" {
		return nil, errNoAddress
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Client{client: es}, nil
}

func (c *Client) GetMapper() searchstore.Mapper {
	return NewMapper()
}

func (c *Client) CreateIndex(ctx context.Context, index string, body map[string]any) error {
	reader, err := searchstore.CreateReader(body)
	if err != nil {
		return err
	}
	indices := c.client.Indices
	res, err := indices.Create(index, indices.Create.WithContext(ctx), indices.Create.WithBody(reader))
	return handle("CreateIndex", res, err, nil)
}

func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	indices := c.client.Indices
	res, err := indices.Delete([]string{index}, indices.Delete.WithContext(ctx))
	return handle("DeleteIndex", res, err, nil)
}

func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	indices := c.client.Indices
	res, err := indices.Exists([]string{index}, indices.Exists.WithContext(ctx))
	return searchstore.HandleExistsResponse(backend, "IndexExists", wrap(res), err)
}

func (c *Client) PutIndexAlias(ctx context.Context, index, alias string) error {
	indices := c.client.Indices
	res, err := indices.PutAlias([]string{index}, alias, indices.PutAlias.WithContext(ctx))
	return handle("PutIndexAlias", res, err, nil)
}

// PutIndexMappings adds field mappings to a previously created index. Indices
// are created with strict dynamic mapping, so every new property needs an
// explicit mapping.
func (c *Client) PutIndexMappings(ctx context.Context, index string, mapping map[string]any) error {
	reader, err := searchstore.CreateReader(mapping)
	if err != nil {
		return err
	}
	indices := c.client.Indices
	res, err := indices.PutMapping([]string{index}, reader, indices.PutMapping.WithContext(ctx))
	return handle("PutIndexMappings", res, err, nil)
}

func (c *Client) RefreshIndex(ctx context.Context, index string) error {
	indices := c.client.Indices
	res, err := indices.Refresh(indices.Refresh.WithIndex(index), indices.Refresh.WithContext(ctx))
	return handle("RefreshIndex", res, err, nil)
}

func (c *Client) Search(ctx context.Context, req *searchstore.SearchRequest) (*searchstore.SearchResponse, error) {
	search := c.client.Search
	res, err := search(search.WithContext(ctx), search.WithIndex(req.Index), search.WithBody(req.Body))

	var response searchstore.SearchResponse
	if err := handle("Search", res, err, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// SendBulkRequest performs multiple index or delete operations in a single
// call and returns the items that failed.
func (c *Client) SendBulkRequest(ctx context.Context, items []searchstore.BulkItem) ([]searchstore.BulkItem, error) {
	buffer := new(bytes.Buffer)
	if err := searchstore.EncodeBulkItems(buffer, items); err != nil {
		return nil, err
	}

	bulk := c.client.Bulk
	res, err := bulk(buffer, bulk.WithContext(ctx))

	var response searchstore.BulkResponse
	if err := handle("SendBulkRequest", res, err, &response); err != nil {
		return nil, err
	}
	return searchstore.FailedBulkItems(&response, items), nil
}

func handle(op string, res *esapi.Response, err error, out any) error {
	return searchstore.HandleResponse(backend, op, wrap(res), err, out)
}

type response struct {
	*esapi.Response
}

func wrap(res *esapi.Response) searchstore.Response {
	if res == nil {
		return nil
	}
	return response{Response: res}
}

func (r response) GetBody() io.ReadCloser { return r.Body }
func (r response) GetStatusCode() int     { return r.StatusCode }
