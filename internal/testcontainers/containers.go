// SPDX-License-Identifier: Apache-2.0

// Package testcontainers starts the backing services used by the integration
// tests.
package testcontainers

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/modules/opensearch"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage      = "postgres:17-alpine"
	elasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.9.0"
	opensearchImage    = "opensearchproject/opensearch:2.19.1"

	postgresStartupTimeout = 30 * time.Second
)

// Container is a running service reachable at URL.
type Container struct {
	URL       string
	container testcontainers.Container
}

// Terminate stops and removes the container.
func (c *Container) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}

// StartPostgres starts a postgres server. The URL is a connection string with
// TLS disabled.
func StartPostgres(ctx context.Context) (*Container, error) {
	// postgres restarts once after the init scripts run
	ready := wait.ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(postgresStartupTimeout)

	ctr, err := postgres.Run(ctx, postgresImage, testcontainers.WithWaitStrategy(ready))
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, terminateOnError(ctx, ctr, fmt.Errorf("postgres connection string: %w", err))
	}
	return &Container{URL: url, container: ctr}, nil
}

// StartElasticsearch starts a single node cluster with security disabled.
func StartElasticsearch(ctx context.Context) (*Container, error) {
	ctr, err := elasticsearch.Run(ctx, elasticsearchImage,
		testcontainers.WithEnv(map[string]string{"xpack.security.enabled": "false"}))
	if err != nil {
		return nil, fmt.Errorf("starting elasticsearch container: %w", err)
	}
	return &Container{URL: ctr.Settings.Address, container: ctr}, nil
}

// StartOpenSearch starts a single node cluster with the k-NN plugin
// available.
func StartOpenSearch(ctx context.Context) (*Container, error) {
	ctr, err := opensearch.Run(ctx, opensearchImage)
	if err != nil {
		return nil, fmt.Errorf("starting opensearch container: %w", err)
	}
	url, err := ctr.Address(ctx)
	if err != nil {
		return nil, terminateOnError(ctx, ctr, fmt.Errorf("opensearch address: %w", err))
	}
	return &Container{URL: url, container: ctr}, nil
}

func terminateOnError(ctx context.Context, ctr testcontainers.Container, err error) error {
	if termErr := ctr.Terminate(ctx); termErr != nil {
		return fmt.Errorf("%w (terminating container: %w)", err, termErr)
	}
	return err
}
