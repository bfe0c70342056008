// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/xataio/recordhub/internal/backoff"
	"github.com/xataio/recordhub/pkg/dataset/bulk"
	"github.com/xataio/recordhub/pkg/otel"
	"github.com/xataio/recordhub/pkg/tls"
)

type YAMLConfig struct {
	Log             LogConfig              `mapstructure:"log" yaml:"log"`
	Postgres        PostgresConfig         `mapstructure:"postgres" yaml:"postgres"`
	Schemas         SchemasConfig          `mapstructure:"schemas" yaml:"schemas"`
	Search          SearchYAMLConfig       `mapstructure:"search" yaml:"search"`
	Ingestion       IngestionConfig        `mapstructure:"ingestion" yaml:"ingestion"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation" yaml:"instrumentation"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type SchemasConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type SearchYAMLConfig struct {
	ElasticsearchURL string         `mapstructure:"elasticsearch_url" yaml:"elasticsearch_url"`
	OpenSearchURL    string         `mapstructure:"opensearch_url" yaml:"opensearch_url"`
	NumberOfShards   int            `mapstructure:"number_of_shards" yaml:"number_of_shards"`
	NumberOfReplicas int            `mapstructure:"number_of_replicas" yaml:"number_of_replicas"`
	MaxResultWindow  int            `mapstructure:"max_result_window" yaml:"max_result_window"`
	KNNEnabled       bool           `mapstructure:"knn_enabled" yaml:"knn_enabled"`
	Refresh          bool           `mapstructure:"refresh" yaml:"refresh"`
	Retry            *BackoffConfig `mapstructure:"retry" yaml:"retry"`
	TLS              *TLSConfig     `mapstructure:"tls" yaml:"tls"`
}

type TLSConfig struct {
	CACertFile         string `mapstructure:"ca_cert_file" yaml:"ca_cert_file"`
	ClientCertFile     string `mapstructure:"client_cert_file" yaml:"client_cert_file"`
	ClientKeyFile      string `mapstructure:"client_key_file" yaml:"client_key_file"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type BackoffConfig struct {
	Exponential *ExponentialBackoffConfig `mapstructure:"exponential" yaml:"exponential"`
	Constant    *ConstantBackoffConfig    `mapstructure:"constant" yaml:"constant"`
}

// intervals are expressed in milliseconds
type ExponentialBackoffConfig struct {
	MaxRetries      int `mapstructure:"max_retries" yaml:"max_retries"`
	InitialInterval int `mapstructure:"initial_interval" yaml:"initial_interval"`
	MaxInterval     int `mapstructure:"max_interval" yaml:"max_interval"`
}

type ConstantBackoffConfig struct {
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	Interval   int `mapstructure:"interval" yaml:"interval"`
}

type IngestionConfig struct {
	MinItems int `mapstructure:"min_items" yaml:"min_items"`
	MaxItems int `mapstructure:"max_items" yaml:"max_items"`
}

type InstrumentationConfig struct {
	Metrics *MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Traces  *TracesConfig  `mapstructure:"traces" yaml:"traces"`
}

type MetricsConfig struct {
	Endpoint           string `mapstructure:"endpoint" yaml:"endpoint"`
	CollectionInterval int    `mapstructure:"collection_interval" yaml:"collection_interval"`
	Runtime            bool   `mapstructure:"runtime" yaml:"runtime"`
}

type TracesConfig struct {
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

func (c *YAMLConfig) toConfig() (*Config, error) {
	return &Config{
		LogLevel:    c.Log.Level,
		LogFormat:   c.Log.Format,
		PostgresURL: c.Postgres.URL,
		SchemaDir:   c.Schemas.Dir,
		Search: SearchConfig{
			ElasticsearchURL: c.Search.ElasticsearchURL,
			OpenSearchURL:    c.Search.OpenSearchURL,
			NumberOfShards:   c.Search.NumberOfShards,
			NumberOfReplicas: c.Search.NumberOfReplicas,
			MaxResultWindow:  c.Search.MaxResultWindow,
			KNNEnabled:       c.Search.KNNEnabled,
			Refresh:          c.Search.Refresh,
			Retry:            c.Search.Retry.parseBackoffConfig(),
			TLS:              c.Search.TLS.parseTLSConfig(),
		},
		Ingestion: bulk.Config{
			MinItems: c.Ingestion.MinItems,
			MaxItems: c.Ingestion.MaxItems,
		},
		Otel: c.Instrumentation.parseOtelConfig(),
	}, nil
}

func (bo *BackoffConfig) parseBackoffConfig() backoff.Config {
	if bo == nil {
		return backoff.Config{}
	}
	cfg := backoff.Config{}
	if bo.Exponential != nil {
		cfg.Exponential = &backoff.ExponentialConfig{
			MaxRetries:      uint(bo.Exponential.MaxRetries),
			InitialInterval: millis(bo.Exponential.InitialInterval),
			MaxInterval:     millis(bo.Exponential.MaxInterval),
		}
	}
	if bo.Constant != nil {
		cfg.Constant = &backoff.ConstantConfig{
			MaxRetries: uint(bo.Constant.MaxRetries),
			Interval:   millis(bo.Constant.Interval),
		}
	}
	return cfg
}

// parseTLSConfig enables TLS when the section is present.
func (c *TLSConfig) parseTLSConfig() tls.Config {
	if c == nil {
		return tls.Config{}
	}
	return tls.Config{
		Enabled:            true,
		CACertFile:         c.CACertFile,
		ClientCertFile:     c.ClientCertFile,
		ClientKeyFile:      c.ClientKeyFile,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

func (c *InstrumentationConfig) parseOtelConfig() *otel.Config {
	if c == nil || (c.Metrics == nil && c.Traces == nil) {
		return nil
	}
	cfg := &otel.Config{}
	if c.Metrics != nil {
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           c.Metrics.Endpoint,
			CollectionInterval: millis(c.Metrics.CollectionInterval),
			Runtime:            c.Metrics.Runtime,
		}
	}
	if c.Traces != nil {
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    c.Traces.Endpoint,
			SampleRatio: c.Traces.SampleRatio,
		}
	}
	return cfg
}
