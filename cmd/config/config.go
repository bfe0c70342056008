// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/xataio/recordhub/internal/backoff"
	"github.com/xataio/recordhub/pkg/dataset/bulk"
	"github.com/xataio/recordhub/pkg/otel"
	"github.com/xataio/recordhub/pkg/search"
	"github.com/xataio/recordhub/pkg/search/store"
	"github.com/xataio/recordhub/pkg/tls"
)

// Config is the resolved configuration of a recordhub command, built either
// from a YAML file or from RECORDHUB_* environment variables.
type Config struct {
	LogLevel  string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `validate:"omitempty,oneof=console json"`

	PostgresURL string `validate:"required"`
	SchemaDir   string `validate:"required"`

	Search    SearchConfig
	Ingestion bulk.Config
	Otel      *otel.Config
}

type SearchConfig struct {
	ElasticsearchURL string `validate:"omitempty,url"`
	OpenSearchURL    string `validate:"omitempty,url"`
	NumberOfShards   int    `validate:"gte=0"`
	NumberOfReplicas int    `validate:"gte=0"`
	MaxResultWindow  int    `validate:"gte=0"`
	KNNEnabled       bool
	Refresh          bool
	Retry            backoff.Config
	TLS              tls.Config
}

var (
	errUnsupportedBackoff  = errors.New("only one of exponential or constant backoff can be configured")
	errUnsupportedFileType = errors.New("config file must have a .env, .yaml or .yml extension")
	errMissingPostgresURL  = errors.New("a postgres url must be provided")
	errSearchEngine        = errors.New("exactly one of elasticsearch or opensearch url must be configured")
	validate               = validator.New(validator.WithRequiredStructEnabled())
)

func Load() error {
	return LoadFile(viper.GetString("config"))
}

func LoadFile(file string) error {
	if file == "" {
		return nil
	}
	ext := filepath.Ext(file)
	if ext == "" {
		return fmt.Errorf("config file %s: %w", file, errUnsupportedFileType)
	}
	viper.SetConfigFile(file)
	viper.SetConfigType(ext[1:])
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Parse builds and validates the configuration from the loaded config file.
// Without a YAML file the environment variables are used.
func Parse() (*Config, error) {
	cfg, err := build()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParsePostgresURL returns the configured postgres URL, for commands that
// don't need the search engine configuration.
func ParsePostgresURL() (string, error) {
	cfg, err := build()
	if err != nil {
		return "", err
	}
	if cfg.PostgresURL == "" {
		return "", errMissingPostgresURL
	}
	return cfg.PostgresURL, nil
}

func build() (*Config, error) {
	var cfg *Config
	var err error
	switch ext := filepath.Ext(viper.GetViper().ConfigFileUsed()); ext {
	case ".yml", ".yaml":
		yamlCfg := YAMLConfig{}
		if err := viper.Unmarshal(&yamlCfg); err != nil {
			return nil, fmt.Errorf("decoding yaml config: %w", err)
		}
		cfg, err = yamlCfg.toConfig()
	default:
		cfg, err = envToConfig()
	}
	if err != nil {
		return nil, err
	}

	applyOverrides(cfg)
	return cfg, nil
}

// applyOverrides gives precedence to the values set through CLI flags.
func applyOverrides(cfg *Config) {
	if v := viper.GetString("postgres-url"); v != "" {
		cfg.PostgresURL = v
	}
	if v := viper.GetString("schema-dir"); v != "" {
		cfg.SchemaDir = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if (c.Search.ElasticsearchURL == "") == (c.Search.OpenSearchURL == "") {
		return errSearchEngine
	}
	if c.Search.Retry.Exponential != nil && c.Search.Retry.Constant != nil {
		return errUnsupportedBackoff
	}
	return nil
}

func (c *Config) StoreConfig() store.Config {
	return store.Config{
		ElasticsearchURL: c.Search.ElasticsearchURL,
		OpenSearchURL:    c.Search.OpenSearchURL,
		NumberOfShards:   c.Search.NumberOfShards,
		NumberOfReplicas: c.Search.NumberOfReplicas,
		MaxResultWindow:  c.Search.MaxResultWindow,
		KNNEnabled:       c.Search.KNNEnabled,
		Refresh:          c.Search.Refresh,
		TLS:              c.Search.TLS,
	}
}

func (c *Config) RetryConfig() *search.EngineRetryConfig {
	return &search.EngineRetryConfig{Backoff: c.Search.Retry}
}

// InstrumentationConfig returns the otel configuration. It is empty, which
// disables instrumentation, when none was provided.
func (c *Config) InstrumentationConfig() *otel.Config {
	if c.Otel == nil {
		return &otel.Config{}
	}
	return c.Otel
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
