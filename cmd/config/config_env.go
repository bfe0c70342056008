// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/spf13/viper"
	"github.com/xataio/recordhub/internal/backoff"
	"github.com/xataio/recordhub/pkg/dataset/bulk"
	"github.com/xataio/recordhub/pkg/otel"
	"github.com/xataio/recordhub/pkg/tls"
)

func envToConfig() (*Config, error) {
	return &Config{
		LogLevel:    viper.GetString("RECORDHUB_LOG_LEVEL"),
		LogFormat:   viper.GetString("RECORDHUB_LOG_FORMAT"),
		PostgresURL: viper.GetString("RECORDHUB_POSTGRES_URL"),
		SchemaDir:   viper.GetString("RECORDHUB_SCHEMA_DIR"),
		Search:      parseSearchEnvConfig(),
		Ingestion: bulk.Config{
			MinItems: viper.GetInt("RECORDHUB_INGESTION_MIN_ITEMS"),
			MaxItems: viper.GetInt("RECORDHUB_INGESTION_MAX_ITEMS"),
		},
		Otel: parseOtelEnvConfig(),
	}, nil
}

func parseSearchEnvConfig() SearchConfig {
	return SearchConfig{
		ElasticsearchURL: viper.GetString("RECORDHUB_ELASTICSEARCH_URL"),
		OpenSearchURL:    viper.GetString("RECORDHUB_OPENSEARCH_URL"),
		NumberOfShards:   viper.GetInt("RECORDHUB_SEARCH_NUMBER_OF_SHARDS"),
		NumberOfReplicas: viper.GetInt("RECORDHUB_SEARCH_NUMBER_OF_REPLICAS"),
		MaxResultWindow:  viper.GetInt("RECORDHUB_SEARCH_MAX_RESULT_WINDOW"),
		KNNEnabled:       viper.GetBool("RECORDHUB_SEARCH_KNN_ENABLED"),
		Refresh:          viper.GetBool("RECORDHUB_SEARCH_REFRESH"),
		Retry:            parseBackoffEnvConfig("RECORDHUB_SEARCH"),
		TLS: tls.Config{
			Enabled:            viper.GetBool("RECORDHUB_SEARCH_TLS_ENABLED"),
			CACertFile:         viper.GetString("RECORDHUB_SEARCH_TLS_CA_CERT_FILE"),
			ClientCertFile:     viper.GetString("RECORDHUB_SEARCH_TLS_CLIENT_CERT_FILE"),
			ClientKeyFile:      viper.GetString("RECORDHUB_SEARCH_TLS_CLIENT_KEY_FILE"),
			InsecureSkipVerify: viper.GetBool("RECORDHUB_SEARCH_TLS_INSECURE_SKIP_VERIFY"),
		},
	}
}

func parseBackoffEnvConfig(prefix string) backoff.Config {
	cfg := backoff.Config{}
	if interval := viper.GetDuration(prefix + "_EXP_BACKOFF_INITIAL_INTERVAL"); interval != 0 {
		cfg.Exponential = &backoff.ExponentialConfig{
			InitialInterval: interval,
			MaxInterval:     viper.GetDuration(prefix + "_EXP_BACKOFF_MAX_INTERVAL"),
			MaxRetries:      viper.GetUint(prefix + "_EXP_BACKOFF_MAX_RETRIES"),
		}
	}
	if interval := viper.GetDuration(prefix + "_BACKOFF_INTERVAL"); interval != 0 {
		cfg.Constant = &backoff.ConstantConfig{
			Interval:   interval,
			MaxRetries: viper.GetUint(prefix + "_BACKOFF_MAX_RETRIES"),
		}
	}
	return cfg
}

func parseOtelEnvConfig() *otel.Config {
	metricsEndpoint := viper.GetString("RECORDHUB_METRICS_ENDPOINT")
	tracesEndpoint := viper.GetString("RECORDHUB_TRACES_ENDPOINT")
	if metricsEndpoint == "" && tracesEndpoint == "" {
		return nil
	}
	cfg := &otel.Config{}
	if metricsEndpoint != "" {
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           metricsEndpoint,
			CollectionInterval: viper.GetDuration("RECORDHUB_METRICS_COLLECTION_INTERVAL"),
			Runtime:            viper.GetBool("RECORDHUB_METRICS_RUNTIME"),
		}
	}
	if tracesEndpoint != "" {
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    tracesEndpoint,
			SampleRatio: viper.GetFloat64("RECORDHUB_TRACES_SAMPLE_RATIO"),
		}
	}
	return cfg
}
