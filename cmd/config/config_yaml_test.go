// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/xataio/recordhub/internal/backoff"
)

func TestYAMLConfig_toConfig(t *testing.T) {
	require.NoError(t, LoadFile("test/test_config.yaml"))

	var yamlCfg YAMLConfig
	require.NoError(t, viper.Unmarshal(&yamlCfg))

	cfg, err := yamlCfg.toConfig()
	require.NoError(t, err)

	validateTestConfig(t, cfg)
}

func TestBackoffConfig_parseBackoffConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config *BackoffConfig
		want   backoff.Config
	}{
		{
			name:   "nil",
			config: nil,
			want:   backoff.Config{},
		},
		{
			name: "constant",
			config: &BackoffConfig{
				Constant: &ConstantBackoffConfig{MaxRetries: 2, Interval: 100},
			},
			want: backoff.Config{
				Constant: &backoff.ConstantConfig{MaxRetries: 2, Interval: millis(100)},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.config.parseBackoffConfig())
		})
	}
}

func TestInstrumentationConfig_parseOtelConfig(t *testing.T) {
	t.Parallel()

	var nilCfg *InstrumentationConfig
	require.Nil(t, nilCfg.parseOtelConfig())
	require.Nil(t, (&InstrumentationConfig{}).parseOtelConfig())
	require.Equal(t, testOtelConfig(), (&InstrumentationConfig{
		Metrics: &MetricsConfig{Endpoint: "0.0.0.0:4317", CollectionInterval: 60000, Runtime: true},
		Traces:  &TracesConfig{Endpoint: "0.0.0.0:4317", SampleRatio: 0.5},
	}).parseOtelConfig())
}
