// SPDX-License-Identifier: Apache-2.0

package otel

import "time"

// Config enables metrics and/or traces export over OTLP gRPC. A nil section
// disables the signal.
type Config struct {
	Metrics *MetricsConfig
	Traces  *TracesConfig
}

type MetricsConfig struct {
	Endpoint           string
	CollectionInterval time.Duration
	// Runtime adds the go runtime metrics (memory, GC, goroutines).
	Runtime bool
}

type TracesConfig struct {
	Endpoint    string
	SampleRatio float64
}

const defaultCollectionInterval = time.Minute

func (c *Config) enabled() bool {
	return c != nil && (c.Metrics != nil || c.Traces != nil)
}

func (c *MetricsConfig) collectionInterval() time.Duration {
	if c.CollectionInterval > 0 {
		return c.CollectionInterval
	}
	return defaultCollectionInterval
}
