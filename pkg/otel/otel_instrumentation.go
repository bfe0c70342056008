// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentationProvider interface {
	NewInstrumentation(name string) *Instrumentation
	Close() error
}

// Instrumentation is the meter and tracer handed to the instrumented
// decorators. A nil instrumentation disables them.
type Instrumentation struct {
	Meter  metric.Meter
	Tracer trace.Tracer
}

func (i *Instrumentation) IsEnabled() bool {
	return i != nil && (i.Meter != nil || i.Tracer != nil)
}

type noopProvider struct{}

func (noopProvider) NewInstrumentation(string) *Instrumentation { return nil }
func (noopProvider) Close() error                               { return nil }

// NewInstrumentationProvider returns a provider exporting the configured
// signals, or a noop provider when none is configured.
func NewInstrumentationProvider(cfg *Config) (InstrumentationProvider, error) {
	if !cfg.enabled() {
		return noopProvider{}, nil
	}
	return NewProvider(cfg)
}
