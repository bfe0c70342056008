// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewInstrumentationProvider_noop(t *testing.T) {
	t.Parallel()

	for _, cfg := range []*Config{nil, {}} {
		p, err := NewInstrumentationProvider(cfg)
		require.NoError(t, err)
		require.Equal(t, noopProvider{}, p)
		require.False(t, p.NewInstrumentation("test").IsEnabled())
		require.NoError(t, p.Close())
	}
}

func TestProvider_Close(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")
	order := []int{}
	p := &Provider{
		shutdownFns: []func(context.Context) error{
			func(context.Context) error { order = append(order, 1); return nil },
			func(context.Context) error { order = append(order, 2); return errTest },
		},
	}

	err := p.Close()
	require.ErrorIs(t, err, errTest)
	require.Equal(t, []int{2, 1}, order)
}

func TestCloseSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := StartSpan(context.Background(), tracer, "ok")
	CloseSpan(span, nil)
	_, span = StartSpan(context.Background(), tracer, "failed")
	CloseSpan(span, errors.New("oh noes"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	require.Equal(t, codes.Unset, ended[0].Status().Code)
	require.Equal(t, codes.Error, ended[1].Status().Code)
	require.Equal(t, "oh noes", ended[1].Status().Description)

	ctx, span := StartSpan(context.Background(), nil, "disabled")
	require.Nil(t, span)
	require.Equal(t, context.Background(), ctx)
	CloseSpan(span, errors.New("ignored"))
}

func TestDeltaSelector(t *testing.T) {
	t.Parallel()

	require.Equal(t, metricdata.DeltaTemporality, deltaSelector(sdkmetric.InstrumentKindCounter))
	require.Equal(t, metricdata.DeltaTemporality, deltaSelector(sdkmetric.InstrumentKindHistogram))
	require.Equal(t, metricdata.CumulativeTemporality, deltaSelector(sdkmetric.InstrumentKindUpDownCounter))
}

func TestVersionFromSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
	}{
		{
			name: "no vcs settings",
			want: unknownVersion,
		},
		{
			name:     "clean",
			settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}, {Key: "vcs.modified", Value: "false"}},
			want:     "abc123",
		},
		{
			name:     "modified",
			settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}, {Key: "vcs.modified", Value: "true"}},
			want:     "abc123-dirty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, versionFromSettings(tc.settings))
		})
	}
}
