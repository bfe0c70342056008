// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"io"
	stdlog "log"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	loglib "github.com/xataio/recordhub/pkg/log"
	zerologlib "github.com/xataio/recordhub/pkg/log/zerolog"
)

type Config struct {
	LogLevel string
	// Format is one of console or json. Defaults to console.
	Format string
	// Out defaults to stderr, keeping stdout for command output.
	Out io.Writer
}

const jsonFormat = "json"

// Sampling limits for the chatty levels. Trace logs above the burst are
// dropped, debug logs above the burst are kept one in five.
const (
	samplingPeriod = time.Minute
	traceBurst     = 100
	debugBurst     = 1000
	debugKeepOneIn = 5
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.ErrorFieldName = "error.message"
	zerolog.ErrorStackFieldName = "error.stack"
	// the zerologr v-level duplicates the zerolog level
	zerologr.VerbosityFieldName = ""
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return path.Base(file) + ":" + strconv.Itoa(line)
	}
}

// NewLogger builds the process logger. An unknown level logs everything.
func NewLogger(cfg *Config) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.NoLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != jsonFormat {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = time.RFC3339Nano
		})
	}

	logger := zerolog.New(out).
		Sample(zerolog.LevelSampler{
			TraceSampler: &zerolog.BurstSampler{Burst: traceBurst, Period: samplingPeriod},
			DebugSampler: &zerolog.BurstSampler{
				Burst:       debugBurst,
				Period:      samplingPeriod,
				NextSampler: &zerolog.BasicSampler{N: debugKeepOneIn},
			},
		}).
		With().Timestamp().Caller().Stack().Logger().
		Level(level)
	return &logger
}

// SetGlobalLogger routes the stdlib log package, the zerolog global logger and
// the zerolog context default through logger, so dependencies logging on
// their own end up in the same output.
func SetGlobalLogger(logger *zerolog.Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)
	log.Logger = *logger
	zerolog.DefaultContextLogger = logger
}

// NewStdLogger wraps logger in the recordhub logging interface.
func NewStdLogger(logger *zerolog.Logger) loglib.Logger {
	return zerologlib.NewLogger(logger)
}
