// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	loglib "github.com/xataio/recordhub/pkg/log"
)

// Logger implements loglib.Logger on a zerolog logger. Fields set with
// WithFields are added to every event.
type Logger struct {
	zerologger *zerolog.Logger
	fields     loglib.Fields
}

// byte fields are cut to keep record payloads readable
const logMaxBytes = 10000

func NewLogger(zl *zerolog.Logger) *Logger {
	return &Logger{
		zerologger: zl,
	}
}

func (l *Logger) Trace(msg string, fields ...loglib.Fields) {
	l.send(l.zerologger.Trace(), msg, fields)
}

func (l *Logger) Debug(msg string, fields ...loglib.Fields) {
	l.send(l.zerologger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...loglib.Fields) {
	l.send(l.zerologger.Info(), msg, fields)
}

func (l *Logger) Warn(err error, msg string, fields ...loglib.Fields) {
	l.send(l.zerologger.Warn().Err(err), msg, fields)
}

func (l *Logger) Error(err error, msg string, fields ...loglib.Fields) {
	l.send(l.zerologger.Error().Err(err), msg, fields)
}

func (l *Logger) WithFields(fields loglib.Fields) loglib.Logger {
	return &Logger{
		zerologger: l.zerologger,
		fields:     loglib.MergeFields(l.fields, fields),
	}
}

// send is a noop for events below the logger level, for which zerolog
// returns a nil event. Event fields override the logger fields.
func (l *Logger) send(event *zerolog.Event, msg string, fields []loglib.Fields) {
	if event == nil {
		return
	}
	merged := l.fields
	for _, f := range fields {
		merged = loglib.MergeFields(merged, f)
	}
	addFields(event, merged)
	event.Msg(msg)
}

func addFields(event *zerolog.Event, fields loglib.Fields) {
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			event.Str(key, v)
		case int:
			event.Int(key, v)
		case int64:
			event.Int64(key, v)
		case uint:
			event.Uint(key, v)
		case float64:
			event.Float64(key, v)
		case bool:
			event.Bool(key, v)
		case uuid.UUID:
			event.Str(key, v.String())
		case []uuid.UUID:
			ids := make([]string, 0, len(v))
			for _, id := range v {
				ids = append(ids, id.String())
			}
			event.Strs(key, ids)
		case []string:
			event.Strs(key, v)
		case []byte:
			event.Bytes(key, v[:min(len(v), logMaxBytes)])
		case time.Time:
			event.Time(key, v)
		case time.Duration:
			event.Dur(key, v)
		case fmt.Stringer:
			event.Stringer(key, v)
		default:
			event.Interface(key, v)
		}
	}
}
