// SPDX-License-Identifier: Apache-2.0

package log

// Logger is the structured logger used across recordhub packages. Errors are
// only attached to warnings and errors.
type Logger interface {
	Trace(msg string, fields ...Fields)
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(err error, msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

type Fields map[string]any

// Common field keys, so the same entity is logged under the same key by every
// module.
const (
	ModuleField    = "module"
	DatasetIDField = "dataset_id"
	IndexField     = "index"
	RecordsField   = "records"
)

type NoopLogger struct{}

func (*NoopLogger) Trace(string, ...Fields)        {}
func (*NoopLogger) Debug(string, ...Fields)        {}
func (*NoopLogger) Info(string, ...Fields)         {}
func (*NoopLogger) Warn(error, string, ...Fields)  {}
func (*NoopLogger) Error(error, string, ...Fields) {}
func (l *NoopLogger) WithFields(Fields) Logger     { return l }

func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

// NewLogger returns l, or a noop logger when l is nil.
func NewLogger(l Logger) Logger {
	if l == nil {
		return &NoopLogger{}
	}
	return l
}

// MergeFields returns a new set with the fields of both inputs. Keys in f2
// win.
func MergeFields(f1, f2 Fields) Fields {
	merged := make(Fields, len(f1)+len(f2))
	for k, v := range f1 {
		merged[k] = v
	}
	for k, v := range f2 {
		merged[k] = v
	}
	return merged
}
