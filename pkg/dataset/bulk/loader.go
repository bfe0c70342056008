// SPDX-License-Identifier: Apache-2.0

package bulk

import (
	"context"
	"errors"
	"fmt"

	"github.com/xataio/recordhub/internal/progress"
	"github.com/xataio/recordhub/pkg/dataset"
	loglib "github.com/xataio/recordhub/pkg/log"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
	ModeUpsert Mode = "upsert"
)

var ErrUnsupportedMode = errors.New("unsupported ingestion mode")

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCreate, ModeUpdate, ModeUpsert:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q, must be one of [create, update, upsert]", ErrUnsupportedMode, s)
	}
}

// Loader ingests an arbitrary number of payloads by splitting them into
// batches run one after the other. Each batch is atomic on its own, a failing
// batch stops the load and the batches before it stay committed.
type Loader struct {
	logger    loglib.Logger
	ingester  Ingester
	batchSize int
	bar       progress.Bar
}

type LoaderOption func(*Loader)

func NewLoader(ingester Ingester, batchSize int, opts ...LoaderOption) *Loader {
	if batchSize <= 0 {
		batchSize = defaultMaxItems
	}
	l := &Loader{
		logger:    loglib.NewNoopLogger(),
		ingester:  ingester,
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func WithLoaderLogger(logger loglib.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = loglib.NewLogger(logger).WithFields(loglib.Fields{
			loglib.ModuleField: "bulk_loader",
		})
	}
}

func WithProgressBar(bar progress.Bar) LoaderOption {
	return func(l *Loader) {
		l.bar = bar
	}
}

// Load returns the accumulated result of the batches that were committed,
// even when a later batch fails.
func (l *Loader) Load(ctx context.Context, ds *dataset.Dataset, mode Mode, items []*dataset.RecordUpsert) (*Result, error) {
	total := &Result{Records: make([]*dataset.Record, 0, len(items))}
	if l.bar != nil {
		defer l.bar.Close()
	}

	for start := 0; start < len(items); start += l.batchSize {
		end := min(start+l.batchSize, len(items))

		res, err := l.run(ctx, ds, mode, items[start:end])
		if res != nil {
			total.add(res)
			if l.bar != nil {
				_ = l.bar.Add(end - start)
			}
		}
		if err != nil {
			l.logger.Error(err, "batch failed", loglib.Fields{
				loglib.DatasetIDField: ds.ID.String(),
				"mode":                string(mode),
				"from":                start,
				"to":                  end,
			})
			return total, offsetViolations(err, start)
		}
		l.logger.Debug("batch ingested", loglib.Fields{loglib.DatasetIDField: ds.ID.String(), "from": start, "to": end, "indexed": res.Indexed})
	}

	return total, nil
}

func (l *Loader) run(ctx context.Context, ds *dataset.Dataset, mode Mode, items []*dataset.RecordUpsert) (*Result, error) {
	switch mode {
	case ModeCreate:
		return l.ingester.Create(ctx, ds, items)
	case ModeUpdate:
		return l.ingester.Update(ctx, ds, items)
	case ModeUpsert:
		return l.ingester.Upsert(ctx, ds, items)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

func (r *Result) add(other *Result) {
	r.Records = append(r.Records, other.Records...)
	r.Created += other.Created
	r.Updated += other.Updated
	r.Deleted += other.Deleted
	r.Indexed += other.Indexed
}

// offsetViolations makes the violation positions relative to the whole
// payload list instead of the batch.
func offsetViolations(err error, offset int) error {
	var validationErr *dataset.SchemaValidationError
	if offset == 0 || !errors.As(err, &validationErr) {
		return err
	}
	violations := make([]dataset.Violation, 0, len(validationErr.Violations))
	for _, v := range validationErr.Violations {
		v.Position += offset
		violations = append(violations, v)
	}
	return &dataset.SchemaValidationError{Violations: violations}
}
