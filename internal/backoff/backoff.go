// SPDX-License-Identifier: Apache-2.0

package backoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backoff retries an operation until it succeeds, fails permanently or the
// policy gives up. Notify is called before every retry.
type Backoff interface {
	RetryNotify(Operation, Notify) error
}

type (
	Operation func() error
	Notify    func(error, time.Duration)
)

// Config selects the retry policy. At most one of the policies is set, none
// means no retries.
type Config struct {
	Exponential *ExponentialConfig
	Constant    *ConstantConfig
}

// ExponentialConfig doubles the wait between retries, with jitter, from
// InitialInterval up to MaxInterval. Zero MaxRetries retries until the
// default elapsed time limit of the backoff library.
type ExponentialConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint
}

type ConstantConfig struct {
	Interval   time.Duration
	MaxRetries uint
}

var ErrPermanent = errors.New("permanent error, do not retry")

// Permanent marks the error so that the retry loop stops on it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

func (c *Config) IsSet() bool {
	return c != nil && (c.Constant != nil || c.Exponential != nil)
}

// Provider returns a fresh backoff bound to ctx. Backoffs are stateful, so
// every retry loop gets its own.
type Provider func(ctx context.Context) Backoff

func NewProvider(cfg *Config) Provider {
	return func(ctx context.Context) Backoff {
		return newPolicy(ctx, cfg)
	}
}

type policy struct {
	backoff backoff.BackOff
}

func newPolicy(ctx context.Context, cfg *Config) *policy {
	var (
		bo         backoff.BackOff
		maxRetries uint
	)
	switch {
	case cfg == nil:
		bo = &backoff.StopBackOff{}
	case cfg.Constant != nil:
		bo = backoff.NewConstantBackOff(cfg.Constant.Interval)
		maxRetries = cfg.Constant.MaxRetries
	case cfg.Exponential != nil:
		exp := backoff.NewExponentialBackOff()
		if cfg.Exponential.InitialInterval > 0 {
			exp.InitialInterval = cfg.Exponential.InitialInterval
		}
		if cfg.Exponential.MaxInterval > 0 {
			exp.MaxInterval = cfg.Exponential.MaxInterval
		}
		bo = exp
		maxRetries = cfg.Exponential.MaxRetries
	default:
		bo = &backoff.StopBackOff{}
	}

	if maxRetries > 0 {
		bo = backoff.WithMaxRetries(bo, uint64(maxRetries))
	}
	return &policy{backoff: backoff.WithContext(bo, ctx)}
}

func (p *policy) RetryNotify(op Operation, notify Notify) error {
	return backoff.RetryNotify(func() error {
		err := op()
		if errors.Is(err, ErrPermanent) {
			return backoff.Permanent(unwrapPermanent(err))
		}
		return err
	}, p.backoff, backoff.Notify(notify))
}

// unwrapPermanent returns the cause the operation marked as permanent, so
// callers get the original error back from the retry loop.
func unwrapPermanent(err error) error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			if e != ErrPermanent {
				return e
			}
		}
	}
	return err
}
