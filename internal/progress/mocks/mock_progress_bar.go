// SPDX-License-Identifier: Apache-2.0

package mocks

type Bar struct {
	AddFn   func(int) error
	CloseFn func() error
}

func (b *Bar) Add(n int) error {
	if b.AddFn == nil {
		return nil
	}
	return b.AddFn(n)
}

func (b *Bar) Close() error {
	if b.CloseFn == nil {
		return nil
	}
	return b.CloseFn()
}
