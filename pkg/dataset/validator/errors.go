// SPDX-License-Identifier: Apache-2.0

package validator

import "errors"

var (
	errNaNNotAllowed    = errors.New("NaN is not allowed")
	errEmptyValue       = errors.New("value cannot be empty")
	errScoreOutOfRange  = errors.New("score must be a number between 0 and 1")
	errScoreLenMismatch = errors.New("number of items on value and score attributes doesn't match")
)
