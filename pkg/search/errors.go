// SPDX-License-Identifier: Apache-2.0

package search

import "errors"

// ErrRetriable marks backend failures that may succeed if retried.
var ErrRetriable = errors.New("retriable error")
