// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Violation is a single validation failure for the record at Position in the
// ingested batch.
type Violation struct {
	Position int
	Reason   string
}

func (v Violation) Error() string {
	return fmt.Sprintf("Record at position %d is not valid because %s", v.Position, v.Reason)
}

type SchemaValidationError struct {
	Violations []Violation
}

func (e *SchemaValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

type NotFoundError struct {
	Msg string
}

func (e NotFoundError) Error() string {
	return e.Msg
}

type ConflictError struct {
	Msg string
}

func (e ConflictError) Error() string {
	return e.Msg
}

type LimitExceededError struct {
	Msg string
}

func (e LimitExceededError) Error() string {
	return e.Msg
}

// InvalidQueryError is returned for malformed search requests.
type InvalidQueryError struct {
	Msg string
}

func (e InvalidQueryError) Error() string {
	return e.Msg
}

// BackendUnavailableError reports a search cluster failure. Relational writes
// preceding it may have already been committed.
type BackendUnavailableError struct {
	Cause error
}

func (e BackendUnavailableError) Error() string {
	return fmt.Sprintf("search backend unavailable: %v", e.Cause)
}

func (e BackendUnavailableError) Unwrap() error {
	return e.Cause
}

var (
	ErrNoFields     = errors.New("dataset has no fields")
	ErrAlreadyReady = errors.New("dataset is already published")
)
