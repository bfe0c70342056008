// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/xataio/recordhub/internal/json"
)

// ResponseError is the error envelope returned by both backends.
type ResponseError struct {
	Type      string       `mapstructure:"type"`
	Reason    string       `mapstructure:"reason"`
	Index     string       `mapstructure:"index"`
	CausedBy  *ErrorCause  `mapstructure:"caused_by"`
	RootCause []ErrorCause `mapstructure:"root_cause"`
}

type ErrorCause struct {
	Type   string `mapstructure:"type"`
	Reason string `mapstructure:"reason"`
}

// RetryableError is a transient failure, the request can be sent again.
type RetryableError struct {
	Cause error
}

func (r RetryableError) Error() string { return fmt.Sprintf("%v", r.Cause) }
func (r RetryableError) Unwrap() error { return r.Cause }

type ErrResourceAlreadyExists struct {
	Reason string
}

func (e ErrResourceAlreadyExists) Error() string {
	return fmt.Sprintf("resource already exists: %s", e.Reason)
}

// ErrQueryInvalid is a request rejected by the backend, sending it again
// fails the same way.
type ErrQueryInvalid struct {
	Cause error
}

func (e ErrQueryInvalid) Error() string { return e.Cause.Error() }
func (e ErrQueryInvalid) Unwrap() error { return e.Cause }

const (
	searchPhaseExecutionException  = "search_phase_execution_exception"
	resourceAlreadyExistsException = "resource_already_exists_exception"
	indexNotFoundException         = "index_not_found_exception"
	snapshotInProgressException    = "snapshot_in_progress_exception"

	unknownErrorType   = "<unknown error type>"
	unknownErrorReason = "<unknown error reason>"
)

var (
	ErrTooManyRequests            = errors.New("too many requests")
	ErrUnsupportedSearchFieldType = errors.New("unsupported search field type")
	ErrResourceNotFound           = errors.New("search resource not found")
)

var retryableStatuses = map[int]error{
	http.StatusRequestTimeout:     errors.New("request timeout"),
	http.StatusLocked:             errors.New("resource locked"),
	http.StatusTooEarly:           errors.New("too early"),
	http.StatusTooManyRequests:    ErrTooManyRequests,
	http.StatusBadGateway:         errors.New("bad gateway"),
	http.StatusServiceUnavailable: errors.New("service unavailable"),
	http.StatusGatewayTimeout:     errors.New("gateway timeout"),
}

// IsErrResponse returns the classified error of a failed response, nil
// otherwise. Not found responses always wrap ErrResourceNotFound.
func IsErrResponse(res Response) error {
	if !res.IsError() {
		return nil
	}
	err := ExtractResponseError(res.GetBody(), res.GetStatusCode())
	if res.GetStatusCode() == http.StatusNotFound && !errors.Is(err, ErrResourceNotFound) {
		return fmt.Errorf("%w: %w", ErrResourceNotFound, err)
	}
	return err
}

// ExtractResponseError decodes the error envelope returned by the backend and
// classifies it. An empty body is classified on the status code alone.
func ExtractResponseError(body io.ReadCloser, statusCode int) error {
	respErr, err := decodeResponseError(body)
	if err != nil {
		return err
	}

	if cause, ok := retryableStatuses[statusCode]; ok {
		return RetryableError{Cause: cause}
	}
	if statusCode == http.StatusNotFound || respErr.Type == indexNotFoundException {
		return fmt.Errorf("%w: [%d]: %s: %s", ErrResourceNotFound, statusCode, respErr.Type, respErr.Reason)
	}
	if statusCode != http.StatusBadRequest {
		return fmt.Errorf("[%d] %s: %s", statusCode, respErr.Type, respErr.Reason)
	}

	switch respErr.Type {
	case resourceAlreadyExistsException:
		return ErrResourceAlreadyExists{Reason: respErr.Reason}
	case snapshotInProgressException:
		return RetryableError{Cause: fmt.Errorf("[%d] %s: %s", statusCode, respErr.Type, respErr.Reason)}
	case searchPhaseExecutionException:
		// the top level reason is generic, the cause names the offending field
		return ErrQueryInvalid{Cause: errors.New(respErr.rootReason())}
	default:
		return ErrQueryInvalid{Cause: fmt.Errorf("%s: %s", respErr.Type, respErr.Reason)}
	}
}

func decodeResponseError(body io.ReadCloser) (*ResponseError, error) {
	respErr := &ResponseError{Type: unknownErrorType, Reason: unknownErrorReason}
	if body == nil {
		return respErr, nil
	}

	var envelope map[string]any
	if err := json.NewDecoder(body).Decode(&envelope); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding error response: %w", err)
	}
	if e, ok := envelope["error"]; ok {
		decoded := ResponseError{}
		if err := mapstructure.Decode(e, &decoded); err == nil {
			return &decoded, nil
		}
	}
	return respErr, nil
}

func (e *ResponseError) rootReason() string {
	switch {
	case e.CausedBy != nil:
		return e.CausedBy.Reason
	case len(e.RootCause) > 0:
		return e.RootCause[0].Reason
	default:
		return e.Reason
	}
}
