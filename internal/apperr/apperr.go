// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr defines the error taxonomy shared by the gateway, the
// normalizer and the mock engine, plus a bounded journal of recent errors.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
)

// Kind classifies an error for user surfacing and recovery.
type Kind string

const (
	KindNetwork    Kind = "NETWORK"
	KindPermission Kind = "PERMISSION"
	KindValidation Kind = "VALIDATION"
	KindBusiness   Kind = "BUSINESS"
	KindRuntime    Kind = "RUNTIME"
	KindUnknown    Kind = "UNKNOWN"
)

// Codes used for failures that have no HTTP or business code.
const (
	CodeTimeout      = "TIMEOUT"
	CodeNetworkError = "NETWORK_ERROR"
)

// Error is a classified failure. Code holds the numeric or string code in
// string form ("401", "TIMEOUT"); it is empty when the failure had none.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

// New returns an *Error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns Code as an int when it is numeric.
func (e *Error) Status() (int, bool) {
	n, err := strconv.Atoi(e.Code)
	if err != nil {
		return 0, false
	}
	return n, true
}

// WithDetails attaches an opaque payload for diagnostics.
func (e *Error) WithDetails(d any) *Error {
	e.Details = d
	return e
}

// Wrap records cause as the underlying error.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}

// KindForStatus maps an HTTP status code to a Kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusInternalServerError:
		return KindBusiness
	case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindNetwork
	default:
		return KindUnknown
	}
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "invalid request parameters",
	http.StatusUnauthorized:        "session expired, please log in again",
	http.StatusForbidden:           "permission denied",
	http.StatusNotFound:            "requested resource not found",
	http.StatusMethodNotAllowed:    "request method not allowed",
	http.StatusRequestTimeout:      "request timed out",
	http.StatusInternalServerError: "internal server error",
	http.StatusBadGateway:          "bad gateway",
	http.StatusServiceUnavailable:  "service unavailable",
	http.StatusGatewayTimeout:      "gateway timeout",
}

// FromStatus builds an error for an HTTP failure. An empty message falls
// back to a status-specific default.
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = statusMessages[status]
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return New(KindForStatus(status), strconv.Itoa(status), message)
}

// Business builds the error for an envelope whose business code is not a
// success code.
func Business(code, message string) *Error {
	if message == "" {
		message = "request failed"
	}
	return New(KindBusiness, code, message)
}

// FromTransport classifies a failure that produced no response at all.
func FromTransport(err error) *Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return New(KindNetwork, CodeTimeout, "request timed out").Wrap(err)
	}
	return New(KindNetwork, CodeNetworkError, "network unavailable").Wrap(err)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the Kind of err. Errors outside the taxonomy are UNKNOWN.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
