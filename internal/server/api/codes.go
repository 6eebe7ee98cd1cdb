// Package api holds the wire-level vocabulary of the gateway: response
// codes, the request and response envelopes and the method allow-list.
// Both transports and the service layer speak it.
package api

import (
	"errors"
	"fmt"
)

// Code is the flat response code returned in every response envelope.
// A non-active application's status value is returned as the code itself,
// so statuses share this space with the constants below.
type Code int

const (
	CodeOK               Code = 1
	CodeUnknownAction    Code = 2
	CodeUnknownAPIKey    Code = 6
	CodeMalformedRequest Code = 7
	CodeInvalidMethod    Code = 8
	CodeFallthrough      Code = 9
	CodeInvalidToken     Code = 10
	CodeTokenExpired     Code = 11
	// CodeNotFound also means "authentication required".
	CodeNotFound         Code = 12
	CodeStorageFailure   Code = 20
	CodeInvalidParameter Code = 21
	CodeAPIDisabled      Code = 100
)

// Error is a coded failure. Fault marks internal failures, as opposed to
// failures caused by the caller's request.
type Error struct {
	Code  Code
	Fault bool
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("code %d", e.Code)
	}
	return fmt.Sprintf("code %d: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Reject builds a user-caused failure.
func Reject(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// Fault builds an internal failure.
func Fault(code Code, err error) *Error {
	return &Error{Code: code, Fault: true, Err: err}
}

// CodeOf maps err to a response code. Errors that are not *Error are
// storage failures. A nil error is CodeOK.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStorageFailure
}

// IsFault reports whether err is an internal failure. Untyped errors are.
func IsFault(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Fault
	}
	return true
}

// Outcome is the coarse classification of a response, used for the HTTP
// status and the gRPC outcome trailer.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeFault    Outcome = "fault"
)
