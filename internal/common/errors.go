// Package common defines shared constants, sentinel errors and small helpers
// used across the kvgate server and client. Callers should use errors.Is to
// match the error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Request validation errors.
	ErrorInvalidParameter = errors.New("invalid parameter")
	ErrorMalformedRequest = errors.New("malformed request")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
