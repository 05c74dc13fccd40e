// Package common defines shared constants and sentinel errors used across
// the layers of the process manager. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")

	// Completion gating: a process cannot be completed while any direct
	// child is still incomplete.
	ErrorIncompleteChildren = errors.New("cannot complete process with incomplete children")

	// Tree traversal guards (cycle or depth cap hit).
	ErrorTreeDepth = errors.New("process tree too deep or cyclic")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrNoSubject    = errors.New("no subject claim")
)
