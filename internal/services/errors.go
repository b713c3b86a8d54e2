package services

import "errors"

// Sentinel errors returned by services. Handlers map these onto HTTP
// status codes with errors.Is.
var (
	// ErrValidation indicates malformed or incomplete input
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the target entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is not allowed to act on the target
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a state transition out of a terminal state
	ErrConflict = errors.New("conflict with current state")

	// ErrInvalidSignature indicates payment signature verification failed
	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrUpstream indicates the payment gateway failed or misbehaved
	ErrUpstream = errors.New("payment gateway error")
)
