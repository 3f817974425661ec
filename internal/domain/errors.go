package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrRemoteStore       = errors.New("remote_store_unavailable")
	ErrMissingCredential = errors.New("missing_credential")
	ErrMalformedRow      = errors.New("malformed_row")
	ErrNotEnoughUsers    = errors.New("not_enough_users")
	ErrNotEnoughUnits    = errors.New("not_enough_units")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ReferenceKind names the reference list an UnknownReferenceError points into.
type ReferenceKind string

const (
	ReferenceUser ReferenceKind = "user"
	ReferenceUnit ReferenceKind = "unit"
)

// UnknownReferenceError reports a ledger row or request naming a user or
// unit that is absent from the current reference snapshot.
type UnknownReferenceError struct {
	Kind ReferenceKind
	Name string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("missing %s: %s", e.Kind, e.Name)
}
