// Package apperrors defines the user-visible error conditions shared by
// the storage layer, the core services and the HTTP handlers. All of
// them are recoverable and map to distinct HTTP responses; none is
// fatal to the process.
package apperrors

import "errors"

var (
	// ErrNotFound — referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — operation not permitted for the current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrDuplicateVote — a vote already exists for this (user, complaint).
	ErrDuplicateVote = errors.New("duplicate vote")
	// ErrForbidden — caller lacks administrator privileges.
	ErrForbidden = errors.New("forbidden")
	// ErrEmptyStack — no compensating action is available to undo.
	ErrEmptyStack = errors.New("empty undo stack")
)
