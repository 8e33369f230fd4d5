package domain

import "errors"

// Sentinel errors; handlers map them to HTTP statuses with errors.Is
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// NotFoundError names the missing resource and matches ErrNotFound
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError carries a client-facing message and matches ErrValidation
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError is a write that lost against a concurrent change, or an
// action the contract's current status does not allow. It matches ErrConflict.
type ConflictError struct {
	Message      string
	ResourceType string // contract, client
	ResourceID   string
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
