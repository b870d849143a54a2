package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("room unavailable for requested interval")
	ErrNotFound   = errors.New("not found")
	ErrTransient  = errors.New("transient storage failure")
	ErrIntegrity  = errors.New("integrity violation")
)

// ValidationError captures field level problems with a request.
type ValidationError struct {
	FieldErrors map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return ErrValidation.Error()
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for f := range v.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v.FieldErrors[f])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// OrNil returns nil when nothing was recorded, so callers can return it directly.
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

type ConflictError struct {
	RoomID int64
	Start  time.Time
	End    time.Time
}

func (e *ConflictError) Error() string {
	if e.RoomID == 0 {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("%s: room %d [%s, %s)", ErrConflict, e.RoomID,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransient, e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error {
	return e.Err
}

func (e *TransientStorageError) Is(target error) bool {
	return target == ErrTransient
}

type IntegrityViolation struct {
	Entity string
	Detail string
}

func (e *IntegrityViolation) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s is still referenced", ErrIntegrity, e.Entity)
	}
	return fmt.Sprintf("%s: %s: %s", ErrIntegrity, e.Entity, e.Detail)
}

func (e *IntegrityViolation) Is(target error) bool {
	return target == ErrIntegrity
}

// ErrorKind maps errors to a stable label for logs and responses.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrTransient):
		return "transient"
	}
	return "unexpected"
}
