package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("end_time", "must be after start_time"), "validation"},
		{"wrapped conflict", fmt.Errorf("create: %w", &ConflictError{RoomID: 1}), "conflict"},
		{"not found", &NotFoundError{Entity: "booking", ID: 7}, "not_found"},
		{"integrity", &IntegrityViolation{Entity: "event"}, "integrity"},
		{"transient", &TransientStorageError{Op: "commit", Err: errors.New("deadlock")}, "transient"},
		{"other", errors.New("boom"), "unexpected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorKind(tc.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	var v ValidationError
	assert.False(t, v.HasErrors())
	assert.Nil(t, v.OrNil())

	v.Add("start_time", "required")
	v.Add("end_time", "must be after start_time")

	assert.True(t, v.HasErrors())
	assert.True(t, errors.Is(v.OrNil(), ErrValidation))
	assert.Equal(t, "validation failed: end_time: must be after start_time; start_time: required", v.Error())
}

func TestConflictError_Message(t *testing.T) {
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	err := &ConflictError{RoomID: 101, Start: start, End: start.Add(2 * time.Hour)}

	assert.Contains(t, err.Error(), "room unavailable for requested interval")
	assert.Contains(t, err.Error(), "room 101")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestTransientStorageError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TransientStorageError{Op: "begin", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransient)
}
