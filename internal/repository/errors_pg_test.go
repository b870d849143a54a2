package repository

import (
	"errors"
	"testing"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError_NoRows(t *testing.T) {
	err := mapError("get booking", "booking", 42, writeInsert, pgx.ErrNoRows)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "booking", nf.Entity)
	assert.Equal(t, int64(42), nf.ID)
}

func TestMapError_Exclusion(t *testing.T) {
	err := mapError("insert booking", "booking", 0, writeInsert, &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMapError_ForeignKey(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", TableName: "bookings", ConstraintName: "bookings_room_id_fkey"}

	insertErr := mapError("insert booking", "booking", 0, writeInsert, pgErr)
	var vErr *domain.ValidationError
	require.ErrorAs(t, insertErr, &vErr)
	assert.Contains(t, vErr.FieldErrors, "room_id")

	deleteErr := mapError("delete event", "event", 3, writeDelete, pgErr)
	assert.ErrorIs(t, deleteErr, domain.ErrIntegrity)
}

func TestMapError_Transient(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "08006", "57P01"} {
		err := mapError("commit", "booking", 0, writeInsert, &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrTransient, code)
	}
}

func TestMapError_PassThrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, mapError("op", "booking", 0, writeInsert, plain))
	assert.Nil(t, mapError("op", "booking", 0, writeInsert, nil))
}
