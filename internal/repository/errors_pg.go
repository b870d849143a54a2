package repository

import (
	"errors"
	"strings"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgUniqueViolation     = "23505"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgTooManyConnections  = "53300"
)

type writeKind int

const (
	writeInsert writeKind = iota
	writeDelete
)

// mapError translates driver errors into the domain taxonomy.
func mapError(op, entity string, id int64, kind writeKind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgExclusionViolation:
			return &domain.ConflictError{}
		case pgErr.Code == pgForeignKeyViolation && kind == writeDelete:
			return &domain.IntegrityViolation{Entity: entity, Detail: pgErr.Detail}
		case pgErr.Code == pgForeignKeyViolation:
			return domain.NewValidationError(constraintField(pgErr), "references a missing record")
		case pgErr.Code == pgCheckViolation:
			return domain.NewValidationError(constraintField(pgErr), "violates "+pgErr.ConstraintName)
		case pgErr.Code == pgUniqueViolation:
			return domain.NewValidationError(constraintField(pgErr), "already exists")
		case isTransientCode(pgErr.Code):
			return &domain.TransientStorageError{Op: op, Err: err}
		}
		return err
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return &domain.TransientStorageError{Op: op, Err: err}
	}
	return err
}

func isTransientCode(code string) bool {
	switch code {
	case pgSerializationFail, pgDeadlockDetected, pgTooManyConnections, "57P01", "57P02", "57P03":
		return true
	}
	// class 08: connection exception
	return strings.HasPrefix(code, "08")
}

// constraintField turns "bookings_room_id_fkey" into "room_id".
func constraintField(pgErr *pgconn.PgError) string {
	name := pgErr.ConstraintName
	if name == "" {
		return pgErr.TableName
	}
	name = strings.TrimPrefix(name, pgErr.TableName+"_")
	for _, suffix := range []string{"_fkey", "_key", "_check", "_excl"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}
