package repository

import (
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewPGStore(t *testing.T) {
	store := NewPGStore(&pgxpool.Pool{})
	assert.NotNil(t, store.Bookings())
	assert.NotNil(t, store.Invoices())
	assert.NotNil(t, store.Events())
}

func TestBookingWhere_DefaultExcludesPast(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	where, args := bookingWhere(domain.BookingFilter{Now: now})

	assert.Equal(t, " WHERE end_time > $1", where)
	assert.Equal(t, []any{now}, args)
}

func TestBookingWhere_AllFilters(t *testing.T) {
	user, room := int64(5), int64(101)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	status := domain.BookingStatusConfirmed
	hasEvent := true

	where, args := bookingWhere(domain.BookingFilter{
		UserID:      &user,
		RoomID:      &room,
		From:        &from,
		To:          &to,
		Status:      &status,
		HasEvent:    &hasEvent,
		IncludePast: true,
	})

	assert.Equal(t, " WHERE user_id = $1 AND room_id = $2 AND start_time >= $3 AND start_time < $4 AND status = $5 AND has_event = $6", where)
	assert.Len(t, args, 6)
}

func TestBookingWhere_Empty(t *testing.T) {
	where, args := bookingWhere(domain.BookingFilter{IncludePast: true})

	assert.Empty(t, where)
	assert.Empty(t, args)
}
