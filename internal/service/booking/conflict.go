package booking

import (
	"context"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
)

// ConflictChecker answers whether an interval collides with an active booking of the same room.
// It is a read; the storage exclusion constraint remains the final arbiter under concurrency.
type ConflictChecker struct{}

// HasConflict expects a valid interval. excludeID skips the booking being moved.
func (ConflictChecker) HasConflict(ctx context.Context, bookings repository.BookingRepository, roomID int64, interval domain.Interval, excludeID *int64) (bool, error) {
	return bookings.HasConflict(ctx, roomID, interval, excludeID)
}

// Ensure fails with a ConflictError when HasConflict reports a collision.
func (c ConflictChecker) Ensure(ctx context.Context, bookings repository.BookingRepository, roomID int64, interval domain.Interval, excludeID *int64) error {
	conflict, err := c.HasConflict(ctx, bookings, roomID, interval, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return &domain.ConflictError{RoomID: roomID, Start: interval.Start, End: interval.End}
	}
	return nil
}
