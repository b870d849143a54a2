package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int64) error
	HasConflict(ctx context.Context, roomID int64, interval domain.Interval, excludeID *int64) (bool, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error)
	// ListActiveInRange returns non-cancelled bookings intersecting interval, optionally for one room.
	ListActiveInRange(ctx context.Context, roomID *int64, interval domain.Interval) ([]domain.Booking, error)
	DailySummary(ctx context.Context, from, to time.Time, loc *time.Location) ([]domain.DailyBookingSummary, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	Get(ctx context.Context, id int64) (*domain.Invoice, error)
	GetByBooking(ctx context.Context, bookingID int64) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time) (*domain.Invoice, error)
	DetachBooking(ctx context.Context, bookingID int64) error
	Delete(ctx context.Context, id int64) error
	ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Invoice, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Invoice, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Get(ctx context.Context, id int64) (*domain.Event, error)
	GetByBooking(ctx context.Context, bookingID int64) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id int64) error
	// ListDescendants returns the root event followed by every descendant, parents before children.
	ListDescendants(ctx context.Context, rootID int64) ([]domain.Event, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]domain.Event, error)
}

type Repositories interface {
	Bookings() BookingRepository
	Invoices() InvoiceRepository
	Events() EventRepository
}

// TxFunc runs inside one transaction; returning an error rolls everything back.
type TxFunc func(ctx context.Context, repos Repositories) error

type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn TxFunc) error
}

type RoomCatalog interface {
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetEquipment(ctx context.Context, ids []int64) ([]domain.Equipment, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
}
