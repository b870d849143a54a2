package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/obs"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingReceipt, error)
	UpdateBooking(ctx context.Context, id int64, input UpdateBookingInput) (*domain.BookingReceipt, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	GetBooking(ctx context.Context, id int64) (*domain.BookingReceipt, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) (domain.BookingPage, error)
	DailySummary(ctx context.Context, from, to time.Time) ([]domain.DailyBookingSummary, error)
}

// Invoicer derives the invoice of a new booking inside the booking transaction.
type Invoicer interface {
	CreateInvoiceFor(ctx context.Context, repos repository.Repositories, booking domain.Booking, room domain.Room) (*domain.Invoice, error)
}

type NotificationSink interface {
	Notify(ctx context.Context, userID int64, subject, body string) error
}

type BookingService struct {
	store           repository.Store
	catalog         repository.RoomCatalog
	users           repository.UserDirectory
	invoices        Invoicer
	notifier        NotificationSink
	checker         ConflictChecker
	now             func() time.Time
	location        *time.Location
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

type CreateBookingInput struct {
	RoomID    int64                `json:"room_id"`
	UserID    int64                `json:"user_id"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	HasEvent  bool                 `json:"has_event"`
	Event     *domain.EventDetails `json:"event,omitempty"`
}

// UpdateBookingInput replaces the mutable fields of a booking. An empty Status keeps the current one.
type UpdateBookingInput struct {
	RoomID    int64                `json:"room_id"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Status    domain.BookingStatus `json:"status"`
	HasEvent  bool                 `json:"has_event"`
	Event     *domain.EventDetails `json:"event,omitempty"`
}

type BookingServiceOption func(*BookingService)

func WithNotifier(notifier NotificationSink) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = notifier
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLocation(loc *time.Location) BookingServiceOption {
	return func(s *BookingService) {
		s.location = loc
	}
}

func WithPageSizes(defaultSize, maxSize int) BookingServiceOption {
	return func(s *BookingService) {
		s.defaultPageSize = defaultSize
		s.maxPageSize = maxSize
	}
}

func WithLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func NewBookingService(
	store repository.Store,
	catalog repository.RoomCatalog,
	users repository.UserDirectory,
	invoices Invoicer,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		store:           store,
		catalog:         catalog,
		users:           users,
		invoices:        invoices,
		now:             time.Now,
		location:        time.UTC,
		defaultPageSize: 20,
		maxPageSize:     100,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateInterval(v *domain.ValidationError, start, end time.Time) {
	switch {
	case start.IsZero():
		v.Add("start_time", "is required")
	case end.IsZero():
		v.Add("end_time", "is required")
	case !end.After(start):
		v.Add("end_time", "must be after start_time")
	}
}

func validateEvent(v *domain.ValidationError, hasEvent bool, event *domain.EventDetails) {
	if hasEvent && event != nil && event.Name == "" {
		v.Add("event.name", "is required")
	}
}

// lookupRoom resolves roomID through the catalog, reporting a missing room as a validation problem.
func (s *BookingService) lookupRoom(ctx context.Context, roomID int64) (*domain.Room, error) {
	room, err := s.catalog.GetRoom(ctx, roomID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("room_id", fmt.Sprintf("room %d does not exist", roomID))
	}
	return room, err
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingReceipt, error) {
	logger := obs.Operation(ctx, s.logger, "BookingService", "CreateBooking", "room_id", input.RoomID, "user_id", input.UserID)

	v := &domain.ValidationError{}
	if input.RoomID <= 0 {
		v.Add("room_id", "is required")
	}
	if input.UserID <= 0 {
		v.Add("user_id", "is required")
	}
	validateInterval(v, input.StartTime, input.EndTime)
	validateEvent(v, input.HasEvent, input.Event)
	if input.HasEvent && input.Event == nil {
		v.Add("event", "details are required when has_event is set")
	}
	if err := v.OrNil(); err != nil {
		logger.InfoContext(ctx, "create booking rejected", "error_kind", domain.ErrorKind(err), "error", err)
		return nil, err
	}

	room, err := s.lookupRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	exists, err := s.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewValidationError("user_id", fmt.Sprintf("user %d does not exist", input.UserID))
	}

	interval := domain.Interval{Start: input.StartTime, End: input.EndTime}
	var receipt domain.BookingReceipt
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := s.checker.Ensure(ctx, repos.Bookings(), room.ID, interval, nil); err != nil {
			return err
		}

		booking := domain.Booking{
			RoomID:      room.ID,
			UserID:      input.UserID,
			BookingDate: s.now(),
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			Status:      domain.BookingStatusPending,
			HasEvent:    input.HasEvent,
		}
		if err := repos.Bookings().Create(ctx, &booking); err != nil {
			return err
		}

		inv, err := s.invoices.CreateInvoiceFor(ctx, repos, booking, *room)
		if err != nil {
			return err
		}

		receipt = domain.BookingReceipt{Booking: booking, Invoice: inv}
		if input.HasEvent {
			event, err := s.createEvent(ctx, repos, booking, *input.Event)
			if err != nil {
				return err
			}
			receipt.Event = event
		}
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "create booking failed", "error_kind", domain.ErrorKind(err), "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "booking created", "booking_id", receipt.Booking.ID, "invoice_id", receipt.Invoice.ID)
	s.notify(ctx, logger, input.UserID, "New Reservation Created", fmt.Sprintf(
		"Your reservation for room '%s' has been successfully created.\nStart time: %s\nEnd time: %s\n",
		room.RoomNumber, s.format(input.StartTime), s.format(input.EndTime)))
	return &receipt, nil
}

func (s *BookingService) createEvent(ctx context.Context, repos repository.Repositories, booking domain.Booking, details domain.EventDetails) (*domain.Event, error) {
	bookingID := booking.ID
	event := &domain.Event{
		BookingID:     &bookingID,
		Name:          details.Name,
		EventDate:     booking.StartTime,
		Description:   details.Description,
		CreatedBy:     booking.UserID,
		ParentEventID: details.ParentEventID,
	}
	if err := repos.Events().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, id int64, input UpdateBookingInput) (*domain.BookingReceipt, error) {
	logger := obs.Operation(ctx, s.logger, "BookingService", "UpdateBooking", "booking_id", id)

	v := &domain.ValidationError{}
	if input.RoomID <= 0 {
		v.Add("room_id", "is required")
	}
	validateInterval(v, input.StartTime, input.EndTime)
	validateEvent(v, input.HasEvent, input.Event)
	if input.Status != "" && !input.Status.Valid() {
		v.Add("status", fmt.Sprintf("unknown status %q", input.Status))
	}
	if err := v.OrNil(); err != nil {
		logger.InfoContext(ctx, "update booking rejected", "error_kind", domain.ErrorKind(err), "error", err)
		return nil, err
	}

	room, err := s.lookupRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	var (
		receipt   domain.BookingReceipt
		cancelled bool
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		updated := *current
		updated.RoomID = room.ID
		updated.StartTime = input.StartTime
		updated.EndTime = input.EndTime
		updated.HasEvent = input.HasEvent
		if input.Status != "" {
			updated.Status = input.Status
		}

		if updated.Status.Active() {
			if err := s.checker.Ensure(ctx, repos.Bookings(), room.ID, updated.Interval(), &updated.ID); err != nil {
				return err
			}
		}
		if err := repos.Bookings().Update(ctx, &updated); err != nil {
			return err
		}

		event, err := s.syncEvent(ctx, repos, updated, input.Event)
		if err != nil {
			return err
		}

		inv, err := repos.Invoices().GetByBooking(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		switch {
		case current.Status.Active() && !updated.Status.Active():
			cancelled = true
			if inv, err = cancelUnpaid(ctx, repos, inv); err != nil {
				return err
			}
		case !current.Status.Active() && updated.Status.Active():
			if inv, err = s.reopenInvoice(ctx, repos, updated, *room, inv); err != nil {
				return err
			}
		}

		receipt = domain.BookingReceipt{Booking: updated, Invoice: inv, Event: event}
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "update booking failed", "error_kind", domain.ErrorKind(err), "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "booking updated", "status", receipt.Booking.Status, "has_event", receipt.Booking.HasEvent)
	if cancelled {
		s.notifyCancelled(ctx, logger, receipt.Booking, room.RoomNumber)
	}
	return &receipt, nil
}

// syncEvent makes the stored event match booking.HasEvent: updated, inserted or removed.
func (s *BookingService) syncEvent(ctx context.Context, repos repository.Repositories, booking domain.Booking, details *domain.EventDetails) (*domain.Event, error) {
	existing, err := repos.Events().GetByBooking(ctx, booking.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	switch {
	case booking.HasEvent && existing != nil:
		existing.EventDate = booking.StartTime
		if details != nil {
			existing.Name = details.Name
			existing.Description = details.Description
			if details.ParentEventID != nil {
				if err := ensureNotDescendant(ctx, repos, existing.ID, *details.ParentEventID); err != nil {
					return nil, err
				}
				existing.ParentEventID = details.ParentEventID
			}
		}
		if err := repos.Events().Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update event: %w", err)
		}
		return existing, nil

	case booking.HasEvent:
		if details == nil {
			return nil, domain.NewValidationError("event", "details are required when has_event is set")
		}
		return s.createEvent(ctx, repos, booking, *details)

	case existing != nil:
		if err := repos.Events().Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("delete event: %w", err)
		}
	}
	return nil, nil
}

func ensureNotDescendant(ctx context.Context, repos repository.Repositories, eventID, parentID int64) error {
	tree, err := repos.Events().ListDescendants(ctx, eventID)
	if err != nil {
		return err
	}
	for _, e := range tree {
		if e.ID == parentID {
			return domain.NewValidationError("event.parent_event_id", "would create a cycle")
		}
	}
	return nil
}

func cancelUnpaid(ctx context.Context, repos repository.Repositories, inv *domain.Invoice) (*domain.Invoice, error) {
	if inv == nil || inv.Status != domain.InvoiceStatusUnpaid {
		return inv, nil
	}
	return repos.Invoices().UpdateStatus(ctx, inv.ID, domain.InvoiceStatusCancelled, nil)
}

// reopenInvoice puts the invoice of a reactivated booking back to Unpaid, or issues one if none is attached.
func (s *BookingService) reopenInvoice(ctx context.Context, repos repository.Repositories, booking domain.Booking, room domain.Room, inv *domain.Invoice) (*domain.Invoice, error) {
	switch {
	case inv == nil:
		return s.invoices.CreateInvoiceFor(ctx, repos, booking, room)
	case inv.Status == domain.InvoiceStatusCancelled:
		return repos.Invoices().UpdateStatus(ctx, inv.ID, domain.InvoiceStatusUnpaid, nil)
	}
	return inv, nil
}

// CancelBooking frees the booking's interval. Cancelling twice is a no-op.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	logger := obs.Operation(ctx, s.logger, "BookingService", "CancelBooking", "booking_id", id)

	var (
		booking *domain.Booking
		changed bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		booking = current
		if current.Status == domain.BookingStatusCancelled {
			return nil
		}

		current.Status = domain.BookingStatusCancelled
		if err := repos.Bookings().Update(ctx, current); err != nil {
			return err
		}
		inv, err := repos.Invoices().GetByBooking(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if _, err := cancelUnpaid(ctx, repos, inv); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "cancel booking failed", "error_kind", domain.ErrorKind(err), "error", err)
		return nil, err
	}

	if !changed {
		logger.InfoContext(ctx, "booking already cancelled")
		return booking, nil
	}
	logger.InfoContext(ctx, "booking cancelled")

	roomNumber := fmt.Sprintf("%d", booking.RoomID)
	if room, err := s.catalog.GetRoom(ctx, booking.RoomID); err == nil {
		roomNumber = room.RoomNumber
	}
	s.notifyCancelled(ctx, logger, *booking, roomNumber)
	return booking, nil
}

// DeleteBooking removes the booking and its event. The invoice is kept for audit:
// detached from the booking and cancelled if it was still unpaid.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	logger := obs.Operation(ctx, s.logger, "BookingService", "DeleteBooking", "booking_id", id)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Bookings().GetForUpdate(ctx, id); err != nil {
			return err
		}

		event, err := repos.Events().GetByBooking(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if event != nil {
			if err := repos.Events().Delete(ctx, event.ID); err != nil {
				return err
			}
		}

		inv, err := repos.Invoices().GetByBooking(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if _, err := cancelUnpaid(ctx, repos, inv); err != nil {
			return err
		}
		if err := repos.Invoices().DetachBooking(ctx, id); err != nil {
			return err
		}
		return repos.Bookings().Delete(ctx, id)
	})
	if err != nil {
		logger.WarnContext(ctx, "delete booking failed", "error_kind", domain.ErrorKind(err), "error", err)
		return err
	}
	logger.InfoContext(ctx, "booking deleted")
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.BookingReceipt, error) {
	booking, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt := &domain.BookingReceipt{Booking: *booking}

	inv, err := s.store.Invoices().GetByBooking(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	receipt.Invoice = inv

	if booking.HasEvent {
		event, err := s.store.Events().GetByBooking(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		receipt.Event = event
	}
	return receipt, nil
}

// ListBookings applies filter with normalised pagination. A zero filter.Now means "now".
func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) (domain.BookingPage, error) {
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return domain.BookingPage{}, domain.NewValidationError("end_date", "must be after start_date")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return domain.BookingPage{}, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", *filter.Status))
	}
	if filter.Offset < 0 {
		return domain.BookingPage{}, domain.NewValidationError("offset", "must not be negative")
	}
	if filter.Limit <= 0 {
		filter.Limit = s.defaultPageSize
	}
	if filter.Limit > s.maxPageSize {
		filter.Limit = s.maxPageSize
	}
	if filter.Now.IsZero() {
		filter.Now = s.now()
	}

	items, total, err := s.store.Bookings().List(ctx, filter)
	if err != nil {
		return domain.BookingPage{}, err
	}
	return domain.BookingPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// DailySummary groups active bookings starting in [from, to) by calendar day.
func (s *BookingService) DailySummary(ctx context.Context, from, to time.Time) ([]domain.DailyBookingSummary, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("end_date", "must be after start_date")
	}
	return s.store.Bookings().DailySummary(ctx, from, to, s.location)
}

func (s *BookingService) format(t time.Time) string {
	return t.In(s.location).Format("2006-01-02 15:04")
}

func (s *BookingService) notifyCancelled(ctx context.Context, logger *slog.Logger, booking domain.Booking, roomNumber string) {
	s.notify(ctx, logger, booking.UserID, "Reservation Cancelled", fmt.Sprintf(
		"Your reservation for room '%s' starting at %s has been cancelled.\n",
		roomNumber, s.format(booking.StartTime)))
}

// notify is fire-and-forget: failures are logged and never reach the caller.
func (s *BookingService) notify(ctx context.Context, logger *slog.Logger, userID int64, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, subject, body); err != nil {
		logger.WarnContext(ctx, "notification failed", "user_id", userID, "subject", subject, "error", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
