package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/obs"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/google/uuid"
)

type InvoiceUseCase interface {
	Get(ctx context.Context, id int64) (*domain.InvoiceView, error)
	MarkPaid(ctx context.Context, id int64) (bool, error)
	CancelInvoices(ctx context.Context, ids []int64) []domain.BulkResult
	DeleteInvoices(ctx context.Context, ids []int64) []domain.BulkResult
	Unpaid(ctx context.Context) ([]domain.InvoiceView, error)
	Paid(ctx context.Context) ([]domain.InvoiceView, error)
	ForUser(ctx context.Context, userID int64) ([]domain.InvoiceView, error)
	RemindOverdue(ctx context.Context) (int, error)
}

type NotificationSink interface {
	Notify(ctx context.Context, userID int64, subject, body string) error
}

type InvoiceService struct {
	store    repository.Store
	catalog  repository.RoomCatalog
	users    repository.UserDirectory
	notifier NotificationSink
	amount   AmountPolicy
	grace    time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type InvoiceServiceOption func(*InvoiceService)

func WithAmountPolicy(policy AmountPolicy) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.amount = policy
	}
}

func WithNotifier(notifier NotificationSink) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.notifier = notifier
	}
}

func WithClock(now func() time.Time) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.logger = logger
	}
}

func NewInvoiceService(
	store repository.Store,
	catalog repository.RoomCatalog,
	users repository.UserDirectory,
	grace time.Duration,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		store:   store,
		catalog: catalog,
		users:   users,
		amount:  PerBillingUnit(time.Hour),
		grace:   grace,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newInvoiceNumber(issued time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("INV-%s-%s", issued.UTC().Format("20060102"), id[:8])
}

// CreateInvoiceFor derives the invoice of a freshly inserted booking inside the caller's transaction.
func (s *InvoiceService) CreateInvoiceFor(ctx context.Context, repos repository.Repositories, booking domain.Booking, room domain.Room) (*domain.Invoice, error) {
	issued := booking.BookingDate
	if issued.IsZero() {
		issued = s.now()
	}
	bookingID := booking.ID
	inv := &domain.Invoice{
		InvoiceNumber: newInvoiceNumber(issued),
		BookingID:     &bookingID,
		UserID:        booking.UserID,
		RoomID:        booking.RoomID,
		AmountCents:   s.amount(room, booking.Interval()),
		Status:        domain.InvoiceStatusUnpaid,
		CreatedAt:     issued,
		DueDate:       issued.Add(s.grace),
	}
	if err := repos.Invoices().Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return inv, nil
}

// MarkPaid returns false when the invoice does not exist. Paying a paid invoice is a no-op success.
func (s *InvoiceService) MarkPaid(ctx context.Context, id int64) (bool, error) {
	logger := obs.Operation(ctx, s.logger, "InvoiceService", "MarkPaid", "invoice_id", id)

	var (
		paid    *domain.Invoice
		changed bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Invoices().Get(ctx, id)
		if err != nil {
			return err
		}
		switch current.Status {
		case domain.InvoiceStatusPaid:
			paid = current
			return nil
		case domain.InvoiceStatusCancelled:
			return domain.NewValidationError("status", "invoice is cancelled")
		}

		now := s.now()
		paid, err = repos.Invoices().UpdateStatus(ctx, id, domain.InvoiceStatusPaid, &now)
		changed = err == nil
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		logger.InfoContext(ctx, "invoice not found")
		return false, nil
	}
	if err != nil {
		logger.WarnContext(ctx, "mark paid failed", "error_kind", domain.ErrorKind(err), "error", err)
		return false, err
	}

	if changed {
		logger.InfoContext(ctx, "invoice paid", "invoice_number", paid.InvoiceNumber)
		s.notify(ctx, logger, paid.UserID, "Payment Confirmed", fmt.Sprintf(
			"Payment for invoice #%s has been confirmed.\nAmount paid: %s\n",
			paid.InvoiceNumber, domain.FormatCents(paid.AmountCents)))
	}
	return true, nil
}

// CancelInvoices cancels every unpaid invoice in ids, each in its own transaction.
func (s *InvoiceService) CancelInvoices(ctx context.Context, ids []int64) []domain.BulkResult {
	logger := obs.Operation(ctx, s.logger, "InvoiceService", "CancelInvoices", "count", len(ids))

	results := make([]domain.BulkResult, 0, len(ids))
	for _, id := range ids {
		outcome := domain.OutcomeCancelled
		err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			current, err := repos.Invoices().Get(ctx, id)
			if err != nil {
				return err
			}
			switch current.Status {
			case domain.InvoiceStatusCancelled:
				outcome = domain.OutcomeAlreadyCancelled
				return nil
			case domain.InvoiceStatusPaid:
				outcome = domain.OutcomeSkippedPaid
				return nil
			}
			_, err = repos.Invoices().UpdateStatus(ctx, id, domain.InvoiceStatusCancelled, nil)
			return err
		})
		results = append(results, bulkResult(id, outcome, err))
	}
	logger.InfoContext(ctx, "bulk cancel finished", "results", len(results))
	return results
}

// DeleteInvoices removes invoices in ids. Invoices still attached to an active booking are refused.
func (s *InvoiceService) DeleteInvoices(ctx context.Context, ids []int64) []domain.BulkResult {
	logger := obs.Operation(ctx, s.logger, "InvoiceService", "DeleteInvoices", "count", len(ids))

	results := make([]domain.BulkResult, 0, len(ids))
	for _, id := range ids {
		err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			current, err := repos.Invoices().Get(ctx, id)
			if err != nil {
				return err
			}
			if current.BookingID != nil {
				b, err := repos.Bookings().Get(ctx, *current.BookingID)
				if err != nil && !errors.Is(err, domain.ErrNotFound) {
					return err
				}
				if b != nil && b.Status.Active() {
					return &domain.IntegrityViolation{Entity: "invoice", Detail: fmt.Sprintf("booking %d is still active", b.ID)}
				}
			}
			return repos.Invoices().Delete(ctx, id)
		})
		results = append(results, bulkResult(id, domain.OutcomeDeleted, err))
	}
	logger.InfoContext(ctx, "bulk delete finished", "results", len(results))
	return results
}

func bulkResult(id int64, success domain.BulkOutcome, err error) domain.BulkResult {
	switch {
	case err == nil:
		return domain.BulkResult{ID: id, Outcome: success}
	case errors.Is(err, domain.ErrNotFound):
		return domain.BulkResult{ID: id, Outcome: domain.OutcomeNotFound}
	}
	return domain.BulkResult{ID: id, Outcome: domain.OutcomeFailed, Error: err.Error()}
}

func (s *InvoiceService) Get(ctx context.Context, id int64) (*domain.InvoiceView, error) {
	inv, err := s.store.Invoices().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []domain.Invoice{*inv})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *InvoiceService) Unpaid(ctx context.Context) ([]domain.InvoiceView, error) {
	invoices, err := s.store.Invoices().ListByStatus(ctx, domain.InvoiceStatusUnpaid)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, invoices)
}

func (s *InvoiceService) Paid(ctx context.Context) ([]domain.InvoiceView, error) {
	invoices, err := s.store.Invoices().ListByStatus(ctx, domain.InvoiceStatusPaid)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, invoices)
}

func (s *InvoiceService) ForUser(ctx context.Context, userID int64) ([]domain.InvoiceView, error) {
	invoices, err := s.store.Invoices().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, invoices)
}

// RemindOverdue notifies owners of unpaid invoices past their due date and returns how many were found.
func (s *InvoiceService) RemindOverdue(ctx context.Context) (int, error) {
	logger := obs.Operation(ctx, s.logger, "InvoiceService", "RemindOverdue")

	overdue, err := s.store.Invoices().ListOverdue(ctx, s.now())
	if err != nil {
		logger.WarnContext(ctx, "list overdue failed", "error", err)
		return 0, err
	}
	for _, inv := range overdue {
		s.notify(ctx, logger, inv.UserID, "Invoice Overdue", fmt.Sprintf(
			"Invoice #%s for %s was due on %s and is still unpaid.\n",
			inv.InvoiceNumber, domain.FormatCents(inv.AmountCents), inv.DueDate.Format("2006-01-02")))
	}
	if len(overdue) > 0 {
		logger.InfoContext(ctx, "overdue reminders sent", "count", len(overdue))
	}
	return len(overdue), nil
}

// views joins display fields owned by the catalog and user directory. Missing
// users or rooms leave the fields empty instead of failing the listing.
func (s *InvoiceService) views(ctx context.Context, invoices []domain.Invoice) ([]domain.InvoiceView, error) {
	rooms := make(map[int64]*domain.Room)
	users := make(map[int64]*domain.User)

	out := make([]domain.InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		view := domain.InvoiceView{Invoice: inv}

		room, ok := rooms[inv.RoomID]
		if !ok {
			r, err := s.catalog.GetRoom(ctx, inv.RoomID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			room, rooms[inv.RoomID] = r, r
		}
		if room != nil {
			view.RoomNumber = room.RoomNumber
			view.BuildingName = room.BuildingName
		}

		user, ok := users[inv.UserID]
		if !ok {
			u, err := s.users.Get(ctx, inv.UserID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			user, users[inv.UserID] = u, u
		}
		if user != nil {
			view.Username = user.Username
		}

		if inv.BookingID != nil {
			b, err := s.store.Bookings().Get(ctx, *inv.BookingID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			if b != nil {
				view.StartTime = &b.StartTime
				view.EndTime = &b.EndTime
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *InvoiceService) notify(ctx context.Context, logger *slog.Logger, userID int64, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, subject, body); err != nil {
		logger.WarnContext(ctx, "notification failed", "user_id", userID, "subject", subject, "error", err)
	}
}

var _ InvoiceUseCase = (*InvoiceService)(nil)
