package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type state struct {
	lastBookingID int64
	lastInvoiceID int64
	lastEventID   int64
	bookings      map[int64]domain.Booking
	invoices      map[int64]domain.Invoice
	events        map[int64]domain.Event
}

func newState() *state {
	return &state{
		bookings: make(map[int64]domain.Booking),
		invoices: make(map[int64]domain.Invoice),
		events:   make(map[int64]domain.Event),
	}
}

func (s *state) clone() *state {
	c := *s
	c.bookings = make(map[int64]domain.Booking, len(s.bookings))
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	c.invoices = make(map[int64]domain.Invoice, len(s.invoices))
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	c.events = make(map[int64]domain.Event, len(s.events))
	for k, v := range s.events {
		c.events[k] = v
	}
	return &c
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// unit binds repositories to one state; lock is a no-op inside a transaction
// because the store mutex is already held there.
type unit struct {
	st   *state
	lock sync.Locker
	now  func() time.Time
}

func (u *unit) Bookings() repository.BookingRepository { return &bookingRepo{u} }
func (u *unit) Invoices() repository.InvoiceRepository { return &invoiceRepo{u} }
func (u *unit) Events() repository.EventRepository     { return &eventRepo{u} }

// Store keeps bookings, invoices and events in process memory. Transactions are
// serialized and work on a copy that replaces the live state only on success.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{st: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) live() *unit {
	return &unit{st: s.st, lock: &s.mu, now: s.now}
}

func (s *Store) Bookings() repository.BookingRepository { return s.live().Bookings() }
func (s *Store) Invoices() repository.InvoiceRepository { return s.live().Invoices() }
func (s *Store) Events() repository.EventRepository     { return s.live().Events() }

func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &unit{st: work, lock: noLock{}, now: s.now}); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

type bookingRepo struct{ *unit }

func (r *bookingRepo) conflicts(b domain.Booking) bool {
	if !b.Status.Active() {
		return false
	}
	for id, other := range r.st.bookings {
		if id == b.ID || other.RoomID != b.RoomID || !other.Status.Active() {
			continue
		}
		if other.Interval().Overlaps(b.Interval()) {
			return true
		}
	}
	return false
}

func (r *bookingRepo) checkRow(b domain.Booking) error {
	if !b.Interval().Valid() {
		return domain.NewValidationError("interval", "violates bookings_interval_check")
	}
	if r.conflicts(b) {
		return &domain.ConflictError{RoomID: b.RoomID, Start: b.StartTime, End: b.EndTime}
	}
	return nil
}

func (r *bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.checkRow(*b); err != nil {
		return err
	}
	r.st.lastBookingID++
	now := r.now()
	b.ID = r.st.lastBookingID
	b.CreatedAt, b.UpdatedAt = now, now
	if b.BookingDate.IsZero() {
		b.BookingDate = now
	}
	r.st.bookings[b.ID] = *b
	return nil
}

func (r *bookingRepo) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	b, ok := r.st.bookings[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "booking", ID: id}
	}
	return &b, nil
}

func (r *bookingRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.Get(ctx, id)
}

func (r *bookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, ok := r.st.bookings[b.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "booking", ID: b.ID}
	}
	if err := r.checkRow(*b); err != nil {
		return err
	}
	current.RoomID = b.RoomID
	current.StartTime = b.StartTime
	current.EndTime = b.EndTime
	current.Status = b.Status
	current.HasEvent = b.HasEvent
	current.UpdatedAt = r.now()
	r.st.bookings[b.ID] = current
	b.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *bookingRepo) Delete(ctx context.Context, id int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.st.bookings[id]; !ok {
		return &domain.NotFoundError{Entity: "booking", ID: id}
	}
	for _, e := range r.st.events {
		if e.BookingID != nil && *e.BookingID == id {
			return &domain.IntegrityViolation{Entity: "booking", Detail: "referenced by an event"}
		}
	}
	for invID, inv := range r.st.invoices {
		if inv.BookingID != nil && *inv.BookingID == id {
			inv.BookingID = nil
			r.st.invoices[invID] = inv
		}
	}
	delete(r.st.bookings, id)
	return nil
}

func (r *bookingRepo) HasConflict(ctx context.Context, roomID int64, interval domain.Interval, excludeID *int64) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for id, b := range r.st.bookings {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if b.RoomID == roomID && b.Status.Active() && b.Interval().Overlaps(interval) {
			return true, nil
		}
	}
	return false, nil
}

func sortBookings(bookings []domain.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].StartTime.Equal(bookings[j].StartTime) {
			return bookings[i].StartTime.Before(bookings[j].StartTime)
		}
		return bookings[i].ID < bookings[j].ID
	})
}

func (r *bookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	matched := make([]domain.Booking, 0)
	for _, b := range r.st.bookings {
		if f.Matches(b) {
			matched = append(matched, b)
		}
	}
	sortBookings(matched)

	total := len(matched)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *bookingRepo) ListActiveInRange(ctx context.Context, roomID *int64, interval domain.Interval) ([]domain.Booking, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]domain.Booking, 0)
	for _, b := range r.st.bookings {
		if !b.Status.Active() || !b.Interval().Overlaps(interval) {
			continue
		}
		if roomID != nil && b.RoomID != *roomID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomID != out[j].RoomID {
			return out[i].RoomID < out[j].RoomID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (r *bookingRepo) DailySummary(ctx context.Context, from, to time.Time, loc *time.Location) ([]domain.DailyBookingSummary, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	amounts := make(map[int64]int64)
	for _, inv := range r.st.invoices {
		if inv.BookingID != nil && inv.Status != domain.InvoiceStatusCancelled {
			amounts[*inv.BookingID] += inv.AmountCents
		}
	}

	byDay := make(map[time.Time]*domain.DailyBookingSummary)
	for _, b := range r.st.bookings {
		if !b.Status.Active() || b.StartTime.Before(from) || !b.StartTime.Before(to) {
			continue
		}
		day := domain.Day(b.StartTime, loc).Start
		s, ok := byDay[day]
		if !ok {
			s = &domain.DailyBookingSummary{Day: day}
			byDay[day] = s
		}
		s.BookingCount++
		s.TotalCents += amounts[b.ID]
	}

	out := make([]domain.DailyBookingSummary, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

type invoiceRepo struct{ *unit }

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, other := range r.st.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return domain.NewValidationError("invoice_number", "already exists")
		}
		if inv.BookingID != nil && other.BookingID != nil && *other.BookingID == *inv.BookingID {
			return domain.NewValidationError("booking_id", "already exists")
		}
	}
	if inv.BookingID != nil {
		if _, ok := r.st.bookings[*inv.BookingID]; !ok {
			return domain.NewValidationError("booking_id", "references a missing record")
		}
	}
	r.st.lastInvoiceID++
	inv.ID = r.st.lastInvoiceID
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = r.now()
	}
	r.st.invoices[inv.ID] = *inv
	return nil
}

func (r *invoiceRepo) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	inv, ok := r.st.invoices[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "invoice", ID: id}
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByBooking(ctx context.Context, bookingID int64) (*domain.Invoice, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, inv := range r.st.invoices {
		if inv.BookingID != nil && *inv.BookingID == bookingID {
			return &inv, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "invoice", ID: bookingID}
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time) (*domain.Invoice, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	inv, ok := r.st.invoices[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "invoice", ID: id}
	}
	inv.Status = status
	inv.PaidAt = paidAt
	r.st.invoices[id] = inv
	return &inv, nil
}

func (r *invoiceRepo) DetachBooking(ctx context.Context, bookingID int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for id, inv := range r.st.invoices {
		if inv.BookingID != nil && *inv.BookingID == bookingID {
			inv.BookingID = nil
			r.st.invoices[id] = inv
		}
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.st.invoices[id]; !ok {
		return &domain.NotFoundError{Entity: "invoice", ID: id}
	}
	delete(r.st.invoices, id)
	return nil
}

func (r *invoiceRepo) filter(keep func(domain.Invoice) bool) []domain.Invoice {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]domain.Invoice, 0)
	for _, inv := range r.st.invoices {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *invoiceRepo) ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	return r.filter(func(inv domain.Invoice) bool { return inv.Status == status }), nil
}

func (r *invoiceRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Invoice, error) {
	return r.filter(func(inv domain.Invoice) bool { return inv.UserID == userID }), nil
}

func (r *invoiceRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Invoice, error) {
	return r.filter(func(inv domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusUnpaid && inv.DueDate.Before(now)
	}), nil
}

type eventRepo struct{ *unit }

func (r *eventRepo) checkRefs(e domain.Event) error {
	if e.BookingID != nil {
		if _, ok := r.st.bookings[*e.BookingID]; !ok {
			return domain.NewValidationError("booking_id", "references a missing record")
		}
		for id, other := range r.st.events {
			if id != e.ID && other.BookingID != nil && *other.BookingID == *e.BookingID {
				return domain.NewValidationError("booking_id", "already exists")
			}
		}
	}
	if e.ParentEventID != nil {
		if _, ok := r.st.events[*e.ParentEventID]; !ok || *e.ParentEventID == e.ID {
			return domain.NewValidationError("parent_event_id", "references a missing record")
		}
	}
	return nil
}

func (r *eventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.checkRefs(*e); err != nil {
		return err
	}
	r.st.lastEventID++
	e.ID = r.st.lastEventID
	e.CreatedAt = r.now()
	r.st.events[e.ID] = *e
	return nil
}

func (r *eventRepo) Get(ctx context.Context, id int64) (*domain.Event, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, ok := r.st.events[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "event", ID: id}
	}
	return &e, nil
}

func (r *eventRepo) GetByBooking(ctx context.Context, bookingID int64) (*domain.Event, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, e := range r.st.events {
		if e.BookingID != nil && *e.BookingID == bookingID {
			return &e, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "event", ID: bookingID}
}

func (r *eventRepo) Update(ctx context.Context, e *domain.Event) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, ok := r.st.events[e.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "event", ID: e.ID}
	}
	if err := r.checkRefs(*e); err != nil {
		return err
	}
	current.Name = e.Name
	current.EventDate = e.EventDate
	current.Description = e.Description
	current.ParentEventID = e.ParentEventID
	r.st.events[e.ID] = current
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.st.events[id]; !ok {
		return &domain.NotFoundError{Entity: "event", ID: id}
	}
	for _, e := range r.st.events {
		if e.ParentEventID != nil && *e.ParentEventID == id {
			return &domain.IntegrityViolation{Entity: "event", Detail: "has child events"}
		}
	}
	delete(r.st.events, id)
	return nil
}

func (r *eventRepo) ListDescendants(ctx context.Context, rootID int64) ([]domain.Event, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	root, ok := r.st.events[rootID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "event", ID: rootID}
	}

	children := make(map[int64][]domain.Event)
	for _, e := range r.st.events {
		if e.ParentEventID != nil {
			children[*e.ParentEventID] = append(children[*e.ParentEventID], e)
		}
	}

	out := []domain.Event{root}
	seen := map[int64]bool{root.ID: true}
	level := []domain.Event{root}
	for len(level) > 0 {
		var next []domain.Event
		for _, parent := range level {
			for _, child := range children[parent.ID] {
				if !seen[child.ID] {
					seen[child.ID] = true
					next = append(next, child)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return next[i].ID < next[j].ID })
		out = append(out, next...)
		level = next
	}
	return out, nil
}

func (r *eventRepo) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]domain.Event, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]domain.Event, 0)
	for _, e := range r.st.events {
		if !e.EventDate.Before(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ repository.Store = (*Store)(nil)
