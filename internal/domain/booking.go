package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// Active reports whether the booking still holds its interval.
func (s BookingStatus) Active() bool {
	return s != BookingStatusCancelled
}

type Booking struct {
	ID          int64         `json:"id"`
	RoomID      int64         `json:"room_id"`
	UserID      int64         `json:"user_id"`
	BookingDate time.Time     `json:"booking_date"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Status      BookingStatus `json:"status"`
	HasEvent    bool          `json:"has_event"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// BookingReceipt is a booking together with the records created or kept alongside it.
type BookingReceipt struct {
	Booking Booking  `json:"booking"`
	Invoice *Invoice `json:"invoice,omitempty"`
	Event   *Event   `json:"event,omitempty"`
}

// BookingFilter narrows booking listings. Nil pointers mean "any".
type BookingFilter struct {
	UserID      *int64
	RoomID      *int64
	From        *time.Time
	To          *time.Time
	Status      *BookingStatus
	HasEvent    *bool
	IncludePast bool
	Now         time.Time
	Limit       int
	Offset      int
}

// Matches applies every filter except pagination.
func (f BookingFilter) Matches(b Booking) bool {
	if f.UserID != nil && b.UserID != *f.UserID {
		return false
	}
	if f.RoomID != nil && b.RoomID != *f.RoomID {
		return false
	}
	if f.From != nil && b.StartTime.Before(*f.From) {
		return false
	}
	if f.To != nil && !b.StartTime.Before(*f.To) {
		return false
	}
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.HasEvent != nil && b.HasEvent != *f.HasEvent {
		return false
	}
	if !f.IncludePast && !b.EndTime.After(f.Now) {
		return false
	}
	return true
}

type BookingPage struct {
	Items  []Booking `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type DailyBookingSummary struct {
	Day          time.Time `json:"day"`
	BookingCount int       `json:"booking_count"`
	TotalCents   int64     `json:"total_amount_cents"`
}
