package domain

import "time"

type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "UNPAID"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

type Invoice struct {
	ID            int64         `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	BookingID     *int64        `json:"booking_id,omitempty"`
	UserID        int64         `json:"user_id"`
	RoomID        int64         `json:"room_id"`
	AmountCents   int64         `json:"amount_cents"`
	Status        InvoiceStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	DueDate       time.Time     `json:"due_date"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// InvoiceView is an invoice with the display fields of its user, room and booking.
type InvoiceView struct {
	Invoice
	Username     string     `json:"username"`
	RoomNumber   string     `json:"room_number"`
	BuildingName string     `json:"building_name"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

type BulkOutcome string

const (
	OutcomeCancelled        BulkOutcome = "cancelled"
	OutcomeDeleted          BulkOutcome = "deleted"
	OutcomeAlreadyCancelled BulkOutcome = "already_cancelled"
	OutcomeSkippedPaid      BulkOutcome = "skipped_paid"
	OutcomeNotFound         BulkOutcome = "not_found"
	OutcomeFailed           BulkOutcome = "failed"
)

// BulkResult reports what happened to one id of a bulk invoice operation.
type BulkResult struct {
	ID      int64       `json:"id"`
	Outcome BulkOutcome `json:"outcome"`
	Error   string      `json:"error,omitempty"`
}
