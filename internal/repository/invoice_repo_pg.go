package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const invoiceColumns = `id, invoice_number, booking_id, user_id, room_id, amount_cents, status, created_at, due_date, paid_at`

type PGInvoiceRepository struct {
	db querier
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.BookingID, &inv.UserID, &inv.RoomID, &inv.AmountCents, &inv.Status, &inv.CreatedAt, &inv.DueDate, &inv.PaidAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PGInvoiceRepository) list(ctx context.Context, op, where string, args ...any) ([]domain.Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, mapError(op, "invoice", 0, writeInsert, err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, mapError(op, "invoice", 0, writeInsert, err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (r *PGInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	err := r.db.QueryRow(ctx, `INSERT INTO invoices (invoice_number, booking_id, user_id, room_id, amount_cents, status, created_at, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		inv.InvoiceNumber, inv.BookingID, inv.UserID, inv.RoomID, inv.AmountCents, inv.Status, inv.CreatedAt, inv.DueDate).
		Scan(&inv.ID)
	return mapError("insert invoice", "invoice", 0, writeInsert, err)
}

func (r *PGInvoiceRepository) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if err != nil {
		return nil, mapError("get invoice", "invoice", id, writeInsert, err)
	}
	return inv, nil
}

func (r *PGInvoiceRepository) GetByBooking(ctx context.Context, bookingID int64) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE booking_id=$1`, bookingID))
	if err != nil {
		return nil, mapError("get invoice by booking", "invoice", bookingID, writeInsert, err)
	}
	return inv, nil
}

func (r *PGInvoiceRepository) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `UPDATE invoices SET status=$1, paid_at=$2 WHERE id=$3 RETURNING `+invoiceColumns, status, paidAt, id))
	if err != nil {
		return nil, mapError("update invoice", "invoice", id, writeInsert, err)
	}
	return inv, nil
}

func (r *PGInvoiceRepository) DetachBooking(ctx context.Context, bookingID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE invoices SET booking_id=NULL WHERE booking_id=$1`, bookingID)
	return mapError("detach invoice", "invoice", 0, writeInsert, err)
}

func (r *PGInvoiceRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	if err != nil {
		return mapError("delete invoice", "invoice", id, writeDelete, err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "invoice", ID: id}
	}
	return nil
}

func (r *PGInvoiceRepository) ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	return r.list(ctx, "list invoices by status", `WHERE status=$1`, status)
}

func (r *PGInvoiceRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Invoice, error) {
	return r.list(ctx, "list user invoices", `WHERE user_id=$1`, userID)
}

func (r *PGInvoiceRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Invoice, error) {
	return r.list(ctx, "list overdue invoices", `WHERE status=$1 AND due_date < $2`, domain.InvoiceStatusUnpaid, now)
}
