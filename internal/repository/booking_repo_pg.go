package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, room_id, user_id, booking_date, start_time, end_time, status, has_event, created_at, updated_at`

type PGBookingRepository struct {
	db querier
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.RoomID, &b.UserID, &b.BookingDate, &b.StartTime, &b.EndTime, &b.Status, &b.HasEvent, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func conflictFor(b *domain.Booking, err error) error {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return &domain.ConflictError{RoomID: b.RoomID, Start: b.StartTime, End: b.EndTime}
	}
	return err
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (room_id, user_id, booking_date, start_time, end_time, status, has_event)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		b.RoomID, b.UserID, b.BookingDate, b.StartTime, b.EndTime, b.Status, b.HasEvent).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return conflictFor(b, mapError("insert booking", "booking", 0, writeInsert, err))
}

func (r *PGBookingRepository) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, mapError("get booking", "booking", id, writeInsert, err)
	}
	return b, nil
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock booking", "booking", id, writeInsert, err)
	}
	return b, nil
}

func (r *PGBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	err := r.db.QueryRow(ctx, `UPDATE bookings
		SET room_id=$1, start_time=$2, end_time=$3, status=$4, has_event=$5, updated_at=now()
		WHERE id=$6
		RETURNING updated_at`,
		b.RoomID, b.StartTime, b.EndTime, b.Status, b.HasEvent, b.ID).
		Scan(&b.UpdatedAt)
	return conflictFor(b, mapError("update booking", "booking", b.ID, writeInsert, err))
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return mapError("delete booking", "booking", id, writeDelete, err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "booking", ID: id}
	}
	return nil
}

func (r *PGBookingRepository) HasConflict(ctx context.Context, roomID int64, interval domain.Interval, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id=$1 AND status <> 'CANCELLED'
			  AND start_time < $3 AND end_time > $2
			  AND ($4::bigint IS NULL OR id <> $4)
		)`, roomID, interval.Start, interval.End, excludeID).Scan(&exists)
	if err != nil {
		return false, mapError("check conflict", "booking", 0, writeInsert, err)
	}
	return exists, nil
}

func bookingWhere(f domain.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.RoomID != nil {
		add("room_id = $%d", *f.RoomID)
	}
	if f.From != nil {
		add("start_time >= $%d", *f.From)
	}
	if f.To != nil {
		add("start_time < $%d", *f.To)
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.HasEvent != nil {
		add("has_event = $%d", *f.HasEvent)
	}
	if !f.IncludePast {
		add("end_time > $%d", f.Now)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PGBookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int, error) {
	where, args := bookingWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count bookings", "booking", 0, writeInsert, err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY start_time, id LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list bookings", "booking", 0, writeInsert, err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, mapError("list bookings", "booking", 0, writeInsert, err)
	}
	return bookings, total, nil
}

func (r *PGBookingRepository) ListActiveInRange(ctx context.Context, roomID *int64, interval domain.Interval) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status <> 'CANCELLED' AND start_time < $2 AND end_time > $1
		  AND ($3::bigint IS NULL OR room_id = $3)
		ORDER BY room_id, start_time`, interval.Start, interval.End, roomID)
	if err != nil {
		return nil, mapError("list active bookings", "booking", 0, writeInsert, err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, mapError("list active bookings", "booking", 0, writeInsert, err)
	}
	return bookings, nil
}

func (r *PGBookingRepository) DailySummary(ctx context.Context, from, to time.Time, loc *time.Location) ([]domain.DailyBookingSummary, error) {
	rows, err := r.db.Query(ctx, `SELECT (b.start_time AT TIME ZONE $3)::date AS day,
			count(*),
			COALESCE(sum(i.amount_cents), 0)::bigint
		FROM bookings b
		LEFT JOIN invoices i ON i.booking_id = b.id AND i.status <> 'CANCELLED'
		WHERE b.status <> 'CANCELLED' AND b.start_time >= $1 AND b.start_time < $2
		GROUP BY day
		ORDER BY day`, from, to, loc.String())
	if err != nil {
		return nil, mapError("daily summary", "booking", 0, writeInsert, err)
	}
	defer rows.Close()

	summary := make([]domain.DailyBookingSummary, 0)
	for rows.Next() {
		var (
			day   time.Time
			count int64
			total int64
		)
		if err := rows.Scan(&day, &count, &total); err != nil {
			return nil, err
		}
		summary = append(summary, domain.DailyBookingSummary{
			Day:          time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc),
			BookingCount: int(count),
			TotalCents:   total,
		})
	}
	return summary, rows.Err()
}
