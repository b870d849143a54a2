package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, booking_id, name, event_date, description, created_by, created_at, parent_event_id`

type PGEventRepository struct {
	db querier
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.BookingID, &e.Name, &e.EventDate, &e.Description, &e.CreatedBy, &e.CreatedAt, &e.ParentEventID); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *PGEventRepository) Create(ctx context.Context, e *domain.Event) error {
	err := r.db.QueryRow(ctx, `INSERT INTO events (booking_id, name, event_date, description, created_by, parent_event_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		e.BookingID, e.Name, e.EventDate, e.Description, e.CreatedBy, e.ParentEventID).
		Scan(&e.ID, &e.CreatedAt)
	return mapError("insert event", "event", 0, writeInsert, err)
}

func (r *PGEventRepository) Get(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
	if err != nil {
		return nil, mapError("get event", "event", id, writeInsert, err)
	}
	return e, nil
}

func (r *PGEventRepository) GetByBooking(ctx context.Context, bookingID int64) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE booking_id=$1`, bookingID))
	if err != nil {
		return nil, mapError("get event by booking", "event", bookingID, writeInsert, err)
	}
	return e, nil
}

func (r *PGEventRepository) Update(ctx context.Context, e *domain.Event) error {
	cmd, err := r.db.Exec(ctx, `UPDATE events SET name=$1, event_date=$2, description=$3, parent_event_id=$4 WHERE id=$5`,
		e.Name, e.EventDate, e.Description, e.ParentEventID, e.ID)
	if err != nil {
		return mapError("update event", "event", e.ID, writeInsert, err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "event", ID: e.ID}
	}
	return nil
}

func (r *PGEventRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return mapError("delete event", "event", id, writeDelete, err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "event", ID: id}
	}
	return nil
}

func (r *PGEventRepository) ListDescendants(ctx context.Context, rootID int64) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `WITH RECURSIVE tree AS (
			SELECT `+eventColumns+`, 0 AS level FROM events WHERE id=$1
			UNION ALL
			SELECT e.id, e.booking_id, e.name, e.event_date, e.description, e.created_by, e.created_at, e.parent_event_id, t.level + 1
			FROM events e JOIN tree t ON e.parent_event_id = t.id
		)
		SELECT `+eventColumns+` FROM tree ORDER BY level, id`, rootID)
	if err != nil {
		return nil, mapError("list event tree", "event", rootID, writeInsert, err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, mapError("list event tree", "event", rootID, writeInsert, err)
	}
	if len(events) == 0 {
		return nil, &domain.NotFoundError{Entity: "event", ID: rootID}
	}
	return events, nil
}

func (r *PGEventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE event_date >= $1 ORDER BY event_date, id LIMIT $2`, from, limit)
	if err != nil {
		return nil, mapError("list upcoming events", "event", 0, writeInsert, err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, mapError("list upcoming events", "event", 0, writeInsert, err)
	}
	return events, nil
}
