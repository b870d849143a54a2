package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgRepositories struct {
	bookings *PGBookingRepository
	invoices *PGInvoiceRepository
	events   *PGEventRepository
}

func newPGRepositories(db querier) *pgRepositories {
	return &pgRepositories{
		bookings: &PGBookingRepository{db: db},
		invoices: &PGInvoiceRepository{db: db},
		events:   &PGEventRepository{db: db},
	}
}

func (r *pgRepositories) Bookings() BookingRepository { return r.bookings }
func (r *pgRepositories) Invoices() InvoiceRepository { return r.invoices }
func (r *pgRepositories) Events() EventRepository     { return r.events }

type PGStore struct {
	*pgRepositories
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pgRepositories: newPGRepositories(pool), pool: pool}
}

func (s *PGStore) WithinTx(ctx context.Context, fn TxFunc) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapError("begin", "transaction", 0, writeInsert, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newPGRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit", "transaction", 0, writeInsert, err)
	}
	return nil
}

var _ Store = (*PGStore)(nil)
