package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func booking(room int64, fromH, toH int) *domain.Booking {
	return &domain.Booking{
		RoomID:    room,
		UserID:    1,
		StartTime: day.Add(time.Duration(fromH) * time.Hour),
		EndTime:   day.Add(time.Duration(toH) * time.Hour),
		Status:    domain.BookingStatusPending,
	}
}

func TestStore_ExclusionRule(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Bookings().Create(ctx, booking(101, 9, 11)))

	err := store.Bookings().Create(ctx, booking(101, 10, 12))
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.NoError(t, store.Bookings().Create(ctx, booking(101, 11, 12)), "touching boundary")
	assert.NoError(t, store.Bookings().Create(ctx, booking(102, 10, 12)), "other room")

	cancelled := booking(101, 10, 11)
	cancelled.Status = domain.BookingStatusCancelled
	assert.NoError(t, store.Bookings().Create(ctx, cancelled), "cancelled rows are not constrained")
}

func TestStore_RejectsInvertedInterval(t *testing.T) {
	store := NewStore()

	err := store.Bookings().Create(context.Background(), booking(101, 11, 9))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_WithinTx_RollsBack(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("invoice insert failed")

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b := booking(101, 9, 11)
		if err := repos.Bookings().Create(ctx, b); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	bookings, total, err := store.Bookings().List(ctx, domain.BookingFilter{IncludePast: true})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.Zero(t, total)
}

func TestStore_WithinTx_Commits(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b := booking(101, 9, 11)
		if err := repos.Bookings().Create(ctx, b); err != nil {
			return err
		}
		return repos.Invoices().Create(ctx, &domain.Invoice{InvoiceNumber: "INV-1", BookingID: &b.ID, Status: domain.InvoiceStatusUnpaid})
	})
	require.NoError(t, err)

	inv, err := store.Invoices().GetByBooking(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", inv.InvoiceNumber)
}

func TestStore_ConcurrentCreates_NoDoubleBooking(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
				return repos.Bookings().Create(ctx, booking(101, 9, 11))
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}

func TestStore_DeleteBooking_DetachesInvoice(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	b := booking(101, 9, 11)
	require.NoError(t, store.Bookings().Create(ctx, b))
	inv := &domain.Invoice{InvoiceNumber: "INV-1", BookingID: &b.ID, Status: domain.InvoiceStatusUnpaid}
	require.NoError(t, store.Invoices().Create(ctx, inv))

	require.NoError(t, store.Bookings().Delete(ctx, b.ID))

	kept, err := store.Invoices().Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.BookingID)

	_, err = store.Bookings().Get(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteBooking_RestrictedByEvent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	b := booking(101, 9, 11)
	require.NoError(t, store.Bookings().Create(ctx, b))
	require.NoError(t, store.Events().Create(ctx, &domain.Event{BookingID: &b.ID, Name: "Standup"}))

	err := store.Bookings().Delete(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestStore_Events_Hierarchy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	events := store.Events()

	root := &domain.Event{Name: "Conference"}
	require.NoError(t, events.Create(ctx, root))
	track := &domain.Event{Name: "Track A", ParentEventID: &root.ID}
	require.NoError(t, events.Create(ctx, track))
	talk := &domain.Event{Name: "Talk 1", ParentEventID: &track.ID}
	require.NoError(t, events.Create(ctx, talk))

	tree, err := events.ListDescendants(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	assert.Equal(t, []string{"Conference", "Track A", "Talk 1"}, []string{tree[0].Name, tree[1].Name, tree[2].Name})

	assert.ErrorIs(t, events.Delete(ctx, root.ID), domain.ErrIntegrity)
	assert.NoError(t, events.Delete(ctx, talk.ID))

	missing := int64(99)
	err = events.Create(ctx, &domain.Event{Name: "Orphan", ParentEventID: &missing})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_List_Pagination(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	for h := 8; h < 13; h++ {
		require.NoError(t, store.Bookings().Create(ctx, booking(101, h, h+1)))
	}

	page, total, err := store.Bookings().List(ctx, domain.BookingFilter{IncludePast: true, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, day.Add(10*time.Hour), page[0].StartTime)

	page, total, err = store.Bookings().List(ctx, domain.BookingFilter{IncludePast: true, Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestStore_DailySummary(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	a := booking(101, 9, 11)
	require.NoError(t, store.Bookings().Create(ctx, a))
	require.NoError(t, store.Invoices().Create(ctx, &domain.Invoice{InvoiceNumber: "INV-A", BookingID: &a.ID, AmountCents: 10000, Status: domain.InvoiceStatusUnpaid}))
	b := booking(102, 33, 34)
	require.NoError(t, store.Bookings().Create(ctx, b))
	require.NoError(t, store.Invoices().Create(ctx, &domain.Invoice{InvoiceNumber: "INV-B", BookingID: &b.ID, AmountCents: 2500, Status: domain.InvoiceStatusPaid}))

	summary, err := store.Bookings().DailySummary(ctx, day, day.AddDate(0, 0, 3), time.UTC)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, day, summary[0].Day)
	assert.Equal(t, 1, summary[0].BookingCount)
	assert.Equal(t, int64(10000), summary[0].TotalCents)
	assert.Equal(t, int64(2500), summary[1].TotalCents)
}

func TestCatalog_LoadSeed(t *testing.T) {
	seed := `
equipment:
  - {id: 1, name: projector}
  - {id: 2, name: whiteboard}
rooms:
  - {id: 101, building_id: 1, building: Main, number: "101", capacity: 10, price: 50, equipment: [1, 2]}
users:
  - {id: 7, username: alice, email: alice@example.com}
`
	catalog := NewCatalog()
	require.NoError(t, catalog.LoadSeed(strings.NewReader(seed)))
	ctx := context.Background()

	room, err := catalog.GetRoom(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), room.PriceCents)
	assert.Len(t, room.Equipment, 2)

	ok, err := catalog.Exists(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	eq, err := catalog.GetEquipment(ctx, []int64{2, 9})
	require.NoError(t, err)
	assert.Equal(t, []domain.Equipment{{ID: 2, Name: "whiteboard"}}, eq)
}
