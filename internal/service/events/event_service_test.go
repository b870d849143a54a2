package events

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	service *EventService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(memory.WithClock(func() time.Time { return now }))
	catalog := memory.NewCatalog()
	catalog.AddRoom(domain.Room{ID: 101, BuildingName: "Main", RoomNumber: "101", Capacity: 10, PriceCents: 5000})
	catalog.AddUser(domain.User{ID: 1, Username: "alice"})

	service := NewEventService(store.Events(), store.Bookings(), catalog, catalog, func() time.Time { return now })
	return &fixture{store: store, service: service}
}

// event stores a booking at offset hours from now with an attached event.
func (f *fixture) event(t *testing.T, offset int, name string, parent *int64) domain.Event {
	t.Helper()
	var e domain.Event
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		start := now.Add(time.Duration(offset) * time.Hour)
		b := domain.Booking{RoomID: 101, UserID: 1, StartTime: start, EndTime: start.Add(time.Hour),
			Status: domain.BookingStatusConfirmed, HasEvent: true}
		if err := repos.Bookings().Create(ctx, &b); err != nil {
			return err
		}
		e = domain.Event{BookingID: &b.ID, Name: name, EventDate: start, CreatedBy: 1, ParentEventID: parent}
		return repos.Events().Create(ctx, &e)
	})
	require.NoError(t, err)
	return e
}

func TestEventService_Hierarchy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conf := f.event(t, 1, "Conference", nil)
	track := f.event(t, 2, "Track", &conf.ID)
	talk := f.event(t, 3, "Talk", &track.ID)
	lunch := f.event(t, 4, "Lunch", &conf.ID)
	f.event(t, 5, "Unrelated", nil)

	tree, err := f.service.Hierarchy(ctx, conf.ID)
	require.NoError(t, err)
	assert.Equal(t, "Conference", tree.Name)
	assert.Equal(t, 0, tree.Level)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, track.ID, tree.Children[0].ID)
	assert.Equal(t, lunch.ID, tree.Children[1].ID)
	assert.Equal(t, 1, tree.Children[0].Level)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, talk.ID, tree.Children[0].Children[0].ID)
	assert.Equal(t, 2, tree.Children[0].Children[0].Level)

	sub, err := f.service.Hierarchy(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Level)
	assert.Len(t, sub.Children, 1)

	_, err = f.service.Hierarchy(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_Upcoming(t *testing.T) {
	f := newFixture(t)

	f.event(t, -3, "Past", nil)
	f.event(t, 5, "Later", nil)
	f.event(t, 1, "Soon", nil)

	got, err := f.service.Upcoming(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Soon", got[0].Name)
	assert.Equal(t, "Later", got[1].Name)

	got, err = f.service.Upcoming(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.service.Upcoming(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEventService_BookingDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := f.event(t, 1, "Demo", nil)

	details, err := f.service.BookingDetails(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", details.Event.Name)
	require.NotNil(t, details.Booking)
	assert.Equal(t, *e.BookingID, details.Booking.ID)
	assert.Equal(t, "101", details.RoomNumber)
	assert.Equal(t, "Main", details.BuildingName)
	assert.Equal(t, "alice", details.Username)

	got, err := f.service.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = f.service.BookingDetails(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
