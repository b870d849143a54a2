package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	projector  = domain.Equipment{ID: 1, Name: "Projector"}
	whiteboard = domain.Equipment{ID: 2, Name: "Whiteboard"}
	date       = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func seededCatalog(rooms ...domain.Room) *memory.Catalog {
	catalog := memory.NewCatalog()
	for _, r := range rooms {
		catalog.AddRoom(r)
	}
	return catalog
}

func ids(candidates []domain.OptimalRoomCandidate) []int64 {
	out := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.RoomID)
	}
	return out
}

func TestRoomMatcher_ProjectorRanksFirst(t *testing.T) {
	plain := domain.Room{ID: 1, RoomNumber: "A1", Capacity: 8, PriceCents: 5000}
	equipped := domain.Room{ID: 2, RoomNumber: "A2", Capacity: 8, PriceCents: 5000, Equipment: []domain.Equipment{projector}}

	for _, order := range [][]domain.Room{{plain, equipped}, {equipped, plain}} {
		matcher := NewRoomMatcher(seededCatalog(order...), memory.NewStore().Bookings(), time.UTC, nil)

		got, err := matcher.FindOptimalRooms(context.Background(), Query{
			Capacity: 5, MaxPriceCents: 10000, Equipment: []string{"projector"}, Date: date,
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, []int64{2, 1}, ids(got))
		assert.Equal(t, 1, got[0].EquipmentMatchCount)
		assert.Equal(t, 0, got[1].EquipmentMatchCount)
	}
}

func TestRoomMatcher_Filters(t *testing.T) {
	ctx := context.Background()
	small := domain.Room{ID: 1, RoomNumber: "S", Capacity: 4, PriceCents: 2000}
	pricey := domain.Room{ID: 2, RoomNumber: "P", Capacity: 20, PriceCents: 50000}
	booked := domain.Room{ID: 3, RoomNumber: "B", Capacity: 10, PriceCents: 4000}
	free := domain.Room{ID: 4, RoomNumber: "F", Capacity: 10, PriceCents: 4000}

	store := memory.NewStore()
	require.NoError(t, store.Bookings().Create(ctx, &domain.Booking{
		RoomID: 3, UserID: 1, Status: domain.BookingStatusPending,
		StartTime: date.Add(22 * time.Hour), EndTime: date.Add(26 * time.Hour),
	}))
	require.NoError(t, store.Bookings().Create(ctx, &domain.Booking{
		RoomID: 4, UserID: 1, Status: domain.BookingStatusCancelled,
		StartTime: date.Add(9 * time.Hour), EndTime: date.Add(10 * time.Hour),
	}))

	matcher := NewRoomMatcher(seededCatalog(small, pricey, booked, free), store.Bookings(), time.UTC, nil)
	got, err := matcher.FindOptimalRooms(ctx, Query{Capacity: 5, MaxPriceCents: 10000, Date: date})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(got))
}

func TestRoomMatcher_ScoreOrdering(t *testing.T) {
	cheap := domain.Room{ID: 1, RoomNumber: "C", Capacity: 10, PriceCents: 2000}
	dear := domain.Room{ID: 2, RoomNumber: "D", Capacity: 10, PriceCents: 8000}
	tight := domain.Room{ID: 3, RoomNumber: "T", Capacity: 5, PriceCents: 8000}
	twin := domain.Room{ID: 4, RoomNumber: "W", Capacity: 10, PriceCents: 2000}

	matcher := NewRoomMatcher(seededCatalog(twin, tight, dear, cheap), memory.NewStore().Bookings(), time.UTC, nil)
	q := Query{Capacity: 5, MaxPriceCents: 10000, Date: date}

	got, err := matcher.FindOptimalRooms(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 3, 2}, ids(got))
	assert.InDelta(t, 85.0, got[0].TotalScore, 0.001)

	again, err := matcher.FindOptimalRooms(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestRoomMatcher_EquipmentByID(t *testing.T) {
	both := domain.Room{ID: 1, RoomNumber: "X", Capacity: 10, PriceCents: 5000, Equipment: []domain.Equipment{projector, whiteboard}}
	one := domain.Room{ID: 2, RoomNumber: "Y", Capacity: 10, PriceCents: 1000, Equipment: []domain.Equipment{whiteboard}}

	matcher := NewRoomMatcher(seededCatalog(one, both), memory.NewStore().Bookings(), time.UTC, nil)
	got, err := matcher.FindOptimalRooms(context.Background(), Query{
		Capacity: 2, MaxPriceCents: 10000, Equipment: []string{"1", "WHITEBOARD", " whiteboard "}, Date: date,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].RoomID)
	assert.Equal(t, 2, got[0].EquipmentMatchCount)
	assert.Equal(t, 1, got[1].EquipmentMatchCount)
}

func TestRoomMatcher_Empty(t *testing.T) {
	matcher := NewRoomMatcher(seededCatalog(), memory.NewStore().Bookings(), time.UTC, nil)
	got, err := matcher.FindOptimalRooms(context.Background(), Query{Capacity: 5, MaxPriceCents: 100, Date: date})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRoomMatcher_Validation(t *testing.T) {
	matcher := NewRoomMatcher(seededCatalog(), memory.NewStore().Bookings(), time.UTC, nil)

	_, err := matcher.FindOptimalRooms(context.Background(), Query{})
	require.Error(t, err)

	var v *domain.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Contains(t, v.FieldErrors, "capacity")
	assert.Contains(t, v.FieldErrors, "max_price")
	assert.Contains(t, v.FieldErrors, "date")
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockCatalog) ListRooms(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockCatalog) GetEquipment(ctx context.Context, ids []int64) ([]domain.Equipment, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Equipment), args.Error(1)
}

func TestRoomMatcher_CatalogFailure(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("ListRooms", mock.Anything).Return(nil, errors.New("catalog offline"))

	matcher := NewRoomMatcher(catalog, memory.NewStore().Bookings(), time.UTC, nil)
	_, err := matcher.FindOptimalRooms(context.Background(), Query{Capacity: 1, MaxPriceCents: 1, Date: date})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog offline")
	catalog.AssertExpectations(t)
}
