package rooms

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

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
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockCatalog) GetEquipment(ctx context.Context, ids []int64) ([]domain.Equipment, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Equipment), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetRooms(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockCache) SetRooms(ctx context.Context, rooms []domain.Room) error {
	return m.Called(ctx, rooms).Error(0)
}

func (m *MockCache) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockCache) SetRoom(ctx context.Context, room domain.Room) error {
	return m.Called(ctx, room).Error(0)
}

func TestRoomService_ListRooms_CacheHit(t *testing.T) {
	catalog := &MockCatalog{}
	cache := &MockCache{}
	service := NewRoomService(catalog, cache, nil)
	ctx := context.Background()

	rooms := []domain.Room{{ID: 101, RoomNumber: "101", Capacity: 10, PriceCents: 5000}}
	cache.On("GetRooms", ctx).Return(rooms, nil).Once()

	got, err := service.ListRooms(ctx)

	assert.NoError(t, err)
	assert.Equal(t, rooms, got)
	catalog.AssertNotCalled(t, "ListRooms", mock.Anything)
}

func TestRoomService_ListRooms_CacheMiss(t *testing.T) {
	catalog := &MockCatalog{}
	cache := &MockCache{}
	service := NewRoomService(catalog, cache, nil)
	ctx := context.Background()

	rooms := []domain.Room{{ID: 101}, {ID: 102}}
	cache.On("GetRooms", ctx).Return(nil, nil).Once()
	catalog.On("ListRooms", ctx).Return(rooms, nil).Once()
	cache.On("SetRooms", ctx, rooms).Return(nil).Once()

	got, err := service.ListRooms(ctx)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	catalog.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRoomService_GetRoom_CacheErrorFallsBack(t *testing.T) {
	catalog := &MockCatalog{}
	cache := &MockCache{}
	service := NewRoomService(catalog, cache, nil)
	ctx := context.Background()

	room := &domain.Room{ID: 101, RoomNumber: "101"}
	cache.On("GetRoom", ctx, int64(101)).Return(nil, errors.New("redis down")).Once()
	catalog.On("GetRoom", ctx, int64(101)).Return(room, nil).Once()
	cache.On("SetRoom", ctx, *room).Return(errors.New("redis down")).Once()

	got, err := service.GetRoom(ctx, 101)

	assert.NoError(t, err)
	assert.Equal(t, room, got)
}

func TestRoomService_GetRoom_NotFound(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewRoomService(catalog, nil, nil)
	ctx := context.Background()

	catalog.On("GetRoom", ctx, int64(9)).Return(nil, &domain.NotFoundError{Entity: "room", ID: 9}).Once()

	got, err := service.GetRoom(ctx, 9)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
