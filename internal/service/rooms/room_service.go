package rooms

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type Cache interface {
	GetRooms(ctx context.Context) ([]domain.Room, error)
	SetRooms(ctx context.Context, rooms []domain.Room) error
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
	SetRoom(ctx context.Context, room domain.Room) error
}

// RoomService is a read-through cache in front of the room catalog. It satisfies
// repository.RoomCatalog so the rest of the engine can use it transparently.
type RoomService struct {
	catalog repository.RoomCatalog
	cache   Cache
	logger  *slog.Logger
}

func NewRoomService(catalog repository.RoomCatalog, cache Cache, logger *slog.Logger) *RoomService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomService{catalog: catalog, cache: cache, logger: logger}
}

func (s *RoomService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRooms(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "room cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	rooms, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRooms(ctx, rooms); err != nil {
			s.logger.WarnContext(ctx, "room cache write failed", "error", err)
		}
	}
	return rooms, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRoom(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "room cache read failed", "room_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	room, err := s.catalog.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRoom(ctx, *room); err != nil {
			s.logger.WarnContext(ctx, "room cache write failed", "room_id", id, "error", err)
		}
	}
	return room, nil
}

func (s *RoomService) GetEquipment(ctx context.Context, ids []int64) ([]domain.Equipment, error) {
	return s.catalog.GetEquipment(ctx, ids)
}

var _ repository.RoomCatalog = (*RoomService)(nil)
