package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type EventUseCase interface {
	Get(ctx context.Context, id int64) (*domain.Event, error)
	Hierarchy(ctx context.Context, rootID int64) (*domain.EventNode, error)
	Upcoming(ctx context.Context, limit int) ([]domain.Event, error)
	BookingDetails(ctx context.Context, eventID int64) (*domain.EventBookingDetails, error)
}

type EventService struct {
	events   repository.EventRepository
	bookings repository.BookingRepository
	catalog  repository.RoomCatalog
	users    repository.UserDirectory
	now      func() time.Time
	maxLimit int
}

func NewEventService(
	events repository.EventRepository,
	bookings repository.BookingRepository,
	catalog repository.RoomCatalog,
	users repository.UserDirectory,
	now func() time.Time,
) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{events: events, bookings: bookings, catalog: catalog, users: users, now: now, maxLimit: 100}
}

func (s *EventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	return s.events.Get(ctx, id)
}

// Hierarchy returns rootID and all of its descendants as a tree; Level 0 is the root.
func (s *EventService) Hierarchy(ctx context.Context, rootID int64) (*domain.EventNode, error) {
	flat, err := s.events.ListDescendants(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if len(flat) == 0 {
		return nil, &domain.NotFoundError{Entity: "event", ID: rootID}
	}

	children := make(map[int64][]domain.Event, len(flat))
	for _, e := range flat {
		if e.ID != rootID && e.ParentEventID != nil {
			children[*e.ParentEventID] = append(children[*e.ParentEventID], e)
		}
	}

	var root domain.Event
	for _, e := range flat {
		if e.ID == rootID {
			root = e
		}
	}
	node := buildNode(root, 0, children)
	return &node, nil
}

func buildNode(e domain.Event, level int, children map[int64][]domain.Event) domain.EventNode {
	node := domain.EventNode{Event: e, Level: level, Children: make([]domain.EventNode, 0, len(children[e.ID]))}
	for _, child := range children[e.ID] {
		node.Children = append(node.Children, buildNode(child, level+1, children))
	}
	return node
}

// Upcoming lists events dated from now on, earliest first.
func (s *EventService) Upcoming(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit < 0 {
		return nil, domain.NewValidationError("limit", "must not be negative")
	}
	if limit == 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.events.ListUpcoming(ctx, s.now(), limit)
}

// BookingDetails joins an event with its booking, room and organiser. Booking fields stay
// empty for events whose booking was removed.
func (s *EventService) BookingDetails(ctx context.Context, eventID int64) (*domain.EventBookingDetails, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	details := &domain.EventBookingDetails{Event: *event}

	if user, err := s.users.Get(ctx, event.CreatedBy); err == nil {
		details.Username = user.Username
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get organiser: %w", err)
	}

	if event.BookingID == nil {
		return details, nil
	}
	booking, err := s.bookings.Get(ctx, *event.BookingID)
	if errors.Is(err, domain.ErrNotFound) {
		return details, nil
	}
	if err != nil {
		return nil, err
	}
	details.Booking = booking

	room, err := s.catalog.GetRoom(ctx, booking.RoomID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room != nil {
		details.RoomNumber = room.RoomNumber
		details.BuildingName = room.BuildingName
	}
	return details, nil
}

var _ EventUseCase = (*EventService)(nil)
