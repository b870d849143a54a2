package domain

import "time"

type Event struct {
	ID            int64     `json:"id"`
	BookingID     *int64    `json:"booking_id,omitempty"`
	Name          string    `json:"name"`
	EventDate     time.Time `json:"event_date"`
	Description   string    `json:"description"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	ParentEventID *int64    `json:"parent_event_id,omitempty"`
}

// EventDetails is what a caller supplies to attach an event to a booking.
type EventDetails struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	ParentEventID *int64 `json:"parent_event_id,omitempty"`
}

type EventNode struct {
	Event
	Level    int         `json:"level"`
	Children []EventNode `json:"children"`
}

type EventBookingDetails struct {
	Event        Event    `json:"event"`
	Booking      *Booking `json:"booking,omitempty"`
	RoomNumber   string   `json:"room_number,omitempty"`
	BuildingName string   `json:"building_name,omitempty"`
	Username     string   `json:"username,omitempty"`
}
