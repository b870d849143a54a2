package domain

import "time"

type OptimalRoomCandidate struct {
	RoomID              int64   `json:"room_id"`
	RoomNumber          string  `json:"room_number"`
	Capacity            int     `json:"capacity"`
	PriceCents          int64   `json:"price_cents"`
	EquipmentMatchCount int     `json:"equipment_match_count"`
	TotalScore          float64 `json:"total_score"`
}

type DayType string

const (
	DayTypeWeekday DayType = "Weekday"
	DayTypeWeekend DayType = "Weekend"
)

func DayTypeOf(t time.Time) DayType {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return DayTypeWeekend
	}
	return DayTypeWeekday
}

type OccupancySample struct {
	SlotDate              time.Time `json:"slot_date"`
	BookingsCount         int       `json:"bookings_count"`
	OccupancyPercentage   float64   `json:"occupancy_percentage"`
	MovingAverageBookings float64   `json:"moving_average_bookings"`
	DayType               DayType   `json:"day_type"`
}
