package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time {
	return time.Date(2024, 1, 10, h, m, 0, 0, time.UTC)
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Start: at(9, 0), End: at(11, 0)}

	assert.True(t, a.Overlaps(Interval{Start: at(10, 0), End: at(12, 0)}))
	assert.True(t, a.Overlaps(Interval{Start: at(8, 0), End: at(9, 30)}))
	assert.True(t, a.Overlaps(Interval{Start: at(9, 30), End: at(10, 0)}))
	assert.False(t, a.Overlaps(Interval{Start: at(11, 0), End: at(12, 0)}), "touching end")
	assert.False(t, a.Overlaps(Interval{Start: at(8, 0), End: at(9, 0)}), "touching start")
}

func TestInterval_Clip(t *testing.T) {
	a := Interval{Start: at(7, 0), End: at(10, 0)}
	window := Interval{Start: at(8, 0), End: at(20, 0)}

	clipped, ok := a.Clip(window)
	assert.True(t, ok)
	assert.Equal(t, at(8, 0), clipped.Start)
	assert.Equal(t, at(10, 0), clipped.End)

	_, ok = Interval{Start: at(20, 0), End: at(21, 0)}.Clip(window)
	assert.False(t, ok)
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	d := Day(time.Date(2024, 1, 10, 22, 30, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, loc), d.Start)
	assert.Equal(t, 24*time.Hour, d.Duration())
}

func TestBookingFilter_Matches(t *testing.T) {
	now := at(12, 0)
	room := int64(1)
	past := Booking{RoomID: 1, StartTime: at(9, 0), EndTime: at(11, 0), Status: BookingStatusPending}
	future := Booking{RoomID: 1, StartTime: at(13, 0), EndTime: at(14, 0), Status: BookingStatusPending}

	f := BookingFilter{RoomID: &room, Now: now}
	assert.False(t, f.Matches(past))
	assert.True(t, f.Matches(future))

	f.IncludePast = true
	assert.True(t, f.Matches(past))

	cancelled := BookingStatusCancelled
	f.Status = &cancelled
	assert.False(t, f.Matches(future))
}

func TestDayTypeOf(t *testing.T) {
	assert.Equal(t, DayTypeWeekday, DayTypeOf(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, DayTypeWeekend, DayTypeOf(time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, int64(4999), CentsFromAmount(49.99))
	assert.Equal(t, int64(5000), CentsFromAmount(50))
	assert.Equal(t, "49.99", FormatCents(4999))
	assert.Equal(t, "-0.05", FormatCents(-5))
}
