package occupancy

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-12 is a Friday.
var friday = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

func newAnalyzer(t *testing.T, bookings ...domain.Booking) *OccupancyAnalyzer {
	t.Helper()
	catalog := memory.NewCatalog()
	catalog.AddRoom(domain.Room{ID: 101, RoomNumber: "101", Capacity: 10, PriceCents: 5000})
	catalog.AddRoom(domain.Room{ID: 102, RoomNumber: "102", Capacity: 6, PriceCents: 3500})

	store := memory.NewStore()
	for i := range bookings {
		require.NoError(t, store.Bookings().Create(context.Background(), &bookings[i]))
	}
	settings := DefaultSettings()
	settings.MovingAverageWindow = 3
	return NewOccupancyAnalyzer(catalog, store.Bookings(), settings, nil)
}

func booking(roomID int64, start time.Time, d time.Duration, status domain.BookingStatus) domain.Booking {
	return domain.Booking{RoomID: roomID, UserID: 1, StartTime: start, EndTime: start.Add(d), Status: status}
}

func TestAnalyzeOccupancy(t *testing.T) {
	analyzer := newAnalyzer(t,
		booking(101, friday.Add(9*time.Hour), 3*time.Hour, domain.BookingStatusConfirmed),
		booking(101, friday.Add(14*time.Hour), 3*time.Hour, domain.BookingStatusPending),
		// Cancelled and other-room bookings are ignored.
		booking(101, friday.Add(18*time.Hour), time.Hour, domain.BookingStatusCancelled),
		booking(102, friday.Add(9*time.Hour), 2*time.Hour, domain.BookingStatusPending),
		// Saturday evening into Sunday morning counts for both days.
		booking(101, friday.AddDate(0, 0, 1).Add(19*time.Hour), 15*time.Hour, domain.BookingStatusPending),
	)

	samples, err := analyzer.AnalyzeOccupancy(context.Background(), 101, friday.Add(15*time.Hour), 4)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, friday, samples[0].SlotDate)
	assert.Equal(t, 2, samples[0].BookingsCount)
	assert.InDelta(t, 50.0, samples[0].OccupancyPercentage, 0.001)
	assert.Equal(t, domain.DayTypeWeekday, samples[0].DayType)
	assert.InDelta(t, 2.0, samples[0].MovingAverageBookings, 0.001)

	assert.Equal(t, 1, samples[1].BookingsCount)
	assert.InDelta(t, 8.33, samples[1].OccupancyPercentage, 0.001)
	assert.Equal(t, domain.DayTypeWeekend, samples[1].DayType)
	assert.InDelta(t, 1.5, samples[1].MovingAverageBookings, 0.001)

	assert.Equal(t, 1, samples[2].BookingsCount)
	assert.InDelta(t, 16.67, samples[2].OccupancyPercentage, 0.001)
	assert.Equal(t, domain.DayTypeWeekend, samples[2].DayType)
	assert.InDelta(t, 1.33, samples[2].MovingAverageBookings, 0.001)

	assert.Equal(t, 0, samples[3].BookingsCount)
	assert.Zero(t, samples[3].OccupancyPercentage)
	assert.Equal(t, domain.DayTypeWeekday, samples[3].DayType)
	assert.InDelta(t, 0.67, samples[3].MovingAverageBookings, 0.001)
}

func TestAnalyzeOccupancy_FullDayCapped(t *testing.T) {
	analyzer := newAnalyzer(t,
		booking(101, friday, 24*time.Hour, domain.BookingStatusConfirmed),
	)

	samples, err := analyzer.AnalyzeOccupancy(context.Background(), 101, friday, 1)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 100.0, samples[0].OccupancyPercentage)
}

func TestTrailingAverage(t *testing.T) {
	counts := []int{4, 0, 2, 6, 1}
	for k := range counts {
		from := k - 2
		if from < 0 {
			from = 0
		}
		sum := 0
		for _, c := range counts[from : k+1] {
			sum += c
		}
		want := float64(sum) / float64(k+1-from)
		assert.InDelta(t, want, trailingAverage(counts[:k+1], 3), 0.005, "day %d", k)
	}
}

func TestAnalyzeOccupancy_Errors(t *testing.T) {
	analyzer := newAnalyzer(t)
	ctx := context.Background()

	_, err := analyzer.AnalyzeOccupancy(ctx, 999, friday, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = analyzer.AnalyzeOccupancy(ctx, 101, friday, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = analyzer.AnalyzeOccupancy(ctx, 101, friday, 367)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = analyzer.AnalyzeOccupancy(ctx, 101, time.Time{}, 7)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
