package occupancy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/obs"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type Settings struct {
	// WorkdayStart and WorkdayEnd are offsets from local midnight bounding the bookable hours.
	WorkdayStart        time.Duration
	WorkdayEnd          time.Duration
	MovingAverageWindow int
	MaxDaysAhead        int
	Location            *time.Location
}

func DefaultSettings() Settings {
	return Settings{
		WorkdayStart:        8 * time.Hour,
		WorkdayEnd:          20 * time.Hour,
		MovingAverageWindow: 7,
		MaxDaysAhead:        366,
		Location:            time.UTC,
	}
}

type OccupancyAnalyzer struct {
	catalog  repository.RoomCatalog
	bookings repository.BookingRepository
	settings Settings
	logger   *slog.Logger
}

func NewOccupancyAnalyzer(catalog repository.RoomCatalog, bookings repository.BookingRepository, settings Settings, logger *slog.Logger) *OccupancyAnalyzer {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.MovingAverageWindow <= 0 {
		settings.MovingAverageWindow = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OccupancyAnalyzer{catalog: catalog, bookings: bookings, settings: settings, logger: logger}
}

// AnalyzeOccupancy returns one sample per calendar day in [startDate, startDate+daysAhead).
func (a *OccupancyAnalyzer) AnalyzeOccupancy(ctx context.Context, roomID int64, startDate time.Time, daysAhead int) ([]domain.OccupancySample, error) {
	v := &domain.ValidationError{}
	if daysAhead < 1 || daysAhead > a.settings.MaxDaysAhead {
		v.Add("days_ahead", fmt.Sprintf("must be between 1 and %d", a.settings.MaxDaysAhead))
	}
	if startDate.IsZero() {
		v.Add("start_date", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if _, err := a.catalog.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	loc := a.settings.Location
	first := domain.Day(startDate, loc).Start
	span := domain.Interval{Start: first, End: first.AddDate(0, 0, daysAhead)}
	active, err := a.bookings.ListActiveInRange(ctx, &roomID, span)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}

	workday := a.settings.WorkdayEnd - a.settings.WorkdayStart
	samples := make([]domain.OccupancySample, 0, daysAhead)
	counts := make([]int, 0, daysAhead)
	for i := 0; i < daysAhead; i++ {
		dayStart := first.AddDate(0, 0, i)
		day := domain.Interval{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}
		window := domain.Interval{
			Start: dayStart.Add(a.settings.WorkdayStart),
			End:   dayStart.Add(a.settings.WorkdayEnd),
		}

		count := 0
		var booked time.Duration
		for _, b := range active {
			if !b.Interval().Overlaps(day) {
				continue
			}
			count++
			if part, ok := b.Interval().Clip(window); ok {
				booked += part.Duration()
			}
		}
		counts = append(counts, count)

		samples = append(samples, domain.OccupancySample{
			SlotDate:              dayStart,
			BookingsCount:         count,
			OccupancyPercentage:   percentage(booked, workday),
			MovingAverageBookings: trailingAverage(counts, a.settings.MovingAverageWindow),
			DayType:               domain.DayTypeOf(dayStart),
		})
	}

	obs.Operation(ctx, a.logger, "OccupancyAnalyzer", "AnalyzeOccupancy", "room_id", roomID).
		DebugContext(ctx, "occupancy analysed", "days", daysAhead, "bookings", len(active))
	return samples, nil
}

// percentage is the booked share of the workday, capped at 100.
func percentage(booked, workday time.Duration) float64 {
	if workday <= 0 {
		return 0
	}
	p := float64(booked) / float64(workday) * 100
	return math.Min(100, round2(p))
}

// trailingAverage averages the last window values of counts, clipped at the start.
func trailingAverage(counts []int, window int) float64 {
	from := len(counts) - window
	if from < 0 {
		from = 0
	}
	sum := 0
	for _, c := range counts[from:] {
		sum += c
	}
	return round2(float64(sum) / float64(len(counts)-from))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
