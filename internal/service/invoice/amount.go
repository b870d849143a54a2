package invoice

import (
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
)

// AmountPolicy prices a booking of room over interval, in cents.
type AmountPolicy func(room domain.Room, interval domain.Interval) int64

// PerBillingUnit charges the room price for every started unit of time.
func PerBillingUnit(unit time.Duration) AmountPolicy {
	if unit <= 0 {
		unit = time.Hour
	}
	return func(room domain.Room, interval domain.Interval) int64 {
		d := interval.Duration()
		if d <= 0 {
			return 0
		}
		units := int64(d / unit)
		if d%unit != 0 {
			units++
		}
		return room.PriceCents * units
	}
}

func FlatRate(cents int64) AmountPolicy {
	return func(domain.Room, domain.Interval) int64 {
		return cents
	}
}
