package domain

import (
	"fmt"
	"math"
)

// maxAmount is the largest magnitude whose value in cents still fits in an int64.
const maxAmount = float64(math.MaxInt64 / 100)

// AmountInRange reports whether amount is finite and converts to cents without overflow.
func AmountInRange(amount float64) bool {
	return !math.IsNaN(amount) && math.Abs(amount) < maxAmount
}

// CentsFromAmount converts a decimal amount such as 49.99 to integer cents.
func CentsFromAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
