package parking

import (
	"fmt"
	"time"
)

// DefaultHourlyRate matches the rate the garage has charged since day one.
const DefaultHourlyRate int64 = 50

// PricingPolicy turns an entry/exit timestamp pair into a fee. It must be
// a pure function of its two inputs and return a non-negative fee for any
// entry <= exit. A policy that cannot honor that contract panics: a broken
// pricing rule is a wiring bug, not a runtime outcome.
type PricingPolicy interface {
	CalculateFee(entryTime, exitTime time.Time) int64
}

// HourlyPricing charges Rate per started hour, with a one-hour minimum.
type HourlyPricing struct {
	Rate int64
}

func NewHourlyPricing(rate int64) HourlyPricing {
	return HourlyPricing{Rate: rate}
}

func (p HourlyPricing) CalculateFee(entryTime, exitTime time.Time) int64 {
	if exitTime.Before(entryTime) {
		panic(fmt.Sprintf("pricing: exit time %s before entry time %s", exitTime.Format(time.RFC3339), entryTime.Format(time.RFC3339)))
	}

	elapsed := exitTime.Sub(entryTime)
	hours := int64(elapsed / time.Hour)
	if elapsed%time.Hour > 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}

	return hours * p.Rate
}
