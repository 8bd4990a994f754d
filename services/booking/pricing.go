package booking

import (
	"time"

	"mentorlink/models"

	"github.com/shopspring/decimal"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// ComputePrice sums the session durations exactly and prices them at hourlyRate, which is
// expressed in the smallest currency unit. The price is rounded half-up to a whole unit.
func ComputePrice(hourlyRate decimal.Decimal, ranges []models.TimeRange) (durationHours decimal.Decimal, price decimal.Decimal) {
	nanos := decimal.Zero
	for _, r := range ranges {
		nanos = nanos.Add(decimal.NewFromInt(int64(r.Duration())))
	}
	durationHours = nanos.Div(nanosPerHour)
	price = hourlyRate.Mul(nanos).Div(nanosPerHour).Round(0)
	return durationHours, price
}
