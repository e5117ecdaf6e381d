package aws

const (
	yearSeconds = 365 * 86400
	yearHours   = 365 * 24
)

// AnnualizedCost converts a reservation's pricing terms into a yearly figure:
// the upfront fixed price amortized over the reservation term, plus hourly
// recurring charges and the usage price projected over a year.
func AnnualizedCost(fixedPrice float64, durationSeconds int64, hourlyCharges, usagePrice float64) float64 {
	annual := 0.0
	if durationSeconds > 0 {
		annual = fixedPrice * yearSeconds / float64(durationSeconds)
	}
	annual += hourlyCharges * yearHours
	annual += usagePrice * yearHours
	return annual
}
