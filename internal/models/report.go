package models

import (
	"github.com/ricover/ricover/pkg/coverage"
)

// Family identifies a resource family covered by the report.
type Family string

const (
	FamilyCompute  Family = "ec2"
	FamilyDatabase Family = "rds"
)

// EstimatedCost is an on-demand cost estimate for an uncovered instance.
// Source is "API", "Cache", or "N/A" depending on where the price came from.
type EstimatedCost struct {
	Monthly float64
	Source  string
}

// CoverageReport bundles everything the renderer needs for one family:
// the matcher output, scheduled events keyed by instance ID (EC2 only),
// and on-demand estimates for instances that ended up NOT COVERED.
type CoverageReport struct {
	Family   Family
	Result   coverage.Result
	Events   map[string][]InstanceEventInfo
	OnDemand map[string]EstimatedCost
}

// CoveredCount returns how many instances in the report are reservation-backed.
func (r CoverageReport) CoveredCount() int {
	n := 0
	for _, a := range r.Result.Assignments {
		if a.Covered() {
			n++
		}
	}
	return n
}

// UncoveredCount returns how many instances run purely on-demand.
func (r CoverageReport) UncoveredCount() int {
	return len(r.Result.Assignments) - r.CoveredCount()
}
