package formatter

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/ricover/ricover/internal/models"
	"github.com/ricover/ricover/pkg/coverage"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Keep table assertions free of ANSI escape codes
	color.NoColor = true
}

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func computeReport() models.CoverageReport {
	res := coverage.Reservation{
		ID:         "abc123-rest",
		Type:       "t2.small",
		Scope:      coverage.ScopeZone,
		Zone:       "us-east-1a",
		Count:      2,
		VPC:        true,
		Expiry:     testNow.AddDate(0, 0, 90),
		AnnualCost: 450,
	}
	idle := coverage.Reservation{
		ID:         "idle456-rest",
		Type:       "m5.large",
		Scope:      coverage.ScopeRegion,
		Region:     "us-east-1",
		Count:      1,
		VPC:        true,
		Expiry:     testNow.AddDate(1, 0, 0),
		AnnualCost: 900,
	}

	return models.CoverageReport{
		Family: models.FamilyCompute,
		Result: coverage.Result{
			Assignments: []coverage.Assignment{
				{
					Instance: coverage.Instance{
						ID: "i-1", Name: "web-1", Zone: "us-east-1a",
						Type: "t2.small", VPC: true,
					},
					Reservation: &res,
					Slot:        1,
				},
				{
					Instance: coverage.Instance{
						ID: "i-2", Name: "worker-1", Zone: "us-east-1b",
						Type: "c5.xlarge", VPC: true,
					},
				},
			},
			Unused: []coverage.Reservation{idle},
		},
		OnDemand: map[string]models.EstimatedCost{
			"i-2": {Monthly: 124.1, Source: "API"},
		},
	}
}

func TestPrintComputeReport(t *testing.T) {
	var buf bytes.Buffer
	PrintComputeReport(&buf, computeReport(), testNow)
	out := buf.String()

	assert.Contains(t, out, "## EC2 instances")
	assert.Contains(t, out, "web-1")
	assert.Contains(t, out, "covered (1 of 2)")
	assert.Contains(t, out, "abc123...")
	assert.Contains(t, out, "NOT COVERED")
	assert.Contains(t, out, "$124.10")
	assert.Contains(t, out, "## Unused reservations")
	assert.Contains(t, out, "idle456...")
	assert.Contains(t, out, "(region)")
	assert.NotContains(t, out, "(none)")
}

func TestPrintComputeReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintComputeReport(&buf, models.CoverageReport{Family: models.FamilyCompute}, testNow)
	out := buf.String()

	assert.Contains(t, out, "No running instances found.")
	assert.Contains(t, out, "(none)")
}

func TestPrintComputeReportEvents(t *testing.T) {
	report := computeReport()
	notBefore := testNow.AddDate(0, 0, 12)
	report.Events = map[string][]models.InstanceEventInfo{
		"i-1": {
			{
				InstanceID:  "i-1",
				Code:        "system-reboot",
				Description: "scheduled reboot",
				NotBefore:   &notBefore,
				DaysUntil:   12,
			},
		},
	}

	var buf bytes.Buffer
	PrintComputeReport(&buf, report, testNow)
	out := buf.String()

	assert.Contains(t, out, "## Upcoming scheduled events")
	assert.Contains(t, out, "system-reboot")
	assert.Contains(t, out, "scheduled reboot")
}

func TestPrintDatabaseReport(t *testing.T) {
	res := coverage.Reservation{
		ID:         "mydbreservation",
		Type:       "db.m5.large",
		Scope:      coverage.ScopeRegion,
		Region:     "us-east-1",
		Count:      1,
		VPC:        true,
		Engine:     "postgres",
		MultiAZ:    true,
		Expiry:     testNow.AddDate(0, 6, 0),
		AnnualCost: 1200,
	}

	report := models.CoverageReport{
		Family: models.FamilyDatabase,
		Result: coverage.Result{
			Assignments: []coverage.Assignment{
				{
					Instance: coverage.Instance{
						ID: "orders-db", Name: "orders-db", Zone: "us-east-1a",
						Type: "db.m5.large", VPC: true, Engine: "postgres", MultiAZ: true,
					},
					Reservation: &res,
					Slot:        1,
				},
				{
					Instance: coverage.Instance{
						ID: "reports-db", Name: "reports-db", Zone: "us-east-1b",
						Type: "db.t3.medium", VPC: true, Engine: "mysql",
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	PrintDatabaseReport(&buf, report, testNow)
	out := buf.String()

	assert.Contains(t, out, "## RDS instances")
	assert.Contains(t, out, "orders-db")
	assert.Contains(t, out, "multi-az")
	assert.Contains(t, out, "mydbreservation")
	assert.Contains(t, out, "NOT COVERED")
	assert.Contains(t, out, "(none)")
}

func TestPrintCoverageSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintCoverageSummary(&buf, computeReport())
	out := buf.String()

	assert.Contains(t, out, "## EC2 coverage summary")
	assert.Contains(t, out, "Covered")
	assert.Contains(t, out, "Not covered")
	assert.Contains(t, out, "$450")
	assert.Contains(t, out, "$124/mo")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc123...", shortID("abc123-def-ghi"))
	assert.Equal(t, "plainid", shortID("plainid"))
}
