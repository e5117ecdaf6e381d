package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/ricover/ricover/internal/models"
	"github.com/ricover/ricover/pkg/coverage"
)

var (
	coveredColor   = color.New(color.FgGreen).SprintFunc()
	uncoveredColor = color.New(color.FgRed).SprintFunc()
	eventColor     = color.New(color.FgYellow).SprintFunc()
)

// PrintReportMeta prints the scan timestamp and duration
func PrintReportMeta(w io.Writer, scanStartTime time.Time, scanDuration time.Duration) {
	fmt.Fprintf(w, "Scan completed at %s (took %.2fs)\n",
		scanStartTime.Format("2006-01-02 15:04:05"),
		scanDuration.Seconds())
}

// shortID trims a reservation ID to its first segment for display
func shortID(id string) string {
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i] + "..."
	}
	return id
}

// statusCell renders the STATUS column for an assignment. Covered rows show
// which unit of the reservation the instance consumed.
func statusCell(a coverage.Assignment) string {
	if !a.Covered() {
		return uncoveredColor("NOT COVERED")
	}
	if a.Reservation.Count > 1 {
		return coveredColor(fmt.Sprintf("covered (%d of %d)", a.Slot, a.Reservation.Count))
	}
	return coveredColor("covered")
}

// placement renders where a reservation applies
func placement(res coverage.Reservation) string {
	if res.Scope == coverage.ScopeRegion {
		return "(region)"
	}
	return res.Zone
}

// money formats a dollar amount with thousands separators
func money(amount float64) string {
	return "$" + humanize.CommafWithDigits(amount, 0)
}

// printUnusedReservations prints the reservations with no matched instances,
// or "(none)" when everything is at least partially consumed
func printUnusedReservations(w io.Writer, unused []coverage.Reservation, now time.Time) {
	fmt.Fprintln(w, "\n## Unused reservations")
	if len(unused) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "RESERVATION\tTYPE\tPLACEMENT\tCOUNT\tDAYS LEFT\tCOST/YR")
	for _, res := range unused {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(res.ID),
			res.Type,
			placement(res),
			uncoveredColor(fmt.Sprintf("x%d", res.Count)),
			res.DaysLeft(now),
			money(res.AnnualCost),
		)
	}
	tw.Flush()
}

// PrintCoverageSummary prints per-family coverage counts and spend totals
func PrintCoverageSummary(w io.Writer, report models.CoverageReport) {
	total := len(report.Result.Assignments)
	if total == 0 {
		return
	}

	var reservedSpend float64
	seen := make(map[string]bool)
	for _, a := range report.Result.Assignments {
		if a.Covered() && !seen[a.Reservation.ID] {
			seen[a.Reservation.ID] = true
			reservedSpend += a.Reservation.AnnualCost
		}
	}

	var onDemandMonthly float64
	for _, est := range report.OnDemand {
		onDemandMonthly += est.Monthly
	}

	fmt.Fprintf(w, "\n## %s coverage summary\n", strings.ToUpper(string(report.Family)))

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Instances\t%d\n", total)
	fmt.Fprintf(tw, "Covered\t%d\n", report.CoveredCount())
	fmt.Fprintf(tw, "Not covered\t%d\n", report.UncoveredCount())
	fmt.Fprintf(tw, "Unused reservations\t%d\n", len(report.Result.Unused))
	fmt.Fprintf(tw, "Annual spend on matched reservations\t%s\n", money(reservedSpend))
	if onDemandMonthly > 0 {
		fmt.Fprintf(tw, "Est. on-demand spend of uncovered instances\t%s/mo\n", money(onDemandMonthly))
	}
	tw.Flush()
}
