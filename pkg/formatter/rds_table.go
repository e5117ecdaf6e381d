package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ricover/ricover/internal/models"
)

// PrintDatabaseReport prints the RDS coverage table and the unused
// reservation list
func PrintDatabaseReport(w io.Writer, report models.CoverageReport, now time.Time) {
	fmt.Fprintln(w, "## RDS instances")
	if len(report.Result.Assignments) == 0 {
		fmt.Fprintln(w, "No database instances found.")
	} else {
		printDatabaseInstances(w, report, now)
	}

	printUnusedReservations(w, report.Result.Unused, now)
}

func printDatabaseInstances(w io.Writer, report models.CoverageReport, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tZONE\tCLASS\tENGINE\tMULTI-AZ\tSTATUS\tRESERVATION\tDAYS LEFT\tCOST/YR")

	for _, a := range report.Result.Assignments {
		multiAZ := "single"
		if a.Instance.MultiAZ {
			multiAZ = "multi-az"
		}

		reservation, daysLeft, costPerYear := "-", "-", "-"
		if a.Covered() {
			reservation = shortID(a.Reservation.ID)
			daysLeft = fmt.Sprintf("%d", a.Reservation.DaysLeft(now))
			costPerYear = money(a.Reservation.AnnualCost)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Instance.ID,
			a.Instance.Zone,
			a.Instance.Type,
			a.Instance.Engine,
			multiAZ,
			statusCell(a),
			reservation,
			daysLeft,
			costPerYear,
		)
	}

	tw.Flush()
}
