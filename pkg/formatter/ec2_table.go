package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ricover/ricover/internal/models"
)

// PrintComputeReport prints the EC2 coverage table, the unused reservation
// list, and any upcoming scheduled events
func PrintComputeReport(w io.Writer, report models.CoverageReport, now time.Time) {
	fmt.Fprintln(w, "## EC2 instances")
	if len(report.Result.Assignments) == 0 {
		fmt.Fprintln(w, "No running instances found.")
	} else {
		printComputeInstances(w, report, now)
	}

	printUnusedReservations(w, report.Result.Unused, now)
	printScheduledEvents(w, report)
}

func printComputeInstances(w io.Writer, report models.CoverageReport, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tINSTANCE ID\tZONE\tNETWORK\tTYPE\tSTATUS\tRESERVATION\tDAYS LEFT\tCOST/YR\tON-DEMAND/MO")

	for _, a := range report.Result.Assignments {
		name := a.Instance.Name
		if name == "" {
			name = "<unnamed>"
		}

		network := "classic"
		if a.Instance.VPC {
			network = "vpc"
		}

		reservation, daysLeft, costPerYear := "-", "-", "-"
		onDemand := "-"
		if a.Covered() {
			reservation = shortID(a.Reservation.ID)
			daysLeft = fmt.Sprintf("%d", a.Reservation.DaysLeft(now))
			costPerYear = money(a.Reservation.AnnualCost)
		} else if est, ok := report.OnDemand[a.Instance.ID]; ok {
			if est.Source == "N/A" {
				onDemand = "N/A"
			} else {
				onDemand = fmt.Sprintf("$%.2f", est.Monthly)
			}
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			a.Instance.ID,
			a.Instance.Zone,
			network,
			a.Instance.Type,
			statusCell(a),
			reservation,
			daysLeft,
			costPerYear,
			onDemand,
		)
	}

	tw.Flush()
}

// printScheduledEvents prints upcoming service events affecting instances
// in the report, in assignment order
func printScheduledEvents(w io.Writer, report models.CoverageReport) {
	if len(report.Events) == 0 {
		return
	}

	fmt.Fprintln(w, "\n## Upcoming scheduled events")
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE ID\tEVENT\tDESCRIPTION\tWHEN")

	for _, a := range report.Result.Assignments {
		for _, event := range report.Events[a.Instance.ID] {
			when := "unknown"
			if event.NotBefore != nil {
				when = humanize.Time(*event.NotBefore)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				event.InstanceID,
				eventColor(event.Code),
				event.Description,
				when,
			)
		}
	}

	tw.Flush()
}
