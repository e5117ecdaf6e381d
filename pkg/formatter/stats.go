package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ricover/ricover/pkg/pricing"
)

// PrintPricingAPIStats prints the statistics of pricing API calls
func PrintPricingAPIStats(w io.Writer) {
	stats := pricing.GetAPIStats()

	if len(stats) == 0 {
		return
	}

	fmt.Fprintln(w, "\n## AWS Pricing API Call Statistics")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tREGION\tAPI CALLS\tSUCCESS\tFAILURE\tCACHE HITS\tSUCCESS RATE")

	for service, regions := range stats {
		for region, statValues := range regions {
			success := statValues["success"]
			failure := statValues["failure"]
			cache := statValues["cache"]
			total := success + failure

			successRate := 0.0
			if total > 0 {
				successRate = float64(success) / float64(total) * 100.0
			}

			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
				service,
				region,
				total,
				success,
				failure,
				cache,
				successRate,
			)
		}
	}

	tw.Flush()
}
