package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ricover/ricover/internal/config"
	"github.com/ricover/ricover/internal/models"
	"github.com/ricover/ricover/internal/version"
	"github.com/ricover/ricover/pkg/aws"
	"github.com/ricover/ricover/pkg/coverage"
	"github.com/ricover/ricover/pkg/formatter"
	"github.com/ricover/ricover/pkg/pricing"
	"github.com/ricover/ricover/pkg/utils"
)

var settings config.Settings

// startFamilySpinner creates and starts a spinner with a message for the given family
func startFamilySpinner(family string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Suffix = fmt.Sprintf(" Matching %s reservations ...", family)
	// FinalMSG is set later from the scan results
	s.Start()
	return s
}

func main() {
	var showVersion bool
	var showFamilyList bool

	rootCmd := &cobra.Command{
		Use:   "ricover",
		Short: "CLI tool to report reserved instance coverage",
		Long: `ricover matches running EC2 and RDS instances against purchased
reservations and reports which instances run uncovered on-demand
and which reservations sit unused.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Println(version.Get())
				return nil
			}

			if showFamilyList {
				printFamilyList()
				return nil
			}

			resolved, err := config.Resolve(settings)
			if err != nil {
				return err
			}
			if resolved.NoColor {
				color.NoColor = true
			}

			printCallerIdentity(resolved)

			failed := false
			for _, family := range resolved.Families {
				switch family {
				case "ec2":
					if !processCompute(resolved) {
						failed = true
					}
				case "rds":
					if !processDatabase(resolved) {
						failed = true
					}
				}
			}

			// Print combined pricing API statistics once after all families are processed
			formatter.PrintPricingAPIStats(os.Stdout)

			if failed {
				return fmt.Errorf("one or more scans produced no results due to errors")
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
	rootCmd.Flags().BoolVarP(&showFamilyList, "list-families", "l", false, "List supported resource families")

	rootCmd.Flags().StringSliceVarP(&settings.Regions, "regions", "r", nil,
		fmt.Sprintf("AWS regions to check (comma separated, default: %s)", utils.GetDefaultRegion()))
	rootCmd.Flags().StringSliceVarP(&settings.Families, "families", "f", nil,
		"Resource families to check (comma separated, default: ec2,rds)")
	rootCmd.Flags().StringVar(&settings.Profile, "profile", "",
		"AWS shared config profile to use")
	rootCmd.Flags().BoolVar(&settings.NoColor, "no-color", false,
		"Disable colored output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// printFamilyList shows the supported families with their descriptions
func printFamilyList() {
	fmt.Println("Supported families:")

	var families []string
	for family := range config.FamilyDescriptions {
		families = append(families, family)
	}
	sort.Strings(families)

	for _, family := range families {
		fmt.Printf("  %-6s - %s (default)\n", family, config.FamilyDescriptions[family])
	}

	fmt.Println("\nExample usage:")
	fmt.Printf("  %s --families %s\n", os.Args[0], strings.Join(families, ","))
}

// printCallerIdentity shows which account and principal the scan runs as.
// Identity lookup failures are not fatal; the per-region fetches will
// surface real credential problems on their own.
func printCallerIdentity(settings config.Settings) {
	cfg, err := aws.LoadConfig(context.TODO(), settings.Profile, settings.Regions[0])
	if err != nil {
		fmt.Printf("Warning: could not load AWS config: %v\n", err)
		return
	}

	identity, err := aws.GetCallerIdentity(context.TODO(), cfg)
	if err != nil {
		fmt.Printf("Warning: could not resolve caller identity: %v\n", err)
		return
	}

	fmt.Printf("Account: %s (%s)\n", identity.Account, identity.Arn)
	fmt.Printf("Regions: %s\n\n", strings.Join(settings.Regions, ", "))
}

// processCompute matches EC2 instances against reserved instances.
// Returns false when every region errored and there is nothing to report.
func processCompute(settings config.Settings) bool {
	fmt.Println("Starting EC2 coverage scan ...")
	scanStartTime := time.Now()

	s := startFamilySpinner("EC2")

	// Slice to store results
	results := make([]struct {
		result coverage.Result
		events []models.InstanceEventInfo
		err    error
		region string
	}, len(settings.Regions))

	// Process each region in parallel
	var wg sync.WaitGroup
	for i, region := range settings.Regions {
		wg.Add(1)
		go func(idx int, r string) {
			defer wg.Done()
			results[idx].region = r

			cfg, err := aws.LoadConfig(context.TODO(), settings.Profile, r)
			if err != nil {
				results[idx].err = err
				return
			}
			client := aws.NewEC2Client(cfg)

			instances, err := client.GetRunningInstances(context.TODO())
			if err != nil {
				results[idx].err = err
				return
			}

			reservations, err := client.GetActiveReservations(context.TODO())
			if err != nil {
				results[idx].err = err
				return
			}

			result, err := coverage.Match(instances, reservations)
			if err != nil {
				results[idx].err = err
				return
			}
			results[idx].result = result

			// Scheduled events are advisory; a failure here should not
			// discard an otherwise complete coverage result
			events, err := client.GetScheduledEvents(context.TODO())
			if err != nil {
				fmt.Printf("Warning: could not fetch scheduled events in %s: %v\n", r, err)
			}
			results[idx].events = events
		}(i, region)
	}

	wg.Wait()

	scanDuration := time.Since(scanStartTime)

	// Merge per-region results into one report
	report := models.CoverageReport{
		Family:   models.FamilyCompute,
		Events:   make(map[string][]models.InstanceEventInfo),
		OnDemand: make(map[string]models.EstimatedCost),
	}
	succeeded := 0
	for _, result := range results {
		if result.err != nil {
			continue
		}
		succeeded++
		report.Result.Assignments = append(report.Result.Assignments, result.result.Assignments...)
		report.Result.Unused = append(report.Result.Unused, result.result.Unused...)
		for _, event := range result.events {
			report.Events[event.InstanceID] = append(report.Events[event.InstanceID], event)
		}
	}

	s.FinalMSG = fmt.Sprintf("✓ [%d instances, %d unused reservations] EC2 coverage analyzed - Completed in %.2f seconds\n",
		len(report.Result.Assignments), len(report.Result.Unused), scanDuration.Seconds())
	s.Stop()

	for _, result := range results {
		if result.err != nil {
			fmt.Printf("Error in region %s: %v\n", result.region, result.err)
		}
	}

	// Estimate on-demand spend for instances no reservation covered
	for _, a := range report.Result.Assignments {
		if a.Covered() {
			continue
		}
		monthly, source := pricing.CalculateMonthlyCostWithSource(a.Instance.Type, a.Instance.Region)
		report.OnDemand[a.Instance.ID] = models.EstimatedCost{Monthly: monthly, Source: source}
	}

	// Display API init message if any
	if msg := pricing.GetInitMessage(); msg != "" {
		fmt.Println(msg)
	}

	formatter.PrintComputeReport(os.Stdout, report, time.Now())
	formatter.PrintCoverageSummary(os.Stdout, report)
	formatter.PrintReportMeta(os.Stdout, scanStartTime, scanDuration)

	return succeeded > 0
}

// processDatabase matches RDS instances against reserved DB instances.
// Returns false when every region errored and there is nothing to report.
func processDatabase(settings config.Settings) bool {
	fmt.Println("Starting RDS coverage scan ...")
	scanStartTime := time.Now()

	s := startFamilySpinner("RDS")

	// Slice to store results
	results := make([]struct {
		result coverage.Result
		err    error
		region string
	}, len(settings.Regions))

	// Process each region in parallel
	var wg sync.WaitGroup
	for i, region := range settings.Regions {
		wg.Add(1)
		go func(idx int, r string) {
			defer wg.Done()
			results[idx].region = r

			cfg, err := aws.LoadConfig(context.TODO(), settings.Profile, r)
			if err != nil {
				results[idx].err = err
				return
			}
			client := aws.NewRDSClient(cfg)

			instances, err := client.GetDBInstances(context.TODO())
			if err != nil {
				results[idx].err = err
				return
			}

			reservations, err := client.GetActiveReservations(context.TODO())
			if err != nil {
				results[idx].err = err
				return
			}

			result, err := coverage.Match(instances, reservations)
			if err != nil {
				results[idx].err = err
				return
			}
			results[idx].result = result
		}(i, region)
	}

	wg.Wait()

	scanDuration := time.Since(scanStartTime)

	// Merge per-region results into one report
	report := models.CoverageReport{Family: models.FamilyDatabase}
	succeeded := 0
	for _, result := range results {
		if result.err != nil {
			continue
		}
		succeeded++
		report.Result.Assignments = append(report.Result.Assignments, result.result.Assignments...)
		report.Result.Unused = append(report.Result.Unused, result.result.Unused...)
	}

	s.FinalMSG = fmt.Sprintf("✓ [%d instances, %d unused reservations] RDS coverage analyzed - Completed in %.2f seconds\n",
		len(report.Result.Assignments), len(report.Result.Unused), scanDuration.Seconds())
	s.Stop()

	for _, result := range results {
		if result.err != nil {
			fmt.Printf("Error in region %s: %v\n", result.region, result.err)
		}
	}

	formatter.PrintDatabaseReport(os.Stdout, report, time.Now())
	formatter.PrintCoverageSummary(os.Stdout, report)
	formatter.PrintReportMeta(os.Stdout, scanStartTime, scanDuration)

	return succeeded > 0
}
