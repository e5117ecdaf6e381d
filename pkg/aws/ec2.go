package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/ricover/ricover/internal/models"
	"github.com/ricover/ricover/pkg/coverage"
	"github.com/ricover/ricover/pkg/utils"
)

// EC2Client fetches the compute-side inventory: running instances, active
// reserved instances, and upcoming scheduled events.
type EC2Client struct {
	client *ec2.Client
	region string
}

// NewEC2Client creates a new EC2Client from an already-loaded config
func NewEC2Client(cfg aws.Config) *EC2Client {
	return &EC2Client{
		client: ec2.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

// GetRunningInstances returns all running on-demand EC2 instances in the
// region, sorted by Name tag. Spot instances are skipped since reservations
// cannot cover them.
func (c *EC2Client) GetRunningInstances(ctx context.Context) ([]coverage.Instance, error) {
	filter := types.Filter{
		Name:   aws.String("instance-state-name"),
		Values: []string{"running"},
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{filter},
	}

	var instances []coverage.Instance
	paginator := ec2.NewDescribeInstancesPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying EC2 instances: %w", err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if instance.SpotInstanceRequestId != nil {
					continue
				}

				instances = append(instances, coverage.Instance{
					ID:     aws.ToString(instance.InstanceId),
					Name:   utils.GetName(instance.Tags),
					Zone:   aws.ToString(instance.Placement.AvailabilityZone),
					Region: c.region,
					Type:   string(instance.InstanceType),
					VPC:    instance.VpcId != nil,
				})
			}
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		if instances[i].Name != instances[j].Name {
			return instances[i].Name < instances[j].Name
		}
		return instances[i].ID < instances[j].ID
	})

	return instances, nil
}

// GetActiveReservations returns all active EC2 reserved instances in the region
func (c *EC2Client) GetActiveReservations(ctx context.Context) ([]coverage.Reservation, error) {
	input := &ec2.DescribeReservedInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("state"),
				Values: []string{"active"},
			},
		},
	}

	result, err := c.client.DescribeReservedInstances(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error querying EC2 reserved instances: %w", err)
	}

	reservations := make([]coverage.Reservation, 0, len(result.ReservedInstances))
	for _, ri := range result.ReservedInstances {
		res, err := reservationFromEC2(ri, c.region)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}

// reservationFromEC2 converts an SDK reserved instance record into a
// coverage.Reservation. All EC2 reservations have been VPC reservations
// since March 2022, so classic-network instances never match.
func reservationFromEC2(ri types.ReservedInstances, region string) (coverage.Reservation, error) {
	res := coverage.Reservation{
		ID:     aws.ToString(ri.ReservedInstancesId),
		Type:   string(ri.InstanceType),
		Region: region,
		Count:  int(aws.ToInt32(ri.InstanceCount)),
		VPC:    true,
	}

	switch ri.Scope {
	case types.ScopeAvailabilityZone:
		res.Scope = coverage.ScopeZone
		res.Zone = aws.ToString(ri.AvailabilityZone)
	case types.ScopeRegional:
		res.Scope = coverage.ScopeRegion
	default:
		return coverage.Reservation{}, fmt.Errorf("unknown scope %q for reservation %s", ri.Scope, res.ID)
	}

	duration := aws.ToInt64(ri.Duration)
	if ri.End != nil {
		res.Expiry = *ri.End
	} else if ri.Start != nil {
		res.Expiry = ri.Start.Add(time.Duration(duration) * time.Second)
	}

	hourly := 0.0
	for _, charge := range ri.RecurringCharges {
		if charge.Frequency == types.RecurringChargeFrequencyHourly {
			hourly += aws.ToFloat64(charge.Amount)
		}
	}
	res.AnnualCost = AnnualizedCost(float64(aws.ToFloat32(ri.FixedPrice)), duration,
		hourly, float64(aws.ToFloat32(ri.UsagePrice)))

	return res, nil
}

// GetScheduledEvents returns upcoming scheduled events (reboots, retirements)
// for instances in the region. Canceled and completed events are skipped.
func (c *EC2Client) GetScheduledEvents(ctx context.Context) ([]models.InstanceEventInfo, error) {
	var events []models.InstanceEventInfo

	paginator := ec2.NewDescribeInstanceStatusPaginator(c.client, &ec2.DescribeInstanceStatusInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying EC2 instance status: %w", err)
		}

		for _, status := range page.InstanceStatuses {
			for _, event := range status.Events {
				description := aws.ToString(event.Description)
				if strings.Contains(description, "[Canceled]") || strings.Contains(description, "[Completed]") {
					continue
				}

				info := models.InstanceEventInfo{
					InstanceID:  aws.ToString(status.InstanceId),
					Code:        string(event.Code),
					Description: description,
					NotBefore:   event.NotBefore,
				}
				if event.NotBefore != nil {
					info.DaysUntil = utils.DaysUntil(time.Now(), *event.NotBefore)
				}
				events = append(events, info)
			}
		}
	}

	return events, nil
}
