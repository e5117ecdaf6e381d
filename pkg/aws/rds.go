package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/ricover/ricover/pkg/coverage"
)

// RDSClient fetches the database-side inventory: DB instances and active
// reserved DB instances.
type RDSClient struct {
	client *rds.Client
	region string
}

// NewRDSClient creates a new RDSClient from an already-loaded config
func NewRDSClient(cfg aws.Config) *RDSClient {
	return &RDSClient{
		client: rds.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

// GetDBInstances returns all RDS database instances in the region, sorted by
// identifier.
func (c *RDSClient) GetDBInstances(ctx context.Context) ([]coverage.Instance, error) {
	var instances []coverage.Instance

	paginator := rds.NewDescribeDBInstancesPaginator(c.client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying RDS instances: %w", err)
		}

		for _, db := range page.DBInstances {
			id := aws.ToString(db.DBInstanceIdentifier)
			instances = append(instances, coverage.Instance{
				ID:      id,
				Name:    id,
				Zone:    aws.ToString(db.AvailabilityZone),
				Region:  c.region,
				Type:    aws.ToString(db.DBInstanceClass),
				VPC:     true,
				Engine:  aws.ToString(db.Engine),
				MultiAZ: aws.ToBool(db.MultiAZ),
			})
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].ID < instances[j].ID
	})

	return instances, nil
}

// GetActiveReservations returns all active reserved DB instances in the
// region. Reserved DB instances carry no availability zone, so they are
// always region-scoped for matching purposes.
func (c *RDSClient) GetActiveReservations(ctx context.Context) ([]coverage.Reservation, error) {
	var raw []types.ReservedDBInstance

	paginator := rds.NewDescribeReservedDBInstancesPaginator(c.client, &rds.DescribeReservedDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying reserved DB instances: %w", err)
		}

		for _, ri := range page.ReservedDBInstances {
			if aws.ToString(ri.State) != "active" {
				continue
			}
			raw = append(raw, ri)
		}
	}

	// Only hit the offerings API when a reservation record lacks its
	// product description and we need the offering to resolve it.
	var products map[string]string
	for _, ri := range raw {
		if aws.ToString(ri.ProductDescription) == "" {
			lookup, err := c.getOfferingProducts(ctx)
			if err != nil {
				return nil, err
			}
			products = lookup
			break
		}
	}

	reservations := make([]coverage.Reservation, 0, len(raw))
	for _, ri := range raw {
		reservations = append(reservations, reservationFromRDS(ri, products, c.region))
	}

	return reservations, nil
}

// getOfferingProducts maps reserved DB instance offering IDs to their
// product descriptions.
func (c *RDSClient) getOfferingProducts(ctx context.Context) (map[string]string, error) {
	products := make(map[string]string)

	paginator := rds.NewDescribeReservedDBInstancesOfferingsPaginator(
		c.client, &rds.DescribeReservedDBInstancesOfferingsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying reserved DB instance offerings: %w", err)
		}

		for _, offering := range page.ReservedDBInstancesOfferings {
			id := aws.ToString(offering.ReservedDBInstancesOfferingId)
			if id != "" {
				products[id] = aws.ToString(offering.ProductDescription)
			}
		}
	}

	return products, nil
}

// reservationFromRDS converts an SDK reserved DB instance into a
// coverage.Reservation. A reservation whose product cannot be resolved keeps
// an empty engine and therefore never matches an instance; it will surface
// in the unused list instead of being dropped silently.
func reservationFromRDS(ri types.ReservedDBInstance, products map[string]string, region string) coverage.Reservation {
	product := aws.ToString(ri.ProductDescription)
	if product == "" {
		product = products[aws.ToString(ri.ReservedDBInstancesOfferingId)]
	}

	res := coverage.Reservation{
		ID:      aws.ToString(ri.ReservedDBInstanceId),
		Type:    aws.ToString(ri.DBInstanceClass),
		Scope:   coverage.ScopeRegion,
		Region:  region,
		Count:   int(aws.ToInt32(ri.DBInstanceCount)),
		VPC:     true,
		Engine:  normalizeProduct(product),
		MultiAZ: aws.ToBool(ri.MultiAZ),
	}

	duration := int64(aws.ToInt32(ri.Duration))
	if ri.StartTime != nil {
		res.Expiry = ri.StartTime.Add(time.Duration(duration) * time.Second)
	}

	hourly := 0.0
	for _, charge := range ri.RecurringCharges {
		if aws.ToString(charge.RecurringChargeFrequency) == "Hourly" {
			hourly += aws.ToFloat64(charge.RecurringChargeAmount)
		}
	}
	res.AnnualCost = AnnualizedCost(aws.ToFloat64(ri.FixedPrice), duration,
		hourly, aws.ToFloat64(ri.UsagePrice))

	return res
}

// normalizeProduct maps a reservation's product description to the engine
// name DescribeDBInstances reports. The two APIs use different terms for
// the same engine. Unknown products return empty and never match.
func normalizeProduct(product string) string {
	switch strings.ToLower(product) {
	case "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	case "mariadb":
		return "mariadb"
	case "aurora mysql":
		return "aurora-mysql"
	case "aurora postgresql":
		return "aurora-postgresql"
	default:
		return ""
	}
}
