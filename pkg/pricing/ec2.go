package pricing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// GetInstanceHourlyPriceWithSource returns the on-demand hourly price for an
// EC2 instance and the source of the pricing
func GetInstanceHourlyPriceWithSource(instanceType, region string) (float64, string) {
	PricingInitOnce.Do(InitPricingClient)

	cacheKey := fmt.Sprintf("%s:%s", region, instanceType)

	EC2PricingCacheLock.RLock()
	if price, exists := EC2PricingCache[cacheKey]; exists {
		EC2PricingCacheLock.RUnlock()
		UpdateCacheHitStats("EC2", region)
		return price, string(PricingSourceCache)
	}
	EC2PricingCacheLock.RUnlock()

	if PricingClient != nil {
		price, err := getEC2PriceFromAPI(instanceType, region)
		if err == nil {
			UpdateAPISuccessStats("EC2", region)

			EC2PricingCacheLock.Lock()
			EC2PricingCache[cacheKey] = price
			EC2PricingCacheLock.Unlock()

			return price, string(PricingSourceAPI)
		}

		log.Printf("Error getting price from API: %v for %s in %s.", err, instanceType, region)
	}

	UpdateAPIFailureStats("EC2", region)

	// No fallback price list; the report shows N/A instead of a guess
	return 0, string(PricingSourceNA)
}

// getEC2PriceFromAPI retrieves EC2 instance pricing from the AWS Pricing API
func getEC2PriceFromAPI(instanceType, region string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Filters target Linux on-demand shared-tenancy pricing
	filters := []types.Filter{
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("instanceType"),
			Value: aws.String(instanceType),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("location"),
			Value: aws.String(GetRegionDescriptiveName(region)),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("operatingSystem"),
			Value: aws.String("Linux"),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("tenancy"),
			Value: aws.String("Shared"),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("preInstalledSw"),
			Value: aws.String("NA"),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("capacitystatus"),
			Value: aws.String("Used"),
		},
	}

	priceJSON, err := GetPriceFromAPI(ctx, "AmazonEC2", filters, "EC2", instanceType, region)
	if err != nil {
		return 0, err
	}

	return ExtractOnDemandPrice(priceJSON)
}

// CalculateMonthlyCostWithSource returns the estimated on-demand monthly cost
// for an instance and the source of the pricing
func CalculateMonthlyCostWithSource(instanceType, region string) (float64, string) {
	hourlyPrice, source := GetInstanceHourlyPriceWithSource(instanceType, region)

	if source == string(PricingSourceNA) {
		return 0, string(PricingSourceNA)
	}

	// 730 hours per month (365 days / 12 months * 24 hours)
	return hourlyPrice * 730, source
}

// CalculateMonthlyCost returns the estimated on-demand monthly cost for an instance
func CalculateMonthlyCost(instanceType, region string) float64 {
	monthlyCost, _ := CalculateMonthlyCostWithSource(instanceType, region)
	return monthlyCost
}
