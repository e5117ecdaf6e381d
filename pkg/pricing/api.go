package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/briandowns/spinner"
)

// AWS pricing client implementation
var (
	// PricingClient is the AWS Pricing API client
	PricingClient *pricing.Client

	// PricingInitOnce ensures the client is initialized only once
	PricingInitOnce sync.Once

	// Spinners for different services
	pricingSpinners = make(map[string]*spinner.Spinner)

	// InitMessage stores the API initialization message to be displayed after spinners
	InitMessage string
)

// InitPricingClient initializes the AWS pricing client.
// The Pricing API is only served from us-east-1 and ap-south-1.
func InitPricingClient() {
	pricingRegion := "us-east-1"
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(pricingRegion))
	if err != nil {
		InitMessage = fmt.Sprintf("Error loading AWS config for pricing API: %v. On-demand estimates will be unavailable.", err)
		return
	}

	PricingClient = pricing.NewFromConfig(cfg)
	InitMessage = fmt.Sprintf("AWS Pricing API initialized in %s region", pricingRegion)
}

// GetInitMessage returns the initialization message and clears it
func GetInitMessage() string {
	msg := InitMessage
	InitMessage = ""
	return msg
}

// GetPricingSpinner returns the spinner for a specific service
func GetPricingSpinner(service string) *spinner.Spinner {
	if s, exists := pricingSpinners[service]; exists {
		return s
	}
	if PricingClient == nil {
		return nil
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" Retrieving %s pricing information", service)
	s.Color("green")
	pricingSpinners[service] = s
	return s
}

// StartServiceSpinner starts the spinner for a service with appropriate text
func StartServiceSpinner(service, resourceType, region string) {
	spinner := GetPricingSpinner(service)
	if spinner != nil {
		spinner.Suffix = fmt.Sprintf(" %s in %s", resourceType, region)
		spinner.Start()
	}
}

// StopServiceSpinner stops the spinner for a service
func StopServiceSpinner(service string) {
	if spinner, exists := pricingSpinners[service]; exists {
		spinner.Stop()
	}
}

// GetPriceFromAPI is a generic function to get pricing data from AWS API
func GetPriceFromAPI(ctx context.Context, serviceCode string, filters []types.Filter, service, resourceType, region string) (string, error) {
	// Ensure client is initialized
	PricingInitOnce.Do(InitPricingClient)

	if PricingClient == nil {
		return "", fmt.Errorf("AWS pricing client not initialized")
	}

	// Start spinner
	StartServiceSpinner(service, resourceType, GetRegionDescriptiveName(region))
	defer StopServiceSpinner(service)

	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(1),
	}

	resp, err := PricingClient.GetProducts(ctx, input)
	if err != nil {
		return "", fmt.Errorf("error calling AWS Pricing API: %w", err)
	}

	if len(resp.PriceList) == 0 {
		return "", fmt.Errorf("no pricing found for %s in region %s", resourceType, region)
	}

	return resp.PriceList[0], nil
}
