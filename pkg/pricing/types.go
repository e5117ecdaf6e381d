package pricing

import (
	"sync"
)

// PricingSource represents the source of pricing information
type PricingSource string

const (
	// PricingSourceAPI indicates pricing data came from AWS API
	PricingSourceAPI PricingSource = "API"

	// PricingSourceCache indicates pricing data came from cache
	PricingSourceCache PricingSource = "Cache"

	// PricingSourceNA indicates pricing data is not available
	PricingSourceNA PricingSource = "N/A"
)

// Stats tracking for pricing API calls
var (
	// PricingAPIStats tracks API call statistics by service and region
	PricingAPIStats = make(map[string]map[string]map[string]int) // service -> region -> {success, failure, cache}

	// PricingAPIStatsLock protects the stats map from concurrent access
	PricingAPIStatsLock sync.RWMutex
)

// EC2 on-demand price cache, keyed by region:instanceType
var (
	// EC2PricingCache caches EC2 instance pricing data
	EC2PricingCache = make(map[string]float64)

	// EC2PricingCacheLock protects the EC2 cache from concurrent access
	EC2PricingCacheLock sync.RWMutex
)
