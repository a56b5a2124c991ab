package cache

import "time"

// TTL constants for cached external data.
const (
	// Current price cache - short-lived, prices move constantly.
	TTLCurrentPrice = 10 * time.Minute
	// Exchange rates - stable enough to hold for an hour.
	TTLExchangeRate = time.Hour
)
