package marketplace

import "errors"

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("marketplace: platform not configured")
	ErrPlatformUnavailable     = errors.New("marketplace: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("marketplace: platform request failed")
	ErrPlatformInvalidResponse = errors.New("marketplace: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("marketplace: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("marketplace: platform rate limited")

	// Mapping errors
	ErrShippingMethodUnmapped = errors.New("marketplace: shipping method could not be mapped")
	ErrProductNotResolved     = errors.New("marketplace: product could not be resolved")

	// Reconciliation errors
	ErrReconciliationSkipped = errors.New("marketplace: reconciliation already applied")
	ErrOrderNotLinked        = errors.New("marketplace: order has no linked remote order")
)
