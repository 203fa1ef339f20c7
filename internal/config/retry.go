package config

import (
	"github.com/parkscout/parkscout/pkg/retry"
	"github.com/parkscout/parkscout/pkg/timeutil"
)

// RetryParam assembles the retry settings every fetch-capable component
// shares, so callers don't rebuild them field by field.
func (c Config) RetryParam() retry.RetryParam {
	return retry.NewRetryParam(
		c.baseDelay,
		c.jitter,
		c.randomSeed,
		c.maxAttempt,
		timeutil.NewBackoffParam(
			c.backoffInitialDuration,
			c.backoffMultiplier,
			c.backoffMaxDuration,
		),
	)
}
