package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// MaxDuration returns the largest of the provided durations,
// or zero when none are provided.
func MaxDuration(durations ...time.Duration) time.Duration {
	var max time.Duration
	for _, d := range durations {
		if d > max {
			max = d
		}
	}
	return max
}

// ExponentialBackoffDelay computes the delay to apply before retry number
// backoffCount (1-based). The base delay grows geometrically from
// BackoffParam.InitialDuration by BackoffParam.Multiplier, capped at
// BackoffParam.MaxDuration. A random jitter in [0, jitter) is added on top,
// drawn from the provided RNG so that callers control determinism.
func ExponentialBackoffDelay(
	backoffCount int,
	jitter time.Duration,
	rng rand.Rand,
	backoffParam BackoffParam,
) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}

	base := float64(backoffParam.InitialDuration()) *
		math.Pow(backoffParam.Multiplier(), float64(backoffCount-1))

	delay := time.Duration(base)
	if maxDuration := backoffParam.MaxDuration(); maxDuration > 0 && delay > maxDuration {
		delay = maxDuration
	}

	if jitter > 0 {
		delay += time.Duration(rng.Int63n(int64(jitter)))
	}

	if delay < 0 {
		return 0
	}
	return delay
}
