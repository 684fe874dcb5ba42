package fetch

import (
	"math"
	"time"
)

// DefaultMaxRetries is the retry ceiling used when none is configured.
const DefaultMaxRetries = 3

// RetryPolicy controls how a Fetcher retries failed attempts.
//
// A Fetcher makes at most MaxRetries+1 attempts. Between attempts it waits
// Delay(n), where n counts retries already made (starting at 0).
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Cooldown is the wait before the first retry. Zero retries immediately.
	Cooldown time.Duration

	// Exponent multiplies the cooldown for each further retry.
	// Values below 1 are treated as 1 (constant cooldown).
	Exponent float64

	// AttemptTimeout bounds a single attempt. Zero means no per-attempt
	// timeout beyond the caller's context.
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy retries three times with no delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		Exponent:   1,
	}
}

// Delay returns the wait before retry n (0-based).
func (p RetryPolicy) Delay(n int) time.Duration {
	if p.Cooldown <= 0 {
		return 0
	}
	exp := p.Exponent
	if exp < 1 {
		exp = 1
	}
	return time.Duration(float64(p.Cooldown) * math.Pow(exp, float64(n)))
}
