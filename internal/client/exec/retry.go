package exec

import (
	"math"
	"time"
)

// RetryPolicy mirrors the shape of the teacher's S3 content store retry
// config: a bounded attempt count with exponential backoff between tries.
type RetryPolicy struct {
	MaxRetries        uint
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy matches §4.4: at most 3 retries of the whole compound.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:        3,
	InitialBackoff:    100 * time.Millisecond,
	MaxBackoff:        2 * time.Second,
	BackoffMultiplier: 2.0,
}

// Backoff returns the delay to wait before retry attempt N (0-indexed: the
// delay before the first retry, i.e. after the original attempt failed).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := float64(p.InitialBackoff) * math.Pow(p.BackoffMultiplier, float64(attempt))
	if d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	return time.Duration(d)
}
