// Package config holds the engine-level tunables for access verification.
// Policy-level settings live on models.AccessPolicy; this package covers the
// knobs shared by every verification session.
package config

import "time"

// Engine configures the verification state machine and profile sourcing.
type Engine struct {
	// MaxRetries bounds how many times a failed checking episode is retried
	// before the session becomes terminally failed.
	MaxRetries int

	// RetryBackoff is the fixed delay between a failed episode and the next
	// checking attempt. The backoff is constant, not exponential.
	RetryBackoff time.Duration

	// ProfileWaitTimeout bounds how long a session waits for the profile
	// collaborator before verifying with whatever is available.
	ProfileWaitTimeout time.Duration
}

// DefaultEngine returns the engine defaults.
func DefaultEngine() Engine {
	return Engine{
		MaxRetries:         1,
		RetryBackoff:       2 * time.Second,
		ProfileWaitTimeout: 5 * time.Second,
	}
}
