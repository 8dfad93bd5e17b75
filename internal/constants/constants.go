// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Layout constants
const (
	// DefaultColumns is the column count used when a request does not provide a valid one
	DefaultColumns = 1
)

// Watch constants
const (
	// DefaultWatchQuietPeriod is how long an inbox must stay unchanged before a batch is built
	DefaultWatchQuietPeriod = 2 * time.Second
)
