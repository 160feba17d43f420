// Package lifecycle holds shared constants for component start/stop handling.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup and shutdown of deliveries and infra.
const DefaultTimeout = 15 * time.Second
