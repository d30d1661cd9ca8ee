// FILE: nofus/timing.go
package nofus

import "time"

// Timing behaviour of file watching.
const (
	ShutdownTimeout      = 100 * time.Millisecond // Graceful watcher termination window
	MinDebounce          = 10 * time.Millisecond  // Floor for change coalescence
	DefaultDebounce      = 500 * time.Millisecond // File change coalescence period
	DefaultReloadTimeout = 5 * time.Second        // Maximum duration for reload operations
)

const (
	// subscriberBuffer is the capacity of each Watch channel.
	subscriberBuffer = 10

	// debounceSettleMultiplier is how many debounce periods a caller should
	// allow for a change to be picked up and reloaded.
	debounceSettleMultiplier = 3
)
