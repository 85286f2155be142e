package clock

import "time"

// Clock provides time to the application. Check-in and checkout timestamps
// flow through it so tests can control elapsed-hour computations.
type Clock interface {
	Now() time.Time
}
