package minstrel_ht

import "time"

// Clock provides the current monotonic time.
type Clock interface {
	Now() time.Time
}

// DefaultClock is a clock that returns the current monotonic time.
type DefaultClock struct {
	TimeFunc func() time.Time
}

// Now returns the current monotonic time.
func (c DefaultClock) Now() time.Time {
	if c.TimeFunc != nil {
		return c.TimeFunc()
	}
	return time.Now()
}
