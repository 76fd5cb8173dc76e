// Package clock provides the time source used for date resolution and todo timestamps.
package clock

import "time"

// Clock returns the current instant
type Clock interface {
	Now() time.Time
}

// System is the wall clock
type System struct{}

// Now returns time.Now()
func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant
type Fixed time.Time

// Now returns the fixed instant
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Func adapts a plain function to a Clock
type Func func() time.Time

// Now calls f
func (f Func) Now() time.Time {
	return f()
}
