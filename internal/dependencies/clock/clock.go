package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock, reporting times in a fixed location
type RealClock struct {
	loc *time.Location
}

// New creates a RealClock in the server's local time zone
func New() *RealClock {
	return NewInLocation(time.Local)
}

// NewInLocation creates a RealClock whose Now is expressed in loc.
// Calendar-day comparisons (daily check-ins) are made in this location.
func NewInLocation(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.Local
	}
	return &RealClock{loc: loc}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the location used by Now
func (c *RealClock) Location() *time.Location {
	return c.loc
}
