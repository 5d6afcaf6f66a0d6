package testfixtures

import (
	"sync"
	"time"

	"github.com/example/intern-ledger/internal/domain"
)

// Clock provides a controllable time source for tests. It satisfies
// application.Clock.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock initialised to the supplied time. When start is the
// zero value, the shared ReferenceTime is used.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// NewClockOn returns a clock set to noon UTC on day.
func NewClockOn(day domain.Date) *Clock {
	return NewClock(day.Time().Add(12 * time.Hour))
}

// Now returns the current instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Today returns the calendar day of the current instant, in the instant's
// own location.
func (c *Clock) Today() domain.Date {
	return domain.DateOf(c.Now())
}

// Set updates the clock to the provided time.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// SetDate moves the clock to day while keeping the time of day.
func (c *Clock) SetDate(day domain.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, m, s := c.current.Clock()
	c.current = time.Date(day.Time().Year(), day.Time().Month(), day.Time().Day(), h, m, s, c.current.Nanosecond(), c.current.Location())
}

// Advance moves the clock forward by the provided duration and returns the
// updated time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}
