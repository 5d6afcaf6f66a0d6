package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/intern-ledger/internal/domain"
)

// Clock supplies the current instant and calendar day.
type Clock interface {
	Now() time.Time
	Today() domain.Date
}

// SystemClock reads the wall clock. Today is evaluated in Location, or the
// local zone when Location is nil.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current instant.
func (c SystemClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}

// Today returns the current calendar day.
func (c SystemClock) Today() domain.Date {
	return domain.DateOf(c.Now())
}

func defaultClock(clock Clock) Clock {
	if clock != nil {
		return clock
	}
	return SystemClock{}
}

func defaultIDGenerator(idGenerator func() string) func() string {
	if idGenerator != nil {
		return idGenerator
	}
	return uuid.NewString
}
