package clock

import (
	"sync"
	"time"
)

// Clock lets session timing be driven from tests.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) Since(t time.Time) time.Duration {
	return time.Since(t)
}

type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Manual) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *Manual) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
