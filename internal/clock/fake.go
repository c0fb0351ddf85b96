package clock

import "time"

// FakeClock is a Clock pinned to a fixed instant. Tests use it to make
// voucher timestamps deterministic and to step the reorder sweep.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward. Not safe for concurrent use; tests
// advance between operations, not during them.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
