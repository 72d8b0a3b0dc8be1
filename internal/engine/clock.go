package engine

// Clock tracks the state machine's ordinal position (spec §4.4.1
// set_current_pos). One Machine is strictly single-threaded (spec §5),
// so unlike the teacher's atomic logical clock this needs no
// synchronization.
type Clock struct {
	current int64
}

// NewClock returns a clock starting at ordinal position 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock starting at a given ordinal position.
func NewClockAt(pos int64) *Clock {
	return &Clock{current: pos}
}

// Current returns the clock's current ordinal position.
func (c *Clock) Current() int64 {
	return c.current
}

// Advance moves the clock to pos. Fails if pos < current (spec §7 kind
// 1: input order violation, fatal for the document, recoverable by
// clear()).
func (c *Clock) Advance(pos int64) error {
	if pos < c.current {
		return NewOrderViolation(pos, c.current)
	}
	c.current = pos
	return nil
}

// Reset returns the clock to ordinal position 0 (used by clear()).
func (c *Clock) Reset() {
	c.current = 0
}
