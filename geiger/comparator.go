package geiger

// TiePolicy selects how the comparator resolves two exactly equal
// intervals.
type TiePolicy uint8

const (
	// TieEmitZero resolves an equal-interval window to a 0 bit. This is
	// the original firmware behavior; it carries a small documented bias
	// toward zeros that the debias transform redistributes.
	TieEmitZero TiePolicy = iota
	// TieResample discards an equal-interval window without emitting a
	// bit and collects four fresh pulses instead.
	TieResample
)

// Comparator turns pulse timestamps into bits. It buffers up to three
// timestamps of the current four-event window; the fourth timestamp
// resolves the window to a single bit and clears the buffer.
//
// Timestamps are microseconds in a uint32 that wraps at 2^32. All
// interval arithmetic is modular. Because the coarse and fine counters
// feeding a timestamp are advanced by independent interrupt sources, a
// capture can observe the fine counter just after it wrapped but before
// the coarse counter was incremented, producing a timestamp smaller than
// its predecessor. Push corrects this by adding one tick period to any
// timestamp that is numerically below the immediately preceding one in
// the same window.
//
// At the full 2^32 wrap (about 71.6 minutes of continuous counting) the
// less-than-predecessor test also fires and adds one spurious tick. The
// modular subtraction keeps cross-boundary intervals correct otherwise,
// so the residual error is bounded at one suspect bit per rollover.
type Comparator struct {
	tick   uint32
	tie    TiePolicy
	window [3]uint32
	n      int
}

// NewComparator returns a Comparator using the given tick period in
// microseconds (the amount added by the counter-race correction) and tie
// policy. A zero tickMicros selects the default 1000.
func NewComparator(tickMicros uint32, tie TiePolicy) *Comparator {
	if tickMicros == 0 {
		tickMicros = DefaultTickMicros
	}
	return &Comparator{tick: tickMicros, tie: tie}
}

// Push records one pulse timestamp. On the fourth timestamp of a window
// it returns the resolved bit (0 or 1) with done=true and clears the
// window. Under TieResample an equal-interval window is dropped and Push
// returns done=false. Earlier timestamps always return done=false.
func (c *Comparator) Push(t uint32) (bit byte, done bool) {
	if c.n > 0 && t < c.window[c.n-1] {
		t += c.tick
	}
	if c.n < 3 {
		c.window[c.n] = t
		c.n++
		return 0, false
	}

	a := c.window[1] - c.window[0]
	b := t - c.window[2]
	c.Reset()

	if a == b && c.tie == TieResample {
		return 0, false
	}
	if b > a {
		return 1, true
	}
	return 0, true
}

// Pending reports how many timestamps of the current window are buffered.
func (c *Comparator) Pending() int { return c.n }

// Reset clears any buffered timestamps.
func (c *Comparator) Reset() {
	c.window = [3]uint32{}
	c.n = 0
}
