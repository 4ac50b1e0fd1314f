package geiger

import (
	"sync"
	"sync/atomic"
)

// Mode is the collection state shared between the pulse producer and the
// byte consumer.
type Mode uint8

const (
	// Idle discards all pulses and waits for a trigger.
	Idle Mode = iota
	// Collecting accepts pulses and assembles bits into the current byte.
	Collecting
	// ByteReady holds a completed byte for the consumer; pulses are
	// discarded until the consumer retrieves it and resumes collection.
	ByteReady
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	case ByteReady:
		return "byteready"
	}
	return "unknown"
}

// Defaults mirroring the reference hardware: 64 bytes per session and a
// 1 ms coarse tick.
const (
	DefaultSessionLength = 64
	DefaultTickMicros    = 1000
)

// Config fixes the generator's deployment-time parameters.
type Config struct {
	// SessionLength is the number of bytes emitted per session before the
	// terminator. Zero selects DefaultSessionLength.
	SessionLength int
	// Continuous restarts collection immediately after each session
	// instead of returning to Idle and waiting for a trigger.
	Continuous bool
	// TickMicros is the period of the coarse counter tick in
	// microseconds. Zero selects DefaultTickMicros.
	TickMicros uint32
	// Tie selects the equal-interval policy of the comparator.
	Tie TiePolicy
}

func (c Config) withDefaults() Config {
	if c.SessionLength <= 0 {
		c.SessionLength = DefaultSessionLength
	}
	if c.TickMicros == 0 {
		c.TickMicros = DefaultTickMicros
	}
	return c
}

// Generator is the core collection engine: timestamp capture, interval
// comparison and byte assembly behind the Idle/Collecting/ByteReady mode
// guard. Tick, Pulse and Trigger stand in for the three interrupt sources
// of the reference hardware and may each be called from any goroutine;
// Take and Resume belong to the single consumer.
//
// All state is fixed-size for the lifetime of the Generator and the pulse
// path allocates nothing. Tick touches only an atomic counter, so it is
// never delayed by the consumer, which the comparator's correctness
// depends on.
type Generator struct {
	cfg    Config
	coarse atomic.Uint32

	mu   sync.Mutex
	mode Mode
	comp *Comparator
	acc  byte
	mask byte

	ready chan struct{}
}

// NewGenerator returns an Idle generator with the given configuration.
func NewGenerator(cfg Config) *Generator {
	cfg = cfg.withDefaults()
	return &Generator{
		cfg:   cfg,
		comp:  NewComparator(cfg.TickMicros, cfg.Tie),
		mask:  0x01,
		ready: make(chan struct{}, 1),
	}
}

// TickMicros returns the configured coarse tick period in microseconds.
func (g *Generator) TickMicros() uint32 { return g.cfg.TickMicros }

// SessionLength returns the configured bytes-per-session count.
func (g *Generator) SessionLength() int { return g.cfg.SessionLength }

// Continuous reports whether sessions restart without a trigger.
func (g *Generator) Continuous() bool { return g.cfg.Continuous }

// Tick advances the coarse counter by one period. It is the periodic
// counterpart of the fine sub-tick counter sampled at each pulse edge.
func (g *Generator) Tick() {
	g.coarse.Add(1)
}

// Trigger requests the start of a session. It moves the generator from
// Idle to Collecting and reports whether it did so; while Collecting or
// ByteReady it is a no-op, which makes a bouncing physical trigger
// harmless.
func (g *Generator) Trigger() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != Idle {
		return false
	}
	g.mode = Collecting
	return true
}

// Pulse records one detector edge. fine is the sub-tick counter value
// sampled at the edge, before anything else, to keep capture jitter
// minimal; the coarse counter is read here, immediately after. Outside
// Collecting the event is discarded with no side effect, which excludes
// pulses that arrive before a trigger or during byte output and
// acknowledgment.
func (g *Generator) Pulse(fine uint16) {
	coarse := g.coarse.Load()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != Collecting {
		return
	}

	t := coarse*g.cfg.TickMicros + uint32(fine)
	bit, done := g.comp.Push(t)
	if !done {
		return
	}
	if bit != 0 {
		g.acc |= g.mask
	}
	if g.mask != 0x80 {
		g.mask <<= 1
		return
	}

	// Eighth bit: correct the byte, park it for the consumer and stop
	// accepting pulses until Resume.
	g.acc = Debias(g.acc)
	g.mask = 0x01
	g.mode = ByteReady
	select {
	case g.ready <- struct{}{}:
	default:
	}
}

// Mode returns the current collection state.
func (g *Generator) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Ready signals each Collecting-to-ByteReady transition. The channel has
// a one-element buffer so the producer never blocks on it.
func (g *Generator) Ready() <-chan struct{} {
	return g.ready
}

// Take returns the completed, debiased byte while the generator is in
// ByteReady. The generator stays in ByteReady, and keeps discarding
// pulses, until Resume is called; this is what keeps output and
// acknowledgment from overlapping a collection window.
func (g *Generator) Take() (byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ByteReady {
		return 0, false
	}
	return g.acc, true
}

// Resume ends the ByteReady phase after the consumer has disposed of the
// byte, clearing the accumulator and either restarting collection or
// going Idle. Outside ByteReady it is a no-op.
func (g *Generator) Resume(toIdle bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ByteReady {
		return
	}
	g.acc = 0
	g.comp.Reset()
	if toIdle {
		g.mode = Idle
	} else {
		g.mode = Collecting
	}
}
