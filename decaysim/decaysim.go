// Package decaysim simulates a Geiger detector watching a radioactive
// source. Pulse inter-arrival times are exponentially distributed, which
// is the statistics of independent decay events at a fixed average count
// rate, and are replayed against a geiger.Generator over a virtual
// microsecond timeline: coarse ticks and pulse edges are delivered in the
// same order the hardware interrupt sources would produce them.
//
// The simulator can optionally reproduce the counter race the capture
// path corrects for, by delivering a pulse whose fine counter has wrapped
// before its coarse tick. Seeded sources are deterministic, which makes
// whole pipeline runs reproducible in tests.
package decaysim

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	mrand "math/rand"
	"time"

	"github.com/RyanPierce/GeigerRNG/geiger"
)

// DefaultPulsesPerSecond approximates an SBM-20 tube with a modest check
// source.
const DefaultPulsesPerSecond = 25.0

// Config fixes a Source's behavior.
type Config struct {
	// Seed for the deterministic stream. Zero draws a random seed from
	// crypto/rand.
	Seed uint64
	// PulsesPerSecond is the average detector count rate. Zero selects
	// DefaultPulsesPerSecond.
	PulsesPerSecond float64
	// RaceProbability is the chance, per eligible pulse, that its coarse
	// tick is delivered after the pulse instead of before, reproducing
	// the fine/coarse counter race. Must be in [0, 1].
	RaceProbability float64
	// Realtime paces delivery at wall-clock speed instead of running the
	// virtual timeline as fast as possible.
	Realtime bool
}

// Source generates simulated detector pulses.
type Source struct {
	r        *mrand.Rand
	cps      float64
	raceProb float64
	realtime bool
}

// New creates a simulated detector from cfg.
func New(cfg Config) (*Source, error) {
	if cfg.PulsesPerSecond == 0 {
		cfg.PulsesPerSecond = DefaultPulsesPerSecond
	}
	if cfg.PulsesPerSecond < 0 {
		return nil, errors.New("pulses per second must be positive")
	}
	if cfg.RaceProbability < 0 || cfg.RaceProbability > 1 {
		return nil, errors.New("race probability must be in [0, 1]")
	}
	seed := cfg.Seed
	if seed == 0 {
		var s [8]byte
		if _, err := crand.Read(s[:]); err != nil {
			return nil, err
		}
		seed = binary.LittleEndian.Uint64(s[:])
	}
	return &Source{
		r:        mrand.New(mrand.NewSource(int64(seed))),
		cps:      cfg.PulsesPerSecond,
		raceProb: cfg.RaceProbability,
		realtime: cfg.Realtime,
	}, nil
}

// Run delivers ticks and pulses to gen until ctx is cancelled. The tick
// period is taken from the generator so both sides agree on the
// timestamp arithmetic. Run returns ctx.Err() on cancellation.
//
// In fast-forward mode (Realtime false) the virtual timeline is
// suspended while the generator is not accepting pulses, so every
// generated pulse is consumed and a seeded stream is fully
// deterministic. In realtime mode pulses are delivered unconditionally,
// like a real tube, and the generator's mode guard discards the
// out-of-window ones.
func (s *Source) Run(ctx context.Context, gen *geiger.Generator) error {
	if gen == nil {
		return errors.New("generator must not be nil")
	}
	tick := uint64(gen.TickMicros())

	var now float64 // virtual microseconds
	var ticked uint64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !s.realtime {
			if err := waitCollecting(ctx, gen); err != nil {
				return err
			}
		}

		gap := s.r.ExpFloat64() / s.cps * 1e6
		if gap < 1 {
			gap = 1 // tube dead time floor
		}
		now += gap

		at := uint64(now)
		due := at / tick
		fine := uint16(at % tick)

		// With the configured probability, hold back the newest tick so
		// the pulse observes a wrapped fine counter against a stale
		// coarse counter. Only pulses that actually crossed a tick
		// boundary are eligible.
		race := due > ticked && s.raceProb > 0 && s.r.Float64() < s.raceProb
		pending := due
		if race {
			pending = due - 1
		}
		for ticked < pending {
			gen.Tick()
			ticked++
		}

		if s.realtime {
			t := time.NewTimer(time.Duration(gap) * time.Microsecond)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		gen.Pulse(fine)
		if race {
			gen.Tick()
			ticked++
		}
	}
}

// waitCollecting blocks until gen accepts pulses or ctx is cancelled.
func waitCollecting(ctx context.Context, gen *geiger.Generator) error {
	for gen.Mode() != geiger.Collecting {
		t := time.NewTimer(50 * time.Microsecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
