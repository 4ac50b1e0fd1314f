// Package config handles the deployment-time configuration of the
// GeigerRNG tools. Everything here is fixed at startup: session length,
// triggered versus continuous operation, detector edge polarity, the
// coarse tick period and the comparator tie policy are properties of a
// deployment, not of a run.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/RyanPierce/GeigerRNG/geiger"
	"github.com/RyanPierce/GeigerRNG/kitserial"
)

// Operating modes.
const (
	ModeTriggered  = "triggered"
	ModeContinuous = "continuous"
)

// Tie policies.
const (
	TieZero     = "zero"
	TieResample = "resample"
)

// Edge polarities. The reference hardware pulses low on detection.
const (
	EdgeFalling = "falling"
	EdgeRising  = "rising"
)

// Config holds the complete tool configuration.
type Config struct {
	Session  SessionConfig  `toml:"session"`
	Timing   TimingConfig   `toml:"timing"`
	Detector DetectorConfig `toml:"detector"`
}

// SessionConfig governs byte sessions.
type SessionConfig struct {
	// Length is the number of random bytes per session.
	Length int `toml:"length"`
	// Mode is "triggered" (a session per trigger) or "continuous".
	Mode string `toml:"mode"`
	// TiePolicy is "zero" (equal intervals emit a 0 bit, the original
	// behavior) or "resample" (discard the window and re-collect).
	TiePolicy string `toml:"tie_policy"`
}

// TimingConfig governs the timestamp counters.
type TimingConfig struct {
	// TickMicros is the coarse counter period in microseconds.
	TickMicros int `toml:"tick_micros"`
}

// DetectorConfig governs the physical detector connection.
type DetectorConfig struct {
	// Edge is the pulse polarity the capture hardware is armed for,
	// "falling" or "rising". Carried through to deployment tooling; the
	// hosted pipeline receives already-qualified edges.
	Edge string `toml:"edge"`
	// Port overrides serial port autodetection when set.
	Port string `toml:"port"`
	// Baud is the kit serial rate.
	Baud int `toml:"baud"`
}

// Default returns the configuration matching the reference hardware:
// 64-byte triggered sessions, 1 ms tick, falling-edge detection, ties
// resolving to zero.
func Default() Config {
	return Config{
		Session: SessionConfig{
			Length:    geiger.DefaultSessionLength,
			Mode:      ModeTriggered,
			TiePolicy: TieZero,
		},
		Timing: TimingConfig{
			TickMicros: geiger.DefaultTickMicros,
		},
		Detector: DetectorConfig{
			Edge: EdgeFalling,
			Baud: kitserial.Baud,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field against its allowed range.
func (c *Config) Validate() error {
	if c.Session.Length <= 0 {
		return fmt.Errorf("session.length must be > 0, got %d", c.Session.Length)
	}
	if c.Session.Mode != ModeTriggered && c.Session.Mode != ModeContinuous {
		return fmt.Errorf("session.mode must be %q or %q, got %q", ModeTriggered, ModeContinuous, c.Session.Mode)
	}
	if c.Session.TiePolicy != TieZero && c.Session.TiePolicy != TieResample {
		return fmt.Errorf("session.tie_policy must be %q or %q, got %q", TieZero, TieResample, c.Session.TiePolicy)
	}
	if c.Timing.TickMicros <= 0 || c.Timing.TickMicros > 65535 {
		return fmt.Errorf("timing.tick_micros must be in 1..65535, got %d", c.Timing.TickMicros)
	}
	if c.Detector.Edge != EdgeFalling && c.Detector.Edge != EdgeRising {
		return fmt.Errorf("detector.edge must be %q or %q, got %q", EdgeFalling, EdgeRising, c.Detector.Edge)
	}
	if c.Detector.Baud <= 0 {
		return fmt.Errorf("detector.baud must be > 0, got %d", c.Detector.Baud)
	}
	return nil
}

// Generator translates the configuration into the core engine's terms.
func (c Config) Generator() geiger.Config {
	tie := geiger.TieEmitZero
	if c.Session.TiePolicy == TieResample {
		tie = geiger.TieResample
	}
	return geiger.Config{
		SessionLength: c.Session.Length,
		Continuous:    c.Session.Mode == ModeContinuous,
		TickMicros:    uint32(c.Timing.TickMicros),
		Tie:           tie,
	}
}
