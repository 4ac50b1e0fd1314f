package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanPierce/GeigerRNG/config"
	"github.com/RyanPierce/GeigerRNG/geiger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geigerrng.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultMatchesReferenceHardware(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 64, cfg.Session.Length)
	assert.Equal(t, config.ModeTriggered, cfg.Session.Mode)
	assert.Equal(t, config.TieZero, cfg.Session.TiePolicy)
	assert.Equal(t, 1000, cfg.Timing.TickMicros)
	assert.Equal(t, config.EdgeFalling, cfg.Detector.Edge)
	assert.Equal(t, 9600, cfg.Detector.Baud)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[session]
length = 16
mode = "continuous"
tie_policy = "resample"

[timing]
tick_micros = 500

[detector]
edge = "rising"
port = "/dev/ttyUSB1"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Session.Length)
	assert.Equal(t, config.ModeContinuous, cfg.Session.Mode)
	assert.Equal(t, 500, cfg.Timing.TickMicros)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Detector.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, 9600, cfg.Detector.Baud)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[session]
lenght = 16
`)
	_, err := config.Load(path)
	assert.ErrorContains(t, err, "unknown config key")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero length", func(c *config.Config) { c.Session.Length = 0 }},
		{"bad mode", func(c *config.Config) { c.Session.Mode = "oneshot" }},
		{"bad tie policy", func(c *config.Config) { c.Session.TiePolicy = "one" }},
		{"zero tick", func(c *config.Config) { c.Timing.TickMicros = 0 }},
		{"tick too large", func(c *config.Config) { c.Timing.TickMicros = 70000 }},
		{"bad edge", func(c *config.Config) { c.Detector.Edge = "both" }},
		{"bad baud", func(c *config.Config) { c.Detector.Baud = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGeneratorTranslation(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Length = 8
	cfg.Session.Mode = config.ModeContinuous
	cfg.Session.TiePolicy = config.TieResample
	cfg.Timing.TickMicros = 2000

	gc := cfg.Generator()
	assert.Equal(t, geiger.Config{
		SessionLength: 8,
		Continuous:    true,
		TickMicros:    2000,
		Tie:           geiger.TieResample,
	}, gc)
}
