package geiger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanPierce/GeigerRNG/geiger"
)

// push feeds timestamps in order and returns the result of the final push.
func push(t *testing.T, c *geiger.Comparator, times ...uint32) (byte, bool) {
	t.Helper()
	var bit byte
	var done bool
	for _, ts := range times {
		bit, done = c.Push(ts)
	}
	return bit, done
}

func TestComparatorOrderedQuadruples(t *testing.T) {
	cases := []struct {
		name string
		t1, t2, t3, t4 uint32
		want byte
	}{
		{"second interval longer", 0, 100, 200, 400, 1},
		{"second interval shorter", 0, 300, 400, 500, 0},
		{"barely longer", 0, 100, 200, 301, 1},
		{"barely shorter", 0, 101, 200, 300, 0},
		{"equal intervals resolve to zero", 0, 100, 200, 300, 0},
		{"large timestamps", 4_000_000_000, 4_000_000_100, 4_000_000_200, 4_000_000_500, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := geiger.NewComparator(0, geiger.TieEmitZero)
			bit, done := push(t, c, tc.t1, tc.t2, tc.t3, tc.t4)
			require.True(t, done)
			assert.Equal(t, tc.want, bit)
			assert.Equal(t, 0, c.Pending(), "window must be cleared after each comparison")
		})
	}
}

func TestComparatorEmitsNothingBeforeFourthPulse(t *testing.T) {
	c := geiger.NewComparator(0, geiger.TieEmitZero)
	for i, ts := range []uint32{10, 20, 30} {
		_, done := c.Push(ts)
		assert.False(t, done)
		assert.Equal(t, i+1, c.Pending())
	}
}

// A pulse captured just after the fine counter wrapped but before the
// coarse counter advanced shows up one tick early. The comparator must
// add one tick period and produce the same bit as the unraced sequence.
func TestComparatorCounterRaceCorrection(t *testing.T) {
	// True event times: 1999, 2001, 2500, 2800. The second capture races
	// the coarse counter and is observed as 1001.
	raced := geiger.NewComparator(1000, geiger.TieEmitZero)
	racedBit, done := push(t, raced, 1999, 1001, 2500, 2800)
	require.True(t, done)

	clean := geiger.NewComparator(1000, geiger.TieEmitZero)
	cleanBit, done := push(t, clean, 1999, 2001, 2500, 2800)
	require.True(t, done)

	assert.Equal(t, cleanBit, racedBit)
	assert.Equal(t, byte(1), racedBit) // b = 300 > a = 2
}

func TestComparatorRaceOnFourthTimestamp(t *testing.T) {
	// True times: 500, 600, 1999, 2001 with the last capture raced to
	// 1001. a = 100, b = 2; the corrected sequence must still emit 0.
	c := geiger.NewComparator(1000, geiger.TieEmitZero)
	bit, done := push(t, c, 500, 600, 1999, 1001)
	require.True(t, done)
	assert.Equal(t, byte(0), bit)
}

func TestComparatorTieResample(t *testing.T) {
	c := geiger.NewComparator(0, geiger.TieResample)

	// Equal intervals: the window is discarded without a bit.
	_, done := push(t, c, 0, 100, 200, 300)
	assert.False(t, done)
	assert.Equal(t, 0, c.Pending())

	// The next four pulses resolve normally.
	bit, done := push(t, c, 1000, 1100, 1200, 1500)
	require.True(t, done)
	assert.Equal(t, byte(1), bit)
}

func TestComparatorReset(t *testing.T) {
	c := geiger.NewComparator(0, geiger.TieEmitZero)
	c.Push(10)
	c.Push(20)
	c.Reset()
	assert.Equal(t, 0, c.Pending())

	bit, done := push(t, c, 0, 100, 200, 400)
	require.True(t, done)
	assert.Equal(t, byte(1), bit)
}
