package geiger_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanPierce/GeigerRNG/geiger"
)

// recordSink captures sink calls for assertions.
type recordSink struct {
	bytes       []byte
	terminators int
	writeErr    error
}

func (r *recordSink) WriteRandomByte(b byte) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.bytes = append(r.bytes, b)
	return nil
}

func (r *recordSink) WriteTerminator() error {
	r.terminators++
	return nil
}

func TestHexWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	w := geiger.NewHexWriter(&buf)
	require.NoError(t, w.WriteRandomByte(0x05))
	require.NoError(t, w.WriteRandomByte(0xF3))
	require.NoError(t, w.WriteTerminator())
	assert.Equal(t, "05f3\r\n", buf.String())
}

// End to end per the wire format: one-byte triggered session whose eight
// comparisons all resolve to 1 produces "55" plus CRLF and returns to
// Idle.
func TestEndToEndSingleByteTriggeredSession(t *testing.T) {
	h := newHarness(geiger.Config{SessionLength: 1})
	var buf bytes.Buffer
	s := geiger.NewSession(h.g, geiger.NewHexWriter(&buf), nil)

	require.True(t, h.g.Trigger())
	for i := uint32(0); i < 8; i++ {
		h.onesWindow(i * 10_000)
	}

	served, err := s.HandleReady()
	require.NoError(t, err)
	require.True(t, served)

	assert.Equal(t, "55\r\n", buf.String())
	assert.Equal(t, geiger.Idle, h.g.Mode())
	assert.Equal(t, 0, s.Count())
}

func TestSessionContinuesUntilLength(t *testing.T) {
	h := newHarness(geiger.Config{SessionLength: 2})
	sink := &recordSink{}
	s := geiger.NewSession(h.g, sink, nil)
	require.True(t, h.g.Trigger())

	for i := uint32(0); i < 8; i++ {
		h.onesWindow(i * 10_000)
	}
	served, err := s.HandleReady()
	require.NoError(t, err)
	require.True(t, served)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, geiger.Collecting, h.g.Mode(), "mid-session retrieval resumes collection")
	assert.Zero(t, sink.terminators)

	for i := uint32(10); i < 18; i++ {
		h.onesWindow(i * 10_000)
	}
	served, err = s.HandleReady()
	require.NoError(t, err)
	require.True(t, served)
	assert.Equal(t, []byte{0x55, 0x55}, sink.bytes)
	assert.Equal(t, 1, sink.terminators)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, geiger.Idle, h.g.Mode())
}

func TestContinuousModeRestartsAfterTerminator(t *testing.T) {
	h := newHarness(geiger.Config{SessionLength: 1, Continuous: true})
	sink := &recordSink{}
	s := geiger.NewSession(h.g, sink, nil)
	require.True(t, h.g.Trigger())

	for i := uint32(0); i < 8; i++ {
		h.onesWindow(i * 10_000)
	}
	served, err := s.HandleReady()
	require.NoError(t, err)
	require.True(t, served)
	assert.Equal(t, 1, sink.terminators)
	assert.Equal(t, geiger.Collecting, h.g.Mode())
}

func TestHandleReadyWithoutPendingByte(t *testing.T) {
	g := geiger.NewGenerator(geiger.Config{})
	s := geiger.NewSession(g, &recordSink{}, nil)
	served, err := s.HandleReady()
	require.NoError(t, err)
	assert.False(t, served)
}

// The acknowledgment collaborator runs while the generator is still
// paused in ByteReady, so no pulses are accepted during the blink/beep.
func TestAckCompletesBeforeCollectionResumes(t *testing.T) {
	h := newHarness(geiger.Config{SessionLength: 4})
	var modeDuringAck geiger.Mode
	s := geiger.NewSession(h.g, &recordSink{}, func() {
		modeDuringAck = h.g.Mode()
	})
	require.True(t, h.g.Trigger())

	for i := uint32(0); i < 8; i++ {
		h.onesWindow(i * 10_000)
	}
	served, err := s.HandleReady()
	require.NoError(t, err)
	require.True(t, served)
	assert.Equal(t, geiger.ByteReady, modeDuringAck)
}

func TestSinkErrorKeepsByteParked(t *testing.T) {
	h := newHarness(geiger.Config{SessionLength: 1})
	boom := errors.New("sink failed")
	sink := &recordSink{writeErr: boom}
	s := geiger.NewSession(h.g, sink, nil)
	require.True(t, h.g.Trigger())

	for i := uint32(0); i < 8; i++ {
		h.onesWindow(i * 10_000)
	}
	_, err := s.HandleReady()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, geiger.ByteReady, h.g.Mode())

	// A recovered sink can still retrieve the same byte.
	sink.writeErr = nil
	served, err := s.HandleReady()
	require.NoError(t, err)
	require.True(t, served)
	assert.Equal(t, []byte{0x55}, sink.bytes)
}

func TestRunServicesBytesUntilCancelled(t *testing.T) {
	h := newHarness(geiger.Config{SessionLength: 1})
	sink := &recordSink{}
	s := geiger.NewSession(h.g, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.True(t, h.g.Trigger())
	for i := uint32(0); i < 8; i++ {
		h.onesWindow(i * 10_000)
	}

	require.Eventually(t, func() bool {
		return sink.terminators == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, []byte{0x55}, sink.bytes)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRunStartsCollectionInContinuousMode(t *testing.T) {
	h := newHarness(geiger.Config{SessionLength: 1, Continuous: true})
	s := geiger.NewSession(h.g, &recordSink{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return h.g.Mode() == geiger.Collecting
	}, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
