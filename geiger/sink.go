package geiger

import (
	"fmt"
	"io"
)

// ByteSink receives the output of a session: one call per random byte and
// one terminator call at the end of each session.
type ByteSink interface {
	// WriteRandomByte receives one completed byte.
	WriteRandomByte(b byte) error
	// WriteTerminator marks the end of a session.
	WriteTerminator() error
}

// HexWriter is a ByteSink that encodes every byte as two lowercase hex
// characters with the leading zero preserved, and each terminator as
// CRLF. This matches the serial wire format of the reference hardware.
type HexWriter struct {
	w io.Writer
}

// NewHexWriter wraps w as a hex-encoding ByteSink.
func NewHexWriter(w io.Writer) *HexWriter {
	return &HexWriter{w: w}
}

func (h *HexWriter) WriteRandomByte(b byte) error {
	_, err := fmt.Fprintf(h.w, "%02x", b)
	return err
}

func (h *HexWriter) WriteTerminator() error {
	_, err := io.WriteString(h.w, "\r\n")
	return err
}
