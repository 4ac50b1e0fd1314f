package kitserial

import (
	"fmt"
)

// StreamDecoder converts the kit's serial character stream back into
// random bytes and session boundaries. It is incremental: Feed may be
// called with arbitrary chunk sizes, and a hex pair split across two
// chunks decodes correctly.
type StreamDecoder struct {
	hi   byte
	have bool
}

// Feed decodes p, invoking onByte for every completed hex pair and
// onTerminator for every session terminator. Carriage returns are
// swallowed; the line feed fires the terminator, matching the CRLF the
// firmware emits. A non-nil error from either callback stops decoding
// and is returned. Characters outside [0-9a-fA-F\r\n] are a protocol
// error.
func (d *StreamDecoder) Feed(p []byte, onByte func(byte) error, onTerminator func() error) error {
	for _, c := range p {
		switch {
		case c == '\r':
			// first half of the terminator
		case c == '\n':
			if d.have {
				return fmt.Errorf("session terminator splits a hex pair")
			}
			if onTerminator != nil {
				if err := onTerminator(); err != nil {
					return err
				}
			}
		default:
			v, err := hexDigit(c)
			if err != nil {
				return err
			}
			if !d.have {
				d.hi = v
				d.have = true
				continue
			}
			d.have = false
			if onByte != nil {
				if err := onByte(d.hi<<4 | v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Pending reports whether half of a hex pair is buffered.
func (d *StreamDecoder) Pending() bool { return d.have }

// Reset discards any buffered half pair.
func (d *StreamDecoder) Reset() { d.have = false }

func hexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("invalid character %q in device stream", c)
}
