// Package geiger extracts random bits from the arrival-time jitter of
// radioactive-decay pulses. It implements the HotBits comparison method:
// four pulse timestamps form two consecutive intervals, and the relative
// length of the second interval against the first yields one bit, making
// the output independent of the source's average count rate. Eight bits
// are assembled into a byte, XORed with a fixed alternating pattern to
// cancel slow drift in the pulse rate, and handed to a consumer one byte
// at a time under a small Idle/Collecting/ByteReady state machine.
//
// The package is hardware-agnostic: pulse edges, periodic ticks and the
// trigger arrive through Generator method calls, so the same logic runs
// against a real detector, the decaysim simulator, or synthetic timestamp
// sequences in tests.
package geiger
