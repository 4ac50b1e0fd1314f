package kitserial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// The kit connects through an FTDI TTL-232R cable. Its serial side
// identifies as an FT232R UART; the raw USB identifiers are VID 0x0403,
// PID 0x6001.
const (
	cableVID = "0403"
	cablePID = "6001"
)

// cableNamePrefixes are product/description prefixes that identify the
// FTDI cable when VID/PID information is not available.
var cableNamePrefixes = []string{"FT232R", "TTL232R", "FTDI"}

// Baud is the kit firmware's fixed serial rate (8N1).
const Baud = 9600

// Detect returns true if a kit serial cable is present on the system. It
// enumerates available serial ports and checks USB identifiers and
// product descriptions.
func Detect() (bool, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return false, fmt.Errorf("enumerating ports: %w", err)
	}
	for _, p := range ports {
		if isKitCable(p) {
			return true, nil
		}
	}
	return false, nil
}

// FindPort returns the first port path of a detected kit cable, e.g.
// "COM5" on Windows or "/dev/ttyUSB0" on Linux.
func FindPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerating ports: %w", err)
	}
	for _, p := range ports {
		if isKitCable(p) && p.Name != "" {
			return p.Name, nil
		}
	}
	return "", errors.New("GeigerRNG cable not found")
}

// Open opens portName at the kit's fixed mode. An empty portName detects
// the cable first.
func Open(portName string) (serial.Port, error) {
	if portName == "" {
		var err error
		portName, err = FindPort()
		if err != nil {
			return nil, err
		}
	}
	mode := &serial.Mode{
		BaudRate: Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	return port, nil
}

// ReadBytes reads byteCount random bytes from the device, decoding the
// hex stream and skipping session terminators. The device must be
// producing, either in continuous mode or with its button pressed. An
// overall timeout bounds the wait; Geiger bytes are slow (4 pulses per
// bit), so the budget scales with the request.
func ReadBytes(portName string, byteCount int, timeout time.Duration) ([]byte, error) {
	if byteCount <= 0 {
		return nil, errors.New("byteCount must be positive")
	}
	port, err := Open(portName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = port.Close() }()

	_ = port.SetReadTimeout(500 * time.Millisecond)
	if err := port.ResetInputBuffer(); err != nil {
		// stale buffered output is acceptable, proceed
	}

	out := make([]byte, 0, byteCount)
	var dec StreamDecoder
	buf := make([]byte, 256)
	deadline := time.Now().Add(timeout)
	for len(out) < byteCount {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("read timeout after %s: %d/%d bytes", timeout, len(out), byteCount)
		}
		n, err := port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			continue
		}
		err = dec.Feed(buf[:n], func(b byte) error {
			if len(out) < byteCount {
				out = append(out, b)
			}
			return nil
		}, nil)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadSession reads one complete session from the device: every byte up
// to and including the next terminator. Bytes already in flight when the
// call starts are attributed to the returned session, so callers that
// need aligned sessions should drain the port first.
func ReadSession(portName string, timeout time.Duration) ([]byte, error) {
	port, err := Open(portName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = port.Close() }()

	_ = port.SetReadTimeout(500 * time.Millisecond)

	var (
		out      []byte
		dec      StreamDecoder
		complete bool
	)
	errDone := errors.New("session complete")
	buf := make([]byte, 256)
	deadline := time.Now().Add(timeout)
	for !complete {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("read timeout after %s: %d bytes, no terminator", timeout, len(out))
		}
		n, err := port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			continue
		}
		err = dec.Feed(buf[:n], func(b byte) error {
			out = append(out, b)
			return nil
		}, func() error {
			complete = true
			return errDone
		})
		if err != nil && !errors.Is(err, errDone) {
			return nil, err
		}
	}
	return out, nil
}

// CollectAtInterval reads byteCount bytes every interval, invoking
// onBatch with the bytes each time. It runs until the context is
// cancelled or a read error occurs.
func CollectAtInterval(ctx context.Context, portName string, byteCount int, interval time.Duration, onBatch func([]byte)) error {
	if byteCount <= 0 {
		return errors.New("byteCount must be positive")
	}
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	if onBatch == nil {
		return errors.New("onBatch callback must not be nil")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		b, err := ReadBytes(portName, byteCount, readBudget(byteCount, interval))
		if err != nil {
			return err
		}
		onBatch(b)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// readBudget allows at least the collection interval plus a generous
// floor per request, since pulse rates vary with the source.
func readBudget(byteCount int, interval time.Duration) time.Duration {
	budget := interval + 30*time.Second
	if perByte := time.Duration(byteCount) * time.Second; perByte > budget {
		budget = perByte
	}
	return budget
}

func isKitCable(p *enumerator.PortDetails) bool {
	if p == nil {
		return false
	}
	if p.IsUSB && strings.EqualFold(p.VID, cableVID) && strings.EqualFold(p.PID, cablePID) {
		return true
	}
	for _, prefix := range cableNamePrefixes {
		if p.Product != "" && strings.HasPrefix(p.Product, prefix) {
			return true
		}
	}
	return false
}
