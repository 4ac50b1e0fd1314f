// Package kitserial detects and reads a GeigerRNG kit attached through
// its FTDI TTL serial cable. The kit firmware streams each random byte as
// two lowercase hex characters at 9600 8N1 and closes every session with
// CRLF; this package finds the port, decodes that stream back into bytes
// and session boundaries, and exposes one-shot and periodic collection
// helpers suitable for CLIs and GUIs.
package kitserial
