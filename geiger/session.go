package geiger

import (
	"context"
)

// Session is the consumer side of a Generator: it waits for completed
// bytes, writes them to a ByteSink, runs the acknowledgment collaborator,
// and decides after every byte whether the session continues, ends at the
// terminator, or (in triggered mode) returns to Idle awaiting the next
// trigger.
type Session struct {
	gen   *Generator
	sink  ByteSink
	ack   func()
	count int
}

// NewSession wires a generator to a sink. ack, if non-nil, is invoked
// once per retrieved byte; collection does not resume until it returns,
// mirroring the bounded LED/buzzer acknowledgment of the hardware. Pass
// nil for no acknowledgment.
func NewSession(gen *Generator, sink ByteSink, ack func()) *Session {
	return &Session{gen: gen, sink: sink, ack: ack}
}

// Count returns the number of bytes emitted in the current session.
func (s *Session) Count() int { return s.count }

// HandleReady performs one retrieval cycle: take the completed byte,
// write it, acknowledge, and resume the generator. It reports whether a
// byte was actually pending. Sink errors are returned with the generator
// left in ByteReady so no byte is silently dropped.
func (s *Session) HandleReady() (bool, error) {
	b, ok := s.gen.Take()
	if !ok {
		return false, nil
	}
	if err := s.sink.WriteRandomByte(b); err != nil {
		return false, err
	}
	if s.ack != nil {
		s.ack()
	}

	s.count++
	if s.count == s.gen.SessionLength() {
		if err := s.sink.WriteTerminator(); err != nil {
			return false, err
		}
		s.count = 0
		s.gen.Resume(!s.gen.Continuous())
	} else {
		s.gen.Resume(false)
	}
	return true, nil
}

// Run is the foreground consumer loop. It blocks on the generator's
// ready signal, services each completed byte via HandleReady, and returns
// when ctx is cancelled or the sink fails. In continuous mode it starts
// collection itself; in triggered mode collection starts on the first
// Trigger call.
func (s *Session) Run(ctx context.Context) error {
	if s.gen.Continuous() {
		s.gen.Trigger()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.gen.Ready():
		}
		for {
			served, err := s.HandleReady()
			if err != nil {
				return err
			}
			if !served {
				break
			}
		}
	}
}
