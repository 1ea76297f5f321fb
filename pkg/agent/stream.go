package agent

import (
	"context"
	"sync"
)

// Stream delivers a run's events to exactly one consumer. Production is
// lazy: the producer blocks on each Emit until the consumer pulls the
// event or closes the stream. Closing cancels the producing run, so a
// consumer that stops after the first terminal event never pays for
// events it will not read.
type Stream struct {
	events chan Event
	cancel context.CancelFunc
	once   sync.Once

	mu  sync.Mutex
	err error
}

// NewStream creates a stream and the run context its producer must
// respect. Close cancels that context.
func NewStream(parent context.Context) (*Stream, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Stream{
		events: make(chan Event),
		cancel: cancel,
	}, ctx
}

// Next blocks for the next event. ok is false once the stream is
// finished; check Err afterwards to distinguish completion from
// producer failure.
func (s *Stream) Next() (ev Event, ok bool) {
	ev, ok = <-s.events
	return ev, ok
}

// Err returns the producer's failure, if any. Valid after Next reports
// ok=false.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the run down. Safe to call multiple times and after the
// producer has finished.
func (s *Stream) Close() {
	s.cancel()
}

// Emit delivers one event to the consumer, blocking until it is read.
// It returns false when the stream was closed first; the producer must
// stop then.
func (s *Stream) Emit(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Fail records the producer's error and finishes the stream.
func (s *Stream) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.Finish()
}

// Finish marks the end of production. Idempotent; the producer's
// deferred Finish may race a Fail without harm.
func (s *Stream) Finish() {
	s.once.Do(func() {
		close(s.events)
		s.cancel()
	})
}
