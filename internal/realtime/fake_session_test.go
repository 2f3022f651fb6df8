package realtime

import (
	"context"
	"sync"
)

// fakeSession records payloads. A blocking session never accepts a send.
type fakeSession struct {
	id       string
	blocking bool
	closed   bool

	mu       sync.Mutex
	received [][]byte
}

func newFakeSession(id string) *fakeSession { return &fakeSession{id: id} }

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Send(ctx context.Context, payload []byte) error {
	if s.blocking {
		<-ctx.Done()
		return ErrDeliveryTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.received = append(s.received, payload)
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func (s *fakeSession) events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, len(s.received))
	for _, p := range s.received {
		e, err := Decode(p)
		if err != nil {
			panic(err)
		}
		out = append(out, e)
	}
	return out
}
