package realtime

import (
	"context"
	"sync"

	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/metrics"

	"go.uber.org/zap"
)

// Session is one live viewer connection.
type Session interface {
	ID() string
	// Send queues payload for delivery. It must give up once ctx is done.
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// Registry tracks the sessions joined to the board topic.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	log      *zap.SugaredLogger
	metrics  *metrics.MetricsRegistry
}

func NewRegistry(log *zap.SugaredLogger, m *metrics.MetricsRegistry) *Registry {
	return &Registry{
		sessions: make(map[string]Session),
		log:      logging.OrNamed(log, "registry"),
		metrics:  metrics.OrDiscard(m),
	}
}

// Join adds s to the board. Joining an already joined id is a no-op and
// reports false.
func (r *Registry) Join(s Session) bool {
	r.mu.Lock()
	if _, ok := r.sessions[s.ID()]; ok {
		r.mu.Unlock()
		return false
	}
	r.sessions[s.ID()] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SessionsActive.Set(float64(count))
	r.log.Infow("Session joined", "session_id", s.ID(), "topic", constants.BoardTopic, "active", count)
	return true
}

// Leave removes a session. Explicit leave and disconnect pruning both end here.
func (r *Registry) Leave(id string) bool {
	r.mu.Lock()
	if _, ok := r.sessions[id]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SessionsActive.Set(float64(count))
	r.log.Infow("Session left", "session_id", id, "topic", constants.BoardTopic, "active", count)
	return true
}

// IsActive reports whether id is currently joined.
func (r *Registry) IsActive(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Snapshot copies the current sessions. Callers may iterate it while others join and leave.
func (r *Registry) Snapshot() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// ForEachActive calls fn for every session in a snapshot taken at call time,
// so fn may join or leave sessions. The notifier fans out through it.
func (r *Registry) ForEachActive(fn func(Session)) {
	for _, s := range r.Snapshot() {
		fn(s)
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
