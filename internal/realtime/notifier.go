package realtime

import (
	"context"
	"errors"
	"time"

	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/metrics"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrDeliveryTimeout marks a per-session send abandoned after the send timeout.
	ErrDeliveryTimeout = errors.New("delivery timeout")
	// ErrSessionClosed is returned by Send on a session that already disconnected.
	ErrSessionClosed = errors.New("session closed")
)

const (
	defaultQueueSize      = 256
	defaultSendTimeout    = 2 * time.Second
	defaultEnqueueTimeout = 5 * time.Second
	defaultWatermarkTTL   = 3 * time.Hour
	maxConcurrentSends    = 64
)

type NotifierOptions struct {
	QueueSize int
	// SendTimeout bounds a single session send.
	SendTimeout time.Duration
	// EnqueueTimeout bounds how long Publish waits for queue space before dropping.
	EnqueueTimeout time.Duration
	// WatermarkTTL is how long per-flight ordering state is remembered.
	WatermarkTTL time.Duration
	Logger       *zap.SugaredLogger
	Metrics      *metrics.MetricsRegistry
}

// Notifier is the single ordering point for board events. Publishers enqueue;
// one dispatcher drains the queue and fans each event out to every joined
// session before taking the next, so each session sees publish order.
type Notifier struct {
	registry       *Registry
	queue          chan Event
	sendTimeout    time.Duration
	enqueueTimeout time.Duration
	watermarks     *cache.Cache
	done           chan struct{}
	log            *zap.SugaredLogger
	metrics        *metrics.MetricsRegistry
}

func NewNotifier(registry *Registry, opts NotifierOptions) *Notifier {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = defaultEnqueueTimeout
	}
	if opts.WatermarkTTL <= 0 {
		opts.WatermarkTTL = defaultWatermarkTTL
	}

	return &Notifier{
		registry:       registry,
		queue:          make(chan Event, opts.QueueSize),
		sendTimeout:    opts.SendTimeout,
		enqueueTimeout: opts.EnqueueTimeout,
		watermarks:     cache.New(opts.WatermarkTTL, opts.WatermarkTTL/2),
		done:           make(chan struct{}),
		log:            logging.OrNamed(opts.Logger, "notifier"),
		metrics:        metrics.OrDiscard(opts.Metrics),
	}
}

// Publish hands events to the dispatcher in order. It never fails the caller:
// when the dispatcher is gone or the queue stays full past the enqueue
// timeout, the event is dropped and logged.
func (n *Notifier) Publish(events ...Event) {
	for _, e := range events {
		if e == nil {
			continue
		}
		select {
		case <-n.done:
			n.drop(e, "stopped")
			continue
		default:
		}

		select {
		case n.queue <- e:
			n.metrics.NotifierQueueDepth.Set(float64(len(n.queue)))
			continue
		default:
		}

		timer := time.NewTimer(n.enqueueTimeout)
		select {
		case n.queue <- e:
			n.metrics.NotifierQueueDepth.Set(float64(len(n.queue)))
		case <-n.done:
			n.drop(e, "stopped")
		case <-timer.C:
			n.drop(e, "queue_full")
		}
		timer.Stop()
	}
}

// Run dispatches queued events until ctx is cancelled, then delivers whatever
// was already queued and returns.
func (n *Notifier) Run(ctx context.Context) error {
	defer close(n.done)
	n.log.Infow("Notifier started", "queue_size", cap(n.queue), "send_timeout", n.sendTimeout)

	for {
		select {
		case e := <-n.queue:
			n.metrics.NotifierQueueDepth.Set(float64(len(n.queue)))
			n.dispatch(e)
		case <-ctx.Done():
			n.drain()
			n.log.Infow("Notifier stopped")
			return nil
		}
	}
}

func (n *Notifier) drain() {
	for {
		select {
		case e := <-n.queue:
			n.dispatch(e)
		default:
			n.metrics.NotifierQueueDepth.Set(0)
			return
		}
	}
}

func (n *Notifier) dispatch(e Event) {
	e = n.admit(e)
	if e == nil {
		return
	}

	payload, err := Encode(e)
	if err != nil {
		n.log.Errorw("Failed to encode event", "type", e.Type(), "error", err)
		return
	}

	n.metrics.EventsPublishedTotal.WithLabelValues(string(e.Type())).Inc()

	var g errgroup.Group
	g.SetLimit(maxConcurrentSends)
	sessions := 0
	n.registry.ForEachActive(func(s Session) {
		sessions++
		g.Go(func() error {
			n.deliver(s, e.Type(), payload)
			return nil
		})
	})
	_ = g.Wait()

	if sessions > 0 {
		n.log.Debugw("Event delivered", "type", e.Type(), "sessions", sessions)
	}
}

func (n *Notifier) deliver(s Session, t EventType, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
	defer cancel()

	err := s.Send(ctx, payload)
	switch {
	case err == nil:
		n.metrics.DeliveriesTotal.Inc()
	case errors.Is(err, ErrDeliveryTimeout), errors.Is(err, context.DeadlineExceeded):
		n.metrics.DeliveryFailuresTotal.WithLabelValues("timeout").Inc()
		n.log.Warnw("Delivery abandoned", "session_id", s.ID(), "type", t, "error", ErrDeliveryTimeout)
	case errors.Is(err, ErrSessionClosed):
		n.metrics.DeliveryFailuresTotal.WithLabelValues("closed").Inc()
		n.registry.Leave(s.ID())
	default:
		n.metrics.DeliveryFailuresTotal.WithLabelValues("error").Inc()
		n.log.Warnw("Delivery failed", "session_id", s.ID(), "type", t, "error", err)
	}
}

// admit applies the per-flight watermark. A change older than the last one
// dispatched for that flight, or for a flight already deleted, is dropped.
func (n *Notifier) admit(e Event) Event {
	switch ev := e.(type) {
	case Created:
		n.watermarks.Delete(tombstoneKey(ev.Flight.ID))
		n.watermarks.SetDefault(watermarkKey(ev.Flight.ID), ev.Flight.UpdatedAt)
		return ev
	case Updated:
		if !n.advance(ev.Flight.ID, ev.Flight.UpdatedAt) {
			n.metrics.EventsDroppedTotal.WithLabelValues("stale").Inc()
			return nil
		}
		return ev
	case Deleted:
		n.watermarks.Delete(watermarkKey(ev.ID))
		n.watermarks.SetDefault(tombstoneKey(ev.ID), struct{}{})
		return ev
	case StatusBatchChanged:
		kept := make([]StatusChange, 0, len(ev.Changes))
		for _, c := range ev.Changes {
			if n.advance(c.ID, c.UpdatedAt) {
				kept = append(kept, c)
				continue
			}
			n.metrics.EventsDroppedTotal.WithLabelValues("stale").Inc()
			n.log.Debugw("Stale status change dropped", "id", c.ID, "status", c.Status)
		}
		if len(kept) == 0 {
			return nil
		}
		return StatusBatchChanged{Changes: kept}
	default:
		return e
	}
}

func (n *Notifier) advance(id string, at time.Time) bool {
	if _, gone := n.watermarks.Get(tombstoneKey(id)); gone {
		return false
	}
	if last, ok := n.watermarks.Get(watermarkKey(id)); ok {
		if at.Before(last.(time.Time)) {
			return false
		}
	}
	n.watermarks.SetDefault(watermarkKey(id), at)
	return true
}

func (n *Notifier) drop(e Event, reason string) {
	n.metrics.EventsDroppedTotal.WithLabelValues(reason).Inc()
	n.log.Warnw("Event dropped", "type", e.Type(), "reason", reason)
}

func watermarkKey(id string) string { return string(constants.CachePrefixWatermark) + id }
func tombstoneKey(id string) string { return string(constants.CachePrefixTombstone) + id }
