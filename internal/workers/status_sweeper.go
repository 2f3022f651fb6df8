package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"infinite-experiment/flightboard/internal/common"
	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/metrics"
	"infinite-experiment/flightboard/internal/models/entities"
	"infinite-experiment/flightboard/internal/realtime"
	"infinite-experiment/flightboard/internal/services"

	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = 30 * time.Second
	DefaultWriteTimeout  = 5 * time.Second
)

// StatusPublisher receives the batch produced by a tick.
type StatusPublisher interface {
	Publish(events ...realtime.Event)
}

type SweeperOptions struct {
	Interval time.Duration
	// Cooldown is waited after a tick that could not read the record set. Defaults to 10x Interval.
	Cooldown     time.Duration
	WriteTimeout time.Duration
	Logger       *zap.SugaredLogger
	Metrics      *metrics.MetricsRegistry
}

// SweepResult summarises one tick.
type SweepResult struct {
	Scanned int
	Changes []realtime.StatusChange
	Failed  int
}

// StatusSweeper periodically reconciles every stored status with the clock.
type StatusSweeper struct {
	store        repositories.RecordStore
	clock        common.Clock
	publisher    StatusPublisher
	interval     time.Duration
	cooldown     time.Duration
	writeTimeout time.Duration
	log          *zap.SugaredLogger
	metrics      *metrics.MetricsRegistry

	mu     sync.RWMutex
	status entities.SweeperStatus
}

func NewStatusSweeper(store repositories.RecordStore, clock common.Clock, publisher StatusPublisher, opts SweeperOptions) *StatusSweeper {
	if clock == nil {
		clock = common.SystemClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultSweepInterval
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 10 * opts.Interval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}

	return &StatusSweeper{
		store:        store,
		clock:        clock,
		publisher:    publisher,
		interval:     opts.Interval,
		cooldown:     opts.Cooldown,
		writeTimeout: opts.WriteTimeout,
		log:          logging.OrNamed(opts.Logger, "status_sweeper"),
		metrics:      metrics.OrDiscard(opts.Metrics),
	}
}

// Run ticks immediately and then every interval until ctx is cancelled.
// Cancellation is only observed between ticks.
func (s *StatusSweeper) Run(ctx context.Context) {
	s.log.Infow("Sweeper started", "interval", s.interval, "cooldown", s.cooldown)

	for {
		if ctx.Err() != nil {
			s.log.Infow("Sweeper stopped")
			return
		}

		wait := s.interval
		if _, err := s.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			wait = s.cooldown
			s.log.Warnw("Sweep aborted, cooling down", "error", err, "cooldown", wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Infow("Sweeper stopped")
			return
		case <-timer.C:
		}
	}
}

// Tick runs one reconciliation pass. It only returns an error when the
// record set could not be read; single write failures are logged and counted.
func (s *StatusSweeper) Tick(ctx context.Context) (*SweepResult, error) {
	started := time.Now()
	defer func() { s.metrics.SweepDuration.Observe(time.Since(started).Seconds()) }()

	records, err := s.store.GetAll(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// shutdown, not a store failure
			return nil, ctxErr
		}
		s.metrics.SweepTicksTotal.WithLabelValues("aborted").Inc()
		s.record(nil, err)
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}

	now := s.clock.Now().UTC()
	result := &SweepResult{Scanned: len(records)}
	s.metrics.SweepRecordsScanned.Add(float64(len(records)))

	for _, rec := range records {
		next := services.ComputeStatus(now, rec.DepartureTime)
		if next == rec.Status {
			continue
		}

		applied, err := s.persist(ctx, rec, next, now)
		if err != nil {
			result.Failed++
			s.log.Errorw("Failed to persist status", "id", rec.ID, "from", rec.Status, "to", next, "error", err)
			continue
		}
		if !applied {
			// another writer moved the record first
			s.log.Debugw("Status write lost race", "id", rec.ID, "expected", rec.Status)
			continue
		}

		s.metrics.StatusChangesTotal.WithLabelValues(string(next), "sweeper").Inc()
		result.Changes = append(result.Changes, realtime.StatusChange{
			ID:           rec.ID,
			FlightNumber: rec.FlightNumber,
			Status:       next,
			UpdatedAt:    now,
		})
	}

	if len(result.Changes) > 0 && s.publisher != nil {
		s.publisher.Publish(realtime.StatusBatchChanged{Changes: result.Changes})
	}

	label := "ok"
	if result.Failed > 0 {
		label = "partial"
	}
	s.metrics.SweepTicksTotal.WithLabelValues(label).Inc()
	s.record(result, nil)

	if len(result.Changes) > 0 || result.Failed > 0 {
		s.log.Infow("Sweep complete", "scanned", result.Scanned, "changed", len(result.Changes), "failed", result.Failed)
	}
	return result, nil
}

// persist writes one status change. The write is detached from ctx so a
// shutdown never tears a tick in half, but it is bounded by the write timeout.
func (s *StatusSweeper) persist(ctx context.Context, rec entities.FlightRecord, next entities.FlightStatus, at time.Time) (bool, error) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()
	return s.store.UpdateStatus(writeCtx, &rec, next, at)
}

func (s *StatusSweeper) record(result *SweepResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.clock.Now().UTC()
	s.status.LastTickAt = &at
	s.status.TicksTotal++
	if err != nil {
		s.status.LastError = err.Error()
		return
	}
	s.status.LastError = ""
	s.status.LastScanned = result.Scanned
	s.status.LastChanged = len(result.Changes)
	s.status.LastFailed = result.Failed
}

// Status reports the outcome of the most recent tick.
func (s *StatusSweeper) Status() entities.SweeperStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
