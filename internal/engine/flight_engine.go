// Package engine wires the flight board core together: the mutation gateway,
// the status sweeper, the session registry and the notifier.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"infinite-experiment/flightboard/internal/common"
	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/metrics"
	"infinite-experiment/flightboard/internal/models/entities"
	"infinite-experiment/flightboard/internal/realtime"
	"infinite-experiment/flightboard/internal/services"
	"infinite-experiment/flightboard/internal/workers"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Searcher is the optional indexed read path.
type Searcher interface {
	Search(ctx context.Context, filter repositories.SearchFilter) ([]entities.FlightRecord, error)
}

type Options struct {
	Clock            common.Clock
	BroadcastUpdates bool
	SweepInterval    time.Duration
	SweepCooldown    time.Duration
	WriteTimeout     time.Duration
	SendTimeout      time.Duration
	QueueSize        int
	BoardCacheTTL    time.Duration
	Logger           *zap.SugaredLogger
	Metrics          *metrics.MetricsRegistry
}

// FlightEngine is the surface the HTTP and websocket layers talk to.
// Mutations return once the record is persisted and its events are queued.
type FlightEngine struct {
	store    repositories.RecordStore
	search   Searcher
	cache    common.CacheInterface
	cacheTTL time.Duration

	gateway  *services.MutationGateway
	registry *realtime.Registry
	notifier *realtime.Notifier
	sweeper  *workers.StatusSweeper

	log     *zap.SugaredLogger
	metrics *metrics.MetricsRegistry
}

// New builds an engine. search and cache may be nil.
func New(store repositories.RecordStore, search Searcher, cache common.CacheInterface, opts Options) *FlightEngine {
	log := logging.OrNamed(opts.Logger, "engine")
	m := metrics.OrDiscard(opts.Metrics)
	if opts.BoardCacheTTL <= 0 {
		opts.BoardCacheTTL = workers.DefaultSweepInterval
	}

	e := &FlightEngine{
		store:    store,
		search:   search,
		cache:    cache,
		cacheTTL: opts.BoardCacheTTL,
		log:      log,
		metrics:  m,
	}

	e.gateway = services.NewMutationGateway(store, opts.Clock, services.GatewayOptions{
		BroadcastUpdates: opts.BroadcastUpdates,
		Logger:           log.Named("gateway"),
	})
	e.registry = realtime.NewRegistry(log.Named("registry"), m)
	e.notifier = realtime.NewNotifier(e.registry, realtime.NotifierOptions{
		QueueSize:   opts.QueueSize,
		SendTimeout: opts.SendTimeout,
		Logger:      log.Named("notifier"),
		Metrics:     m,
	})
	e.sweeper = workers.NewStatusSweeper(store, opts.Clock, e, workers.SweeperOptions{
		Interval:     opts.SweepInterval,
		Cooldown:     opts.SweepCooldown,
		WriteTimeout: opts.WriteTimeout,
		Logger:       log.Named("sweeper"),
		Metrics:      m,
	})

	return e
}

// Run drives the sweeper and the notifier until ctx is cancelled. The
// notifier outlives the sweeper so the last batch is still delivered.
func (e *FlightEngine) Run(ctx context.Context) error {
	notifyCtx, stopNotifier := context.WithCancel(context.WithoutCancel(ctx))
	defer stopNotifier()

	var g errgroup.Group
	g.Go(func() error { return e.notifier.Run(notifyCtx) })

	e.sweeper.Run(ctx)
	stopNotifier()

	return g.Wait()
}

// Publish invalidates the board cache and queues events for every session.
func (e *FlightEngine) Publish(events ...realtime.Event) {
	if len(events) == 0 {
		return
	}
	e.invalidateBoard()
	e.notifier.Publish(events...)
}

func (e *FlightEngine) invalidateBoard() {
	if e.cache != nil {
		e.cache.Delete(string(constants.CachePrefixFlightBoard))
	}
}

func (e *FlightEngine) Create(ctx context.Context, in services.CreateFlightInput) (*entities.FlightRecord, error) {
	res, err := e.gateway.CreateRecord(ctx, in)
	e.observe("create", err)
	if err != nil {
		return nil, err
	}
	e.emit(res)
	return res.Flight, nil
}

func (e *FlightEngine) Update(ctx context.Context, id string, in services.UpdateFlightInput) (*entities.FlightRecord, error) {
	res, err := e.gateway.UpdateRecord(ctx, id, in)
	e.observe("update", err)
	if err != nil {
		return nil, err
	}
	e.emit(res)
	return res.Flight, nil
}

func (e *FlightEngine) Delete(ctx context.Context, id string) error {
	res, err := e.gateway.DeleteRecord(ctx, id)
	e.observe("delete", err)
	if err != nil {
		return err
	}
	e.emit(res)
	return nil
}

func (e *FlightEngine) Get(ctx context.Context, id string) (*entities.FlightRecord, error) {
	rec, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, services.FromStoreError(err, id, "")
	}
	return rec, nil
}

// List returns the whole board ordered by departure, served from cache when warm.
func (e *FlightEngine) List(ctx context.Context) ([]entities.FlightRecord, error) {
	if e.cache == nil {
		return e.loadBoard(ctx)
	}

	key := string(constants.CachePrefixFlightBoard)
	var loaded []entities.FlightRecord
	data, err := e.cache.GetOrSet(key, e.cacheTTL, func() ([]byte, error) {
		flights, err := e.loadBoard(ctx)
		if err != nil {
			return nil, err
		}
		loaded = flights
		return json.Marshal(flights)
	})
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		e.metrics.CacheMissesTotal.WithLabelValues("board").Inc()
		return loaded, nil
	}

	var flights []entities.FlightRecord
	if err := json.Unmarshal(data, &flights); err != nil {
		e.log.Warnw("Discarding unreadable board cache entry", "error", err)
		e.cache.Delete(key)
		return e.loadBoard(ctx)
	}
	e.metrics.CacheHitsTotal.WithLabelValues("board").Inc()
	return flights, nil
}

func (e *FlightEngine) loadBoard(ctx context.Context) ([]entities.FlightRecord, error) {
	flights, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, services.FromStoreError(err, "", "")
	}
	if flights == nil {
		flights = []entities.FlightRecord{}
	}
	return flights, nil
}

// Search filters the board through the indexed read path, or in memory when
// none is configured.
func (e *FlightEngine) Search(ctx context.Context, filter repositories.SearchFilter) ([]entities.FlightRecord, error) {
	if e.search != nil {
		flights, err := e.search.Search(ctx, filter)
		if err != nil {
			return nil, services.FromStoreError(err, "", "")
		}
		return flights, nil
	}

	all, err := e.loadBoard(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.FlightRecord, 0, len(all))
	for _, f := range all {
		if matches(f, filter) {
			out = append(out, f)
		}
	}
	return out, nil
}

func matches(f entities.FlightRecord, filter repositories.SearchFilter) bool {
	if filter.Status != "" && f.Status != filter.Status {
		return false
	}
	if d := strings.TrimSpace(filter.Destination); d != "" &&
		!strings.Contains(strings.ToLower(f.Destination), strings.ToLower(d)) {
		return false
	}
	if fn := strings.TrimSpace(filter.FlightNumber); fn != "" &&
		!strings.Contains(strings.ToUpper(f.FlightNumber), strings.ToUpper(fn)) {
		return false
	}
	return true
}

// OnSessionJoin subscribes a session to the board. Rejoining is a no-op.
func (e *FlightEngine) OnSessionJoin(s realtime.Session) bool {
	return e.registry.Join(s)
}

// OnSessionLeave handles both explicit leave and disconnect.
func (e *FlightEngine) OnSessionLeave(sessionID string) bool {
	return e.registry.Leave(sessionID)
}

// Sweep runs a single reconciliation pass outside the periodic loop.
func (e *FlightEngine) Sweep(ctx context.Context) (*workers.SweepResult, error) {
	return e.sweeper.Tick(ctx)
}

func (e *FlightEngine) SweeperStatus() entities.SweeperStatus {
	st := e.sweeper.Status()
	st.ActiveViewer = e.registry.Count()
	return st
}

func (e *FlightEngine) ActiveSessions() int {
	return e.registry.Count()
}

func (e *FlightEngine) emit(res *services.MutationResult) {
	for _, ev := range res.Events {
		if batch, ok := ev.(realtime.StatusBatchChanged); ok {
			for _, c := range batch.Changes {
				e.metrics.StatusChangesTotal.WithLabelValues(string(c.Status), "gateway").Inc()
			}
		}
	}
	if len(res.Events) == 0 {
		// field edits carry no events when update broadcasts are off
		e.invalidateBoard()
		return
	}
	e.Publish(res.Events...)
}

func (e *FlightEngine) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(services.KindStoreUnavailable)
		var fe *services.FlightError
		if errors.As(err, &fe) {
			result = string(fe.Kind)
		}
	}
	e.metrics.MutationsTotal.WithLabelValues(op, strings.ToLower(result)).Inc()
}
