package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"infinite-experiment/flightboard/internal/api"
	"infinite-experiment/flightboard/internal/common"
	"infinite-experiment/flightboard/internal/config"
	"infinite-experiment/flightboard/internal/db"
	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/engine"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/metrics"
	"infinite-experiment/flightboard/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Flight board starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"cache_backend", cfg.CacheBackend,
		"sweep_interval", cfg.SweepInterval.String(),
	)

	orm, err := db.OpenORM(cfg)
	if err != nil {
		logging.Fatal("Failed to open flight store", "error", err)
	}
	if err := db.Migrate(orm); err != nil {
		logging.Fatal("Failed to migrate flight store", "error", err)
	}

	searchDB, err := db.OpenSearchDB(cfg, orm)
	if err != nil {
		logging.Fatal("Failed to open search connection", "error", err)
	}

	cache := common.NewCache(cfg)
	defer cache.Close()

	search := repositories.NewFlightSearchRepository(searchDB)
	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	eng := engine.New(repositories.NewFlightRepository(orm), search, cache, engine.Options{
		BroadcastUpdates: cfg.BroadcastUpdates,
		SweepInterval:    cfg.SweepInterval,
		SweepCooldown:    cfg.SweepCooldown,
		WriteTimeout:     cfg.WriteTimeout,
		SendTimeout:      cfg.SendTimeout,
		QueueSize:        cfg.QueueSize,
		BoardCacheTTL:    cfg.BoardCacheTTL,
		Logger:           logging.Named("engine"),
		Metrics:          metricsReg,
	})

	router := routes.RegisterRoutes(routes.Dependencies{
		Config: cfg,
		Engine: eng,
		Checks: map[string]api.Pinger{
			"database": search,
			"cache":    cache,
		},
		Metrics: metricsReg,
		UpSince: time.Now(),
	})

	// metrics endpoint sits outside the chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return eng.Run(gctx)
	})

	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logging.Info("Server stopped")
}
