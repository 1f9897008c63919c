package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fakeam/internal/config"
	"fakeam/internal/engine"
	"fakeam/internal/events"
	"fakeam/internal/generator"
	"fakeam/internal/handlers"
	"fakeam/internal/kafka"
	"fakeam/internal/logger"
	"fakeam/internal/middleware"
	"fakeam/internal/worker"
)

// Server is the high-level coordinator: it owns the store, the HTTP
// surface, the workload generator's tick loop, and the event pipeline.
type Server struct {
	cfg        *config.Config
	store      *engine.Store
	gen        *generator.Generator
	api        *handlers.API
	httpServer *http.Server
	publisher  events.Publisher
	workerPool *worker.Pool
	eventChan  chan *events.Event
	wg         sync.WaitGroup
	tickWg     sync.WaitGroup
}

// New constructs a Server with the given config.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:       cfg,
		eventChan: make(chan *events.Event, cfg.Events.BufferSize),
	}
}

// Run starts background goroutines and blocks until context cancelled.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("server")
	log.Info().Msg("server starting")

	if err := s.initPublisher(); err != nil {
		log.Error().Err(err).Msg("failed to initialize event publisher")
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	s.initWorkerPool()
	s.workerPool.Start()

	s.initStore()
	s.initHTTPServer()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info().Str("addr", s.cfg.Server.Addr).Msg("starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	if s.cfg.Generator.Enabled {
		s.gen.Seed(time.Now().UTC())
		s.tickWg.Add(1)
		go func() {
			defer s.tickWg.Done()
			s.tickLoop(ctx)
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reportStats(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	return s.shutdown()
}

// Store exposes the underlying store, for tests and embedding.
func (s *Server) Store() *engine.Store {
	return s.store
}

// initPublisher wires the Kafka event stream when brokers are configured,
// a discarding publisher otherwise.
func (s *Server) initPublisher() error {
	log := logger.WithComponent("server")

	if !s.cfg.Events.Enabled() {
		log.Info().Msg("no event brokers configured, events disabled")
		s.publisher = events.NewNoopPublisher()
		return nil
	}

	producer, err := kafka.NewProducer(s.cfg.Events)
	if err != nil {
		return err
	}
	s.publisher = producer
	log.Info().
		Strs("brokers", s.cfg.Events.Brokers).
		Str("topic", s.cfg.Events.Topic).
		Msg("kafka event producer initialized")
	return nil
}

// initWorkerPool initializes the event worker pool
func (s *Server) initWorkerPool() {
	log := logger.WithComponent("server")
	s.workerPool = worker.NewPool(worker.Config{
		Publisher:    s.publisher,
		EventChan:    s.eventChan,
		Workers:      s.cfg.Events.Workers,
		BatchSize:    s.cfg.Events.BatchSize,
		BatchTimeout: s.cfg.Events.BatchTimeout,
	})
	log.Info().Int("workers", s.cfg.Events.Workers).Msg("event worker pool initialized")
}

// initStore builds the store and the generator over it.
func (s *Server) initStore() {
	s.store = engine.NewStore(engine.Config{
		MaxAlerts: s.cfg.Generator.MaxAlerts,
		Events:    s.eventChan,
	})
	s.gen = generator.New(s.store, s.cfg.Generator, nil)
}

// initHTTPServer initializes the HTTP server with handlers
func (s *Server) initHTTPServer() {
	mux := http.NewServeMux()

	s.api = handlers.New(handlers.Config{
		Store:        s.store,
		PickReceiver: s.gen.PickReceiver,
		Receivers:    generator.ReceiverNames,
	})
	s.api.Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /stats", s.statsHandler)

	s.httpServer = &http.Server{
		Addr: s.cfg.Server.Addr,
		Handler: middleware.Chain(
			mux,
			middleware.Recovery,
			middleware.Logging,
		),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
}

// tickLoop drives the workload generator and the store sweep. Tick times
// come from one clock read per iteration, so the store always observes
// monotonically non-decreasing now values.
func (s *Server) tickLoop(ctx context.Context) {
	log := logger.WithComponent("server")
	ticker := time.NewTicker(s.cfg.Generator.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UTC()
			s.gen.Tick(now)
			s.store.Tick(now)
			log.Debug().Time("now", now).Msg("tick completed")
		}
	}
}

// shutdown performs graceful shutdown
func (s *Server) shutdown() error {
	log := logger.WithComponent("server")
	log.Info().Msg("initiating graceful shutdown")

	// 1. Stop accepting new HTTP requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Wait for the tick loop so nothing emits into the channel anymore
	s.tickWg.Wait()

	// 3. Close the event channel so workers drain and exit
	log.Info().Msg("closing event channel")
	close(s.eventChan)

	// 4. Wait for workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		s.workerPool.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("workers stopped gracefully")
	case <-time.After(15 * time.Second):
		log.Warn().Msg("worker shutdown timeout - forcing exit")
	}

	// 5. Close publisher
	log.Info().Msg("closing event publisher")
	if err := s.publisher.Close(); err != nil {
		log.Error().Err(err).Msg("publisher close error")
	}

	s.wg.Wait()

	log.Info().Msg("server stopped gracefully")
	return nil
}

// reportStats periodically logs statistics
func (s *Server) reportStats(ctx context.Context) {
	log := logger.WithComponent("server")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts := s.store.Counts()
			workerStats := s.workerPool.Stats()

			log.Info().
				Int("alerts", counts.Alerts).
				Int("silences", counts.Silences).
				Int("groups", counts.Groups).
				Uint64("events_published", workerStats.Processed).
				Uint64("events_failed", workerStats.Failed).
				Int("queue_size", len(s.eventChan)).
				Dur("uptime", s.api.Uptime()).
				Msg("stats")
		}
	}
}

// statsHandler returns current statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	counts := s.store.Counts()
	workerStats := s.workerPool.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"store": {
			"alerts": %d,
			"silences": %d,
			"groups": %d
		},
		"events": {
			"published": %d,
			"failed": %d,
			"buffered": %d,
			"capacity": %d
		}
	}`,
		counts.Alerts,
		counts.Silences,
		counts.Groups,
		workerStats.Processed,
		workerStats.Failed,
		len(s.eventChan),
		cap(s.eventChan),
	)
}
