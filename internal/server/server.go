// Package server exposes the style rewriter over HTTP, so that map
// publishing pipelines can rewrite styles without shelling out to the CLI.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config holds the server configuration
type Config struct {
	Host            string
	Port            int
	EnableMetrics   bool
	EnableCORS      bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            8080,
		EnableMetrics:   true,
		EnableCORS:      true,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server is the qmlfix rewrite service.
type Server struct {
	config *Config
	server *http.Server

	rewritesTotal   prometheus.Counter
	rewriteOutcomes *prometheus.CounterVec
	rewriteDuration prometheus.Histogram
}

// New creates a new rewrite server registering its metrics with the
// default prometheus registerer.
func New(config *Config) (*Server, error) {
	return NewWithRegistry(config, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new rewrite server with a custom metrics
// registerer. Tests use this to avoid duplicate registration.
func NewWithRegistry(config *Config, registerer prometheus.Registerer) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{
		config: config,

		rewritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qmlfix_rewrites_total",
			Help: "Total number of style rewrite requests",
		}),
		rewriteOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qmlfix_rewrite_outcomes_total",
			Help: "Rewrite requests by outcome",
		}, []string{"outcome"}),
		rewriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "qmlfix_rewrite_duration_seconds",
			Help: "Style rewrite duration in seconds",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(s.rewritesTotal)
		registerer.MustRegister(s.rewriteOutcomes)
		registerer.MustRegister(s.rewriteDuration)
	}

	return s, nil
}

// Router builds the HTTP routing table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	if s.config.EnableCORS {
		router.Use(s.corsMiddleware)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.HandleFunc("/rewrite", s.rewriteStyle).Methods("POST")

	if s.config.EnableCORS {
		api.Methods("OPTIONS").HandlerFunc(s.handleOptions)
	}

	if s.config.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler())
	}

	router.HandleFunc("/health", s.healthCheck)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Info().
		Str("addr", addr).
		Bool("metrics", s.config.EnableMetrics).
		Msg("Starting qmlfix server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	log.Info().Msg("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// StartWithGracefulShutdown starts the server and handles graceful shutdown
func (s *Server) StartWithGracefulShutdown() error {
	if err := s.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer shutdownCancel()

		if err := s.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}

		cancel()
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutdown complete")
	return nil
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// handleOptions handles CORS preflight requests
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	// CORS headers are already set by middleware
	w.WriteHeader(http.StatusOK)
}
