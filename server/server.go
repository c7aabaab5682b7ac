package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/routesim/converter"
	"github.com/theoremus-urban-solutions/routesim/route"
	"github.com/theoremus-urban-solutions/routesim/sim"
)

// Options configures the HTTP surface
type Options struct {
	Port        int
	AgencyID    string
	ProducerRef string
}

// Server exposes the engine over HTTP and WebSocket
type Server struct {
	engine      *sim.Engine
	routes      *route.Registry
	conv        *converter.Converter
	producerRef string
	validate    *validator.Validate
	cache       *responseCache
	port        int

	srv *http.Server
}

// New creates a server for engine and its route catalog
func New(engine *sim.Engine, routes *route.Registry, opts Options) *Server {
	producer := opts.ProducerRef
	if producer == "" {
		producer = opts.AgencyID
	}
	return &Server{
		engine: engine,
		routes: routes,
		conv: converter.NewConverter(routes, converter.ConverterOptions{
			AgencyID: opts.AgencyID,
			ValidFor: engine.Interval(),
		}),
		producerRef: producer,
		validate:    validator.New(),
		cache:       newResponseCache(),
		port:        opts.Port,
	}
}

// Handler returns the routed mux
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/routes", s.handleListRoutes)
	mux.HandleFunc("GET /api/routes/{id}", s.handleGetRoute)
	mux.HandleFunc("GET /api/vehicles", s.handleListVehicles)
	mux.HandleFunc("POST /api/vehicles", s.handleStartVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}", s.handleGetVehicle)
	mux.HandleFunc("DELETE /api/vehicles/{id}", s.handleCancelVehicle)
	mux.HandleFunc("POST /api/pause", s.handlePause)
	mux.HandleFunc("POST /api/resume", s.handleResume)
	mux.HandleFunc("GET /api/siri/vehicle-monitoring.json", s.handleVehicleMonitoringJSON)
	mux.HandleFunc("GET /api/siri/vehicle-monitoring.xml", s.handleVehicleMonitoringXML)
	mux.HandleFunc("GET /api/gtfsrt/vehicle-positions.pb", s.handleVehiclePositions)
	mux.HandleFunc("GET /ws", s.handleWs)
	return mux
}

// Start listens in the background. A listen failure is fatal.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Infof("server listening on %s", addr)
}

// Shutdown stops accepting requests and closes live streams.
func (s *Server) Shutdown(ctx context.Context) error {
	s.engine.Publisher().Close()
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server shut down successfully")
	return nil
}
