// Package server exposes a built heightfield over HTTP.
package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/heightfield/internal/logger"
	"github.com/Faultbox/heightfield/internal/terrain"
)

// ErrNoTerrain is reported while no terrain has been loaded.
var ErrNoTerrain = errors.New("no terrain loaded")

// Options configures a Server.
type Options struct {
	// Terrain to serve. It may be nil and set later with SetTerrain.
	Terrain *terrain.Terrain

	// Default parametric interval for intersect requests that omit one.
	// A zero T1 means unbounded.
	T0, T1 float64
}

// Server answers ray and height queries against one terrain.
type Server struct {
	terrain atomic.Pointer[terrain.Terrain]
	t0, t1  float64
	log     *zap.Logger
	mux     *http.ServeMux
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.T1 == 0 {
		opts.T1 = math.Inf(1)
	}

	s := &Server{
		t0:  opts.T0,
		t1:  opts.T1,
		log: logger.Named("server"),
		mux: http.NewServeMux(),
	}
	if opts.Terrain != nil {
		s.terrain.Store(opts.Terrain)
	}

	s.handle("POST /v1/intersect", "intersect", s.handleIntersect)
	s.handle("GET /v1/height", "height", s.handleHeight)
	s.handle("GET /v1/stats", "stats", s.handleStats)
	s.handle("GET /v1/mesh.obj", "mesh", s.handleMesh)
	s.mux.HandleFunc("GET /health", handleHealthCheck)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// SetTerrain swaps the served terrain. In-flight requests finish against
// the previous one.
func (s *Server) SetTerrain(t *terrain.Terrain) {
	s.terrain.Store(t)
}

// Terrain returns the served terrain, or nil.
func (s *Server) Terrain() *terrain.Terrain {
	return s.terrain.Load()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handle(pattern, route string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.instrument(route, h))
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.terrain.Load() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ListenAndServe runs the servers until ctx is done, then shuts them down.
func ListenAndServe(ctx context.Context, servers ...*http.Server) {
	log := logger.Named("server")

	go func() {
		<-ctx.Done()

		for _, s := range servers {
			if err := s.Shutdown(context.Background()); err != nil {
				log.Warn("shutting down the server failed",
					zap.String("addr", s.Addr),
					zap.Error(err))
			}
		}
	}()

	var wg sync.WaitGroup

	for _, s := range servers {
		wg.Add(1)

		go func(s *http.Server) {
			defer wg.Done()

			log.Info("starting server", zap.String("addr", s.Addr))

			switch err := s.ListenAndServe(); {
			case err == nil, errors.Is(err, http.ErrServerClosed), errors.Is(err, context.Canceled):
				log.Info("stopping server", zap.String("addr", s.Addr))

			default:
				log.Warn("server stopped",
					zap.String("addr", s.Addr),
					zap.Error(err))
			}
		}(s)
	}

	wg.Wait()
}
