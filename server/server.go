// Package server hosts a live layout simulation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/TFMV/notegraph/models"
	"github.com/TFMV/notegraph/physics"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SessionHeader carries the server's session id on every response.
const SessionHeader = "X-Notegraph-Session"

// Config for the server
type Config struct {
	Host        string
	Port        int
	StartDelay  time.Duration // delay between loading a snapshot and starting the loop
	SettleDelay time.Duration // drag release delay
	Scheduler   physics.Scheduler
	DebugMode   bool
}

// Server owns one simulation and exposes it to a rendering client.
type Server struct {
	cfg     Config
	session string
	log     *log.Entry

	sim    *physics.Simulation[models.Payload]
	drag   *physics.Drag[models.Payload]
	sched  physics.Scheduler
	frames <-chan physics.Frame[models.Payload]

	mu          sync.Mutex
	name        string
	latest      physics.Frame[models.Payload]
	startSeq    uint64
	startCancel func()

	mux *http.ServeMux
}

// New builds a server around g and schedules the first run StartDelay later.
func New(g *models.Graph, cfg Config, simOpts ...physics.Option) *Server {
	if cfg.Scheduler == nil {
		cfg.Scheduler = physics.TimerScheduler{}
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = physics.DefaultSettleDelay
	}

	session := uuid.New().String()
	entry := log.WithField("caller", "server").WithField("session", session)

	sink, frames := physics.NewChannelSink[models.Payload]()
	opts := append(append([]physics.Option{}, simOpts...),
		physics.WithScheduler(cfg.Scheduler),
		physics.WithLogger(entry.WithField("component", "simulation")),
	)
	sim := physics.New(g.Inputs(), g.LayoutEdges(), sink, opts...)

	s := &Server{
		cfg:     cfg,
		session: session,
		log:     entry,
		sim:     sim,
		drag:    physics.NewDrag(sim, cfg.SettleDelay),
		sched:   cfg.Scheduler,
		frames:  frames,
		name:    g.Name,
		latest:  physics.Frame[models.Payload]{Nodes: sim.Nodes()},
		mux:     http.NewServeMux(),
	}
	s.routes()
	s.scheduleStart()

	entry.WithFields(log.Fields{
		"graph": g.Name,
		"nodes": len(g.Nodes),
		"edges": len(g.Edges),
	}).Info("graph loaded")
	return s
}

// Session returns the id stamped on responses.
func (s *Server) Session() string {
	return s.session
}

// Simulation exposes the hosted simulation.
func (s *Server) Simulation() *physics.Simulation[models.Payload] {
	return s.sim
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.withSession(s.mux)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", server.Addr).Info("starting server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Close stops the simulation and any pending delayed start.
func (s *Server) Close() {
	s.cancelStart()
	s.sim.Stop()
}

// Latest returns the most recent frame the simulation emitted.
func (s *Server) Latest() physics.Frame[models.Payload] {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case f := <-s.frames:
		s.latest = f
	default:
	}
	return s.latest
}

func (s *Server) graphName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Server) setGraphName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *Server) scheduleStart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startCancel != nil {
		s.startCancel()
	}
	s.startSeq++
	seq := s.startSeq
	s.startCancel = s.sched.After(s.cfg.StartDelay, func() {
		s.mu.Lock()
		if seq != s.startSeq {
			s.mu.Unlock()
			return
		}
		s.startCancel = nil
		s.mu.Unlock()

		s.log.Debug("starting simulation")
		s.sim.Start()
	})
}

func (s *Server) cancelStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startSeq++
	if s.startCancel != nil {
		s.startCancel()
		s.startCancel = nil
	}
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(SessionHeader, s.session)
		if s.cfg.DebugMode {
			s.log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Debug("request")
		}
		next.ServeHTTP(w, r)
	})
}
