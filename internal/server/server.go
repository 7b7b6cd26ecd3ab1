// Package server serves a read-only preview of one project over HTTP: the
// item list, reveal plans, rendered frames, the editor canvas and the
// exported quiz. It is meant for a single author on localhost.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/imagepuzzler/pkg/pipeline"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8710"

// Options configure a Server.
type Options struct {
	Addr   string
	Logger *log.Logger
}

// Server is the preview HTTP server. The project must not be modified
// while the server runs.
type Server struct {
	httpServer *http.Server
	project    *puzzle.Project
	runner     *pipeline.Runner
	logger     *log.Logger
}

// New creates a server for p that renders through runner.
func New(p *puzzle.Project, runner *pipeline.Runner, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{
		project: p,
		runner:  runner,
		logger:  opts.Logger,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// GIF and quiz renders of large projects take a while.
		WriteTimeout:   2 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

// Routes returns the router with all endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/quiz.html", s.handleQuiz)

	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", s.handleItems)
		r.Route("/{index}", func(r chi.Router) {
			r.Use(s.itemIndex)
			r.Get("/", s.handleItem)
			r.Get("/plan", s.handlePlan)
			r.Get("/frame.png", s.handleFrame)
			r.Get("/reveal.gif", s.handleGIF)
			r.Get("/editor.png", s.handleEditor)
		})
	})
	return r
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", s.httpServer.Addr, "images", s.project.Len())
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down preview server")
	return s.httpServer.Shutdown(ctx)
}
