// Package server provides the HTTP API for susume.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/keyword"
	"github.com/hyperjump/susume/internal/recommender"
	"github.com/hyperjump/susume/internal/storage"
)

// Server is the HTTP server for the susume API.
type Server struct {
	session *recommender.Session
	titles  *keyword.TitleIndex
	storage storage.Storage
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. titles and storage
// may be nil; the corresponding endpoints then report unavailability.
func NewServer(
	session *recommender.Session,
	titles *keyword.TitleIndex,
	st storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		session: session,
		titles:  titles,
		storage: st,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router. Exposed separately so tests can drive it
// with httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/v1/recommend", s.handleRecommend)
	r.Post("/api/v1/lookup", s.handleLookup)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
