// Package server exposes the connector over HTTP: the sync table, the tag
// action and the host's persisted rows.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sproutsync/host"
	"sproutsync/storage"
)

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrSyncInProgress       = errors.New("a sync run is already in progress")
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8089"

const requestTimeout = 5 * time.Minute

// Connector is the connector surface the server drives.
type Connector interface {
	host.VideoSyncer
	host.VideoTagger
	ConnectionName(ctx context.Context) (string, error)
}

// Server represents the HTTP server
type Server struct {
	client   Connector
	store    storage.Store
	manager  *host.SyncManager
	addr     string
	router   *chi.Mux
	server   *http.Server
	listener net.Listener
	running  bool
	mu       sync.RWMutex
	syncMu   sync.Mutex
}

// New creates a server listening on addr. Sync runs started through the
// server use a SyncManager over client and store.
func New(client Connector, store storage.Store, addr string, opts ...host.SyncManagerOption) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		client:  client,
		store:   store,
		manager: host.NewSyncManager(client, store, opts...),
		addr:    addr,
		router:  chi.NewRouter(),
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/schema", s.handleSchema)
		r.Get("/connection", s.handleConnection)

		r.Get("/videos", s.handleListVideos)
		r.Get("/videos/sync", s.handleSyncPage)
		r.Post("/videos/{videoID}/tags", s.handleAddTag)

		r.Post("/sync", s.handleRunSync)
		r.Get("/sync/state", s.handleSyncState)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.server = httpServer
	s.running = true

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("sproutsync: server error: %v", err)
		}
	}()

	log.Printf("sproutsync: listening on %s", listener.Addr())
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServerNotRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.running = false
	s.server = nil
	s.listener = nil

	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listening address, or the configured one when stopped.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
