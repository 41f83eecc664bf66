package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/vibeframe/vibeframe/internal/db"
	"github.com/vibeframe/vibeframe/internal/docstore"
	"github.com/vibeframe/vibeframe/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port             int
	AllowAll         bool // allow all CORS origins (dev mode)
	APIKey           string
	Model            string
	MobileBreakpoint int
}

// Server is the vibeframe preview orchestration host.
type Server struct {
	cfg        Config
	db         *db.DB
	sessions   *session.Store
	docs       *docstore.Store
	client     *openai.Client
	router     chi.Router
	httpServer *http.Server

	mu       sync.Mutex
	runtimes map[string]*Runtime
}

// New creates a server with all dependencies. client may be nil when no
// generation provider is configured; generation endpoints then fail
// cleanly while the orchestration surface keeps working.
func New(cfg Config, database *db.DB, client *openai.Client) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		sessions: session.NewStore(database),
		docs:     docstore.NewStore(database),
		client:   client,
		runtimes: make(map[string]*Runtime),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.registerRoutes(r)

	return r
}

// Router returns the chi router (tests mount extra routes through it).
func (s *Server) Router() chi.Router { return s.router }

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store { return s.sessions }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("vibeframe host listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and tears down all session
// runtimes, releasing their observers and timers even mid-stream.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, rt := range s.runtimes {
		rt.Close()
		delete(s.runtimes, id)
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
