// Package web serves the audit review API over the match-decision
// database produced by batch runs.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/parcelgraph/internal/audit"
	"github.com/parcelgraph/internal/web/handlers"
	"github.com/parcelgraph/internal/web/middleware"
)

// Server represents the review web server
type Server struct {
	config     *Config
	store      *audit.Store
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new review server instance
func NewServer(config *Config) (*Server, error) {
	store, err := audit.Open(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	server := &Server{
		config: config,
		store:  store,
	}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	apiHandler := &handlers.APIHandler{Store: s.store}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/runs", apiHandler.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id:[0-9]+}/decisions", apiHandler.ListDecisions).Methods("GET")
	api.HandleFunc("/stats", apiHandler.GetStats).Methods("GET")

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())
}

// Start starts the web server and blocks until interrupted
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting review server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}
	if err := s.store.Close(); err != nil {
		fmt.Printf("Audit database close error: %v\n", err)
	}

	fmt.Println("Server stopped")
	return nil
}
