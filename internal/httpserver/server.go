package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-response-cache/internal/cache/service"
	"go-response-cache/internal/interfaces"
	"go-response-cache/internal/middleware"
)

// Server is the admin HTTP server: health, metrics and cache management
type Server struct {
	cacheService *service.CacheService
	dedup        *middleware.Deduplicator
	classifier   interfaces.CacheRulesClassifier
	addr         string
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a new admin HTTP server listening on addr
func NewServer(
	addr string,
	cacheService *service.CacheService,
	dedup *middleware.Deduplicator,
	classifier interfaces.CacheRulesClassifier,
	logger *zap.Logger,
) *Server {
	s := &Server{
		cacheService: cacheService,
		dedup:        dedup,
		classifier:   classifier,
		addr:         addr,
		logger:       logger,
	}
	s.server = &http.Server{
		Handler:      s.createRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start serves until Stop is called
func (s *Server) Start() error {
	listener, err := listen(s.addr, s.logger)
	if err != nil {
		return err
	}

	s.logger.Info("Starting admin HTTP server", zap.String("addr", s.addr))
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping admin HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// createRouter creates and configures the HTTP router
func (s *Server) createRouter() *mux.Router {
	router := mux.NewRouter()

	// Cache endpoints
	router.HandleFunc("/cache/clear", s.handleClear).Methods("POST")
	router.HandleFunc("/cache/stats", s.handleStats).Methods("GET")

	// Health check
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, &HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC(),
	})
}

// parseRequest parses JSON request body
func (s *Server) parseRequest(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	defer func() { _ = r.Body.Close() }()

	return json.Unmarshal(body, v)
}

// writeResponse writes JSON response
func (s *Server) writeResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeErrorResponse writes error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to write error response", zap.Error(err))
	}
}
