// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/FairForge/adaptcache/internal/config"
	"github.com/FairForge/adaptcache/internal/learning"
	"github.com/FairForge/adaptcache/internal/store"
)

// Server exposes the engine's operational surface over HTTP.
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	engine     *learning.Engine
	store      *store.Memory
	router     chi.Router
	httpServer *http.Server
	startTime  time.Time
}

// NewServer creates the operational HTTP server.
func NewServer(cfg *config.Config, logger *zap.Logger, engine *learning.Engine, mem *store.Memory) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		engine:    engine,
		store:     mem,
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.Get("/health", s.handleHealth)
	s.router.Method("GET", "/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/patterns", s.handleGetPatterns)
		r.Get("/stats", s.handleGetStats)
		r.Post("/optimize", s.handleOptimize)
		r.Post("/warm", s.handleWarm)
	})
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("api server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleGetPatterns(w http.ResponseWriter, r *http.Request) {
	strategy, snapshot := s.engine.PatternAnalysis()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_strategy": strategy,
		"strategy_params": s.engine.StrategyParams(strategy),
		"snapshot":        snapshot,
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"store":    stats,
		"hit_rate": stats.HitRate(),
		"history":  s.engine.Recorder().Size(),
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	s.engine.ForceOptimization()
	strategy, snapshot := s.engine.PatternAnalysis()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_strategy": strategy,
		"pattern":         snapshot.Pattern,
		"confidence":      snapshot.Confidence,
	})
}

// warmRequest is the body of POST /api/v1/warm.
type warmRequest struct {
	Strategy learning.WarmStrategy `json:"strategy"`
	Limit    int                   `json:"limit"`
}

func (s *Server) handleWarm(w http.ResponseWriter, r *http.Request) {
	var req warmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Strategy == "" {
		req.Strategy = learning.WarmFrequency
	}

	s.engine.WarmCache(req.Strategy, req.Limit)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "warming_started",
		"strategy": req.Strategy,
		"limit":    req.Limit,
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
