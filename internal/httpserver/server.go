// Package httpserver hosts the public JSON API on gin.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/ratelimit"
)

const limiterIdleTTL = 10 * time.Minute

// Server wraps a gin engine and its http.Server.
type Server struct {
	cfg     config.ServerConfig
	engine  *gin.Engine
	server  *http.Server
	limiter *ratelimit.KeyedLimiter
	logger  logger.LoggerInterface
}

// New builds the engine with recovery, request logging, CORS, per-client
// rate limiting and gzip, in that order.
func New(cfg config.ServerConfig, environment string, log logger.LoggerInterface) *Server {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := ratelimit.NewKeyed(cfg.RateLimitRPS, cfg.RateLimitBurst, limiterIdleTTL)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		RequestLogger(log),
		CORS(cfg.AllowedOrigins),
		RateLimit(limiter),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
	})

	return &Server{
		cfg:     cfg,
		engine:  engine,
		limiter: limiter,
		logger:  log,
	}
}

// Engine exposes the router for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the engine as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	go s.limiter.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info(ctx, "http server shutting down")
	return s.server.Shutdown(shutdownCtx)
}
