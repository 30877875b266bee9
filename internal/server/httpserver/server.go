// Package httpserver serves the GraphQL endpoint over HTTP together with
// health, readiness and metrics routes.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/config"
	"github.com/dmitrijs2005/eventgraph/internal/server/graph"
	"github.com/dmitrijs2005/eventgraph/internal/server/metrics"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the optional collaborators. Nil fields disable the
// corresponding feature.
type Options struct {
	Cache    *ResponseCache
	Limiter  *RateLimiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	schema          *graph.Schema
	auth            Authenticator
	store           Pinger
	cache           *ResponseCache
	limiter         *RateLimiter
	metrics         *metrics.Metrics
	logger          logging.Logger
	handler         http.Handler
}

func NewServer(cfg *config.Config, l logging.Logger, schema *graph.Schema, a Authenticator, store Pinger, opts Options) *Server {
	s := &Server{
		address:         cfg.HTTPAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		schema:          schema,
		auth:            a,
		store:           store,
		cache:           opts.Cache,
		limiter:         opts.Limiter,
		metrics:         opts.Metrics,
		logger:          l.With("module", "http_server"),
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}

	engine := gin.New()
	// ClientIP keys the rate limiter, so forwarded headers only count from known proxies.
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		s.logger.Warn(context.Background(), "ignoring trusted proxies", "error", err)
		_ = engine.SetTrustedProxies(nil)
	}
	engine.Use(gin.Recovery(), requestID(), s.accessLog())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	if opts.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := engine.Group("/graphql")
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}
	api.Use(s.authenticate())
	api.POST("", s.handleGraphQL)
	api.GET("", s.handleGraphQL)

	s.handler = cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID, headerCache},
		MaxAge:         300,
	})(engine)

	return s
}

// Handler returns the full middleware chain; used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.limiter != nil {
		s.limiter.Start(ctx)
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
