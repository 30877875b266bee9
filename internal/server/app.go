// Package server wires configuration, storage, services and transports into
// a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/config"
	"github.com/dmitrijs2005/eventgraph/internal/server/graph"
	"github.com/dmitrijs2005/eventgraph/internal/server/httpserver"
	"github.com/dmitrijs2005/eventgraph/internal/server/metrics"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventgraph/internal/server/services"

	gs "github.com/dmitrijs2005/eventgraph/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	redis      *redis.Client
	httpServer *httpserver.Server
	grpcServer *gs.GRPCServer
}

// NewApp connects to the store, applies migrations and builds the servers.
// Any error here is fatal for the process.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if c.Mode != config.ModeDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	logger.Info(ctx, "storage ready", "engine", repos.Engine())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	us := services.NewUserService(repos, c, logger)
	es := services.NewEventService(repos, c, logger)
	cs := services.NewCommentService(repos, logger)

	schema, err := graph.NewSchema(us, es, cs, logger, m)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("graphql schema error: %w", err)
	}

	app := &App{config: c, logger: logger, repos: repos}

	opts := httpserver.Options{Metrics: m, Gatherer: reg}
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		opts.Cache = httpserver.NewResponseCache(app.redis, c.CacheTTL, logger, m)
	}
	if c.RateLimitRPS > 0 {
		opts.Limiter = httpserver.NewRateLimiter(httpserver.LimiterConfig{
			RPS:   c.RateLimitRPS,
			Burst: c.RateLimitBurst,
		}, m)
	}
	app.httpServer = httpserver.NewServer(c, logger, schema, us, repos, opts)

	if c.GRPCHealthAddr != "" {
		app.grpcServer = gs.NewGRPCServer(c.GRPCHealthAddr, logger, repos)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server", "error", err)
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.close()
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "close redis", "error", err)
		}
	}
	if err := app.repos.Close(ctx); err != nil {
		app.logger.Warn(ctx, "close storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
