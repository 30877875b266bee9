package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server"
	"github.com/dmitrijs2005/eventgraph/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if cfg.DevSecret {
		logger.Warn(ctx, "JWT_SECRET is not set; using the insecure development secret")
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
