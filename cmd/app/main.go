package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/goaero/api"
	"github.com/Domenick1991/goaero/config"
	"github.com/Domenick1991/goaero/internal/bootstrap"
	"github.com/Domenick1991/goaero/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, logg)
	if err != nil {
		logg.Error("init app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Flights.Refresh(ctx); err != nil {
		logg.Warn("warm flights cache", "error", err)
	}

	router := api.NewRouter(api.Dependencies{
		Auth:        app.Auth,
		Flights:     app.Flights,
		Bookings:    app.Bookings,
		Reports:     app.Reports,
		Logger:      logg,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	if err := bootstrap.Run(ctx, cfg, router, logg); err != nil {
		logg.Error("server error", "error", err)
		os.Exit(1)
	}
}
