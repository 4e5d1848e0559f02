package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/goaero/config"
	"github.com/Domenick1991/goaero/internal/bootstrap"
	"github.com/Domenick1991/goaero/internal/email"
	"github.com/Domenick1991/goaero/internal/kafka"
	"github.com/Domenick1991/goaero/internal/logger"
	"github.com/Domenick1991/goaero/internal/worker"
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

	opts := []worker.Option{worker.WithLogger(logg.With("component", "worker"))}
	if app.Cache != nil {
		opts = append(opts, worker.WithCacheRefresher(app.Flights))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		sender, err := email.NewSender(cfg.SMTP)
		if err != nil {
			logg.Error("init email sender", "error", err)
			os.Exit(1)
		}
		opts = append(opts, worker.WithNotifications(consumer, sender))
	}

	if err := worker.New(cfg.Worker, app.Bookings, opts...).Run(ctx); err != nil {
		logg.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
