package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	apiserver "github.com/agentbed/testbed/internal/api_server"
	"github.com/agentbed/testbed/internal/config"
	"github.com/agentbed/testbed/internal/events"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/pkg/log"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		zap.S().Fatalf("reading configuration: %v", err)
	}

	logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	zap.S().Named("main").Info("Starting testbed API service")
	defer zap.S().Named("main").Info("testbed API service stopped")
	zap.S().Named("main").Infof("Using config: %s", cfg)

	db, err := store.InitDB(cfg)
	if err != nil {
		zap.S().Named("main").Fatalf("initializing data store: %v", err)
	}

	datastore := store.NewStore(db)
	defer datastore.Close()

	if err := datastore.InitialMigration(context.Background()); err != nil {
		zap.S().Named("main").Fatalf("running initial migration: %v", err)
	}
	if err := datastore.Seed(); err != nil {
		zap.S().Named("main").Fatalf("seeding data store: %v", err)
	}

	producer := events.NewEventProducer(&events.StdoutWriter{})
	defer func() { _ = producer.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	go func() {
		listener, err := newListener(cfg.Service.Address)
		if err != nil {
			zap.S().Named("main").Fatalf("creating listener: %s", err)
		}

		server := apiserver.New(cfg, datastore, listener, producer)
		if err := server.Run(ctx); err != nil {
			zap.S().Named("main").Fatalf("Error running server: %s", err)
		}
		cancel()
	}()

	go func() {
		listener, err := newListener(cfg.Service.MetricsAddress)
		if err != nil {
			zap.S().Named("main").Fatalf("creating metrics listener: %s", err)
		}

		metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
		if err := metricsServer.Run(ctx); err != nil {
			zap.S().Named("main").Fatalf("Error running metrics server: %s", err)
		}
		cancel()
	}()

	<-ctx.Done()
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
