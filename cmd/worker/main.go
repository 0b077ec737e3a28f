package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/hookline/hookline/config"
	"github.com/hookline/hookline/internal/app"
	"github.com/hookline/hookline/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	var log logger.Logger
	if cfg.IsDevelopment() {
		log = logger.NewConsoleLogger(cfg.LogLevel)
	} else {
		log = logger.NewLogger(cfg.LogLevel)
	}

	workerApp := app.NewWorkerApp(cfg, app.WithWorkerLogger(log))
	if err := workerApp.Initialize(); err != nil {
		log.Fatal("Initialization failed: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	workerApp.Start(ctx)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	log.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()
	if err := workerApp.Shutdown(); err != nil {
		log.Error("Shutdown failed: " + err.Error())
		os.Exit(1)
	}
}
