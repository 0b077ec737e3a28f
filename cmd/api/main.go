package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	appInstance := app.NewApp(cfg, app.WithLogger(log))
	if err := appInstance.Initialize(); err != nil {
		log.Fatal("Initialization failed: " + err.Error())
	}

	serverError := make(chan error, 1)
	go func() {
		serverError <- appInstance.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverError:
		if err != nil {
			log.Error("Server error: " + err.Error())
		}
	case sig := <-shutdown:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := appInstance.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed: " + err.Error())
		os.Exit(1)
	}
}
