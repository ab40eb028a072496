package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"idservices-admin/internal/config"
	"idservices-admin/pkg/container"
	"idservices-admin/pkg/logger"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Fatal().Err(err).Msg("[Config] Failed to read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[Config] Failed to load")
	}
	logger.Init(cfg.App.Environment)

	c, err := container.NewContainer(context.Background(), cfg, container.RoleWorker)
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	handlers := initializeHandlers(c)

	srv := setupAsynqServer(cfg, handlers)

	scheduler := setupScheduler(cfg)

	if err := startServices(c); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] ✓ Stopped")
}
