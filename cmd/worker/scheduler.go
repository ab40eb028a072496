package main

import (
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/config"
	"idservices-admin/internal/infrastructure/queue"
	"idservices-admin/pkg/container"
)

// asynqScheduler wraps queue.Scheduler with additional functionality
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *config.Config) *asynqScheduler {
	scheduler, err := queue.NewScheduler(container.RedisClientOpt(cfg.Redis), cfg.Export)
	if err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] Failed to create")
	}

	if err := scheduler.RegisterStatisticsJobs(); err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] Failed to register")
	}

	go func() {
		log.Info().Msg("[Scheduler] Starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("[Scheduler] Failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// Shutdown gracefully shuts down the scheduler
func (s *asynqScheduler) Shutdown() {
	log.Info().Msg("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Info().Msg("[Scheduler] ✓ Stopped")
}
