package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/config"
	"idservices-admin/internal/shared"
	"idservices-admin/pkg/container"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(cfg *config.Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		container.RedisClientOpt(cfg.Redis),
		asynq.Config{
			Queues: map[string]int{
				shared.QueueExport:  6,
				shared.QueueDefault: 3,
			},
			Concurrency: cfg.Export.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().
					Err(err).
					Str("type", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("[Asynq] ❌ Task failed")
			}),
		},
	)

	go func() {
		log.Info().Int("concurrency", cfg.Export.Concurrency).Msg("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] Failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks up to asynq's ShutdownTimeout.
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] ✓ Gracefully stopped")
}
