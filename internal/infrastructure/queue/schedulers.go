package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/config"
	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/shared"
)

const cleanupSchedule = "30 4 * * *"

// TaskRegistrar is the subset of *asynq.Scheduler used to register jobs.
type TaskRegistrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	registrar TaskRegistrar
	exportCfg config.ExportConfig
}

// NewScheduler creates an asynq scheduler evaluating cron specs in the
// configured export timezone.
func NewScheduler(redisOpt asynq.RedisClientOpt, exportCfg config.ExportConfig) (*Scheduler, error) {
	loc, err := time.LoadLocation(exportCfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", exportCfg.Timezone, err)
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: loc,
		LogLevel: asynq.InfoLevel,
	})

	return &Scheduler{
		scheduler: scheduler,
		registrar: scheduler,
		exportCfg: exportCfg,
	}, nil
}

func (s *Scheduler) RegisterStatisticsJobs() error {
	if err := s.registerMonthlyExportJob(); err != nil {
		return err
	}
	if err := s.registerCleanupExportsJob(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB 1: Monthly statistics export (1st of month, 3 AM)
// ================================================
func (s *Scheduler) registerMonthlyExportJob() error {
	if s.exportCfg.Schedule == "" {
		log.Info().Msg("Monthly statistics export disabled")
		return nil
	}

	payload, err := json.Marshal(model.ScheduledExportPayload{
		Type:   model.ReportMonthly,
		Format: model.FormatXLSX,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeScheduledStatisticsExport, payload)

	_, err = s.registrar.Register(
		s.exportCfg.Schedule,
		task,
		asynq.Queue(shared.QueueExport),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register monthly statistics export")
		return err
	}

	log.Info().Str("cron", s.exportCfg.Schedule).Msg("✓ Registered monthly statistics export")
	return nil
}

// ================================================
// JOB 2: Export file retention (daily, 4:30 AM)
// ================================================
func (s *Scheduler) registerCleanupExportsJob() error {
	if s.exportCfg.Retention <= 0 {
		return nil
	}

	payload, err := json.Marshal(model.CleanupExportsPayload{
		RetentionHours: int(s.exportCfg.Retention / time.Hour),
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupExports, payload)

	_, err = s.registrar.Register(
		cleanupSchedule,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register export cleanup")
		return err
	}

	log.Info().Str("cron", cleanupSchedule).Msg("✓ Registered export cleanup")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
