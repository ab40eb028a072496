package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/domains/statistics/service"
)

// ExportHandler runs exports requested through the API.
type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ProcessTask handles TypeStatisticsExport.
func (h *ExportHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.ExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal export payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().Str("export_id", payload.ExportID).Msg("Running statistics export")

	if err := h.exportService.RunExport(ctx, payload.ExportID); err != nil {
		if model.IsExportNotFound(err) {
			// status record expired, nothing left to report to
			return fmt.Errorf("run export %s: %v: %w", payload.ExportID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("run export %s: %w", payload.ExportID, err)
	}
	return nil
}

// ScheduledExportHandler runs the monthly export registered by the scheduler.
type ScheduledExportHandler struct {
	exportService service.ExportService
}

func NewScheduledExportHandler(exportService service.ExportService) *ScheduledExportHandler {
	return &ScheduledExportHandler{exportService: exportService}
}

// ProcessTask handles TypeScheduledStatisticsExport.
func (h *ScheduledExportHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.ScheduledExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal scheduled export payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Type == "" {
		payload.Type = model.ReportMonthly
	}

	export, err := h.exportService.RunScheduledExport(ctx, payload)
	if err != nil {
		return fmt.Errorf("scheduled export %s: %w", payload.Type, err)
	}

	log.Info().
		Str("export_id", export.ID).
		Str("type", string(export.Type)).
		Str("object_key", export.ObjectKey).
		Msg("Scheduled statistics export done")
	return nil
}
