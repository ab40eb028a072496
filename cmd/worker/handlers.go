package main

import (
	"github.com/hibiken/asynq"

	statsJob "idservices-admin/internal/domains/statistics/job"
	"idservices-admin/internal/shared"
	"idservices-admin/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	export          *statsJob.ExportHandler
	scheduledExport *statsJob.ScheduledExportHandler
	cleanupExports  *statsJob.CleanupHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		export:          c.ExportJob,
		scheduledExport: c.ScheduledExportJob,
		cleanupExports:  c.CleanupJob,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeStatisticsExport, h.export.ProcessTask)
	mux.HandleFunc(shared.TypeScheduledStatisticsExport, h.scheduledExport.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExports, h.cleanupExports.ProcessTask)
}
