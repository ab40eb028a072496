package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/domains/statistics/model"
)

// ExportPrefix is the bucket prefix all export files live under.
const ExportPrefix = "statistics/"

// ObjectPruner removes stale objects.
type ObjectPruner interface {
	DeleteOlderThan(ctx context.Context, prefix string, cutoff time.Time) (int, error)
}

// CleanupHandler removes export files past their retention.
type CleanupHandler struct {
	store ObjectPruner
	now   func() time.Time
}

func NewCleanupHandler(store ObjectPruner) *CleanupHandler {
	return &CleanupHandler{store: store, now: time.Now}
}

// ProcessTask handles TypeCleanupExports.
func (h *CleanupHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.CleanupExportsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.RetentionHours <= 0 {
		return fmt.Errorf("retention must be positive, got %d: %w", payload.RetentionHours, asynq.SkipRetry)
	}

	cutoff := h.now().Add(-time.Duration(payload.RetentionHours) * time.Hour)
	removed, err := h.store.DeleteOlderThan(ctx, ExportPrefix, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup exports: %w", err)
	}

	log.Info().
		Int("removed", removed).
		Time("cutoff", cutoff).
		Msg("Old export files removed")
	return nil
}
