package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/shared"
)

// TaskEnqueuer is the subset of *asynq.Client used here.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client enqueues export tasks.
type Client struct {
	client TaskEnqueuer
}

func NewClient(client TaskEnqueuer) *Client {
	return &Client{client: client}
}

// EnqueueExport queues one statistics export. The export id doubles as the
// task id so a double submit is rejected by asynq.
func (c *Client) EnqueueExport(ctx context.Context, payload model.ExportPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeStatisticsExport, data)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueExport),
		asynq.TaskID(payload.ExportID),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeStatisticsExport, err)
	}

	log.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("Export task enqueued")
	return nil
}
