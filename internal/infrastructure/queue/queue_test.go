package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idservices-admin/internal/config"
	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/shared"
)

type recordingClient struct {
	task *asynq.Task
	opts []asynq.Option
}

func (r *recordingClient) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.task, r.opts = task, opts
	return &asynq.TaskInfo{ID: "e1", Queue: shared.QueueExport}, nil
}

func TestEnqueueExport(t *testing.T) {
	rc := &recordingClient{}
	require.NoError(t, NewClient(rc).EnqueueExport(context.Background(), model.ExportPayload{ExportID: "e1"}))

	assert.Equal(t, shared.TypeStatisticsExport, rc.task.Type())
	assert.JSONEq(t, `{"exportId":"e1"}`, string(rc.task.Payload()))

	var queue, taskID string
	for _, o := range rc.opts {
		switch o.Type() {
		case asynq.QueueOpt:
			queue = o.Value().(string)
		case asynq.TaskIDOpt:
			taskID = o.Value().(string)
		}
	}
	assert.Equal(t, shared.QueueExport, queue)
	assert.Equal(t, "e1", taskID)
}

type recordingRegistrar struct {
	specs map[string]*asynq.Task
}

func (r *recordingRegistrar) Register(cronspec string, task *asynq.Task, _ ...asynq.Option) (string, error) {
	r.specs[cronspec] = task
	return "entry", nil
}

func TestRegisterStatisticsJobs(t *testing.T) {
	reg := &recordingRegistrar{specs: map[string]*asynq.Task{}}
	s := &Scheduler{registrar: reg, exportCfg: config.ExportConfig{
		Schedule:  "0 3 1 * *",
		Retention: 30 * 24 * time.Hour,
	}}

	require.NoError(t, s.RegisterStatisticsJobs())
	require.Len(t, reg.specs, 2)

	monthly := reg.specs["0 3 1 * *"]
	assert.Equal(t, shared.TypeScheduledStatisticsExport, monthly.Type())
	var p model.ScheduledExportPayload
	require.NoError(t, json.Unmarshal(monthly.Payload(), &p))
	assert.Equal(t, model.ReportMonthly, p.Type)

	assert.JSONEq(t, `{"retentionHours":720}`, string(reg.specs[cleanupSchedule].Payload()))
}

func TestRegisterStatisticsJobsDisabled(t *testing.T) {
	reg := &recordingRegistrar{specs: map[string]*asynq.Task{}}
	s := &Scheduler{registrar: reg}

	require.NoError(t, s.RegisterStatisticsJobs())
	assert.Empty(t, reg.specs)
}
