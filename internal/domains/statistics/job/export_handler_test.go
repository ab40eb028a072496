package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/shared"
)

type stubService struct {
	ranID     string
	runErr    error
	scheduled model.ScheduledExportPayload
}

func (s *stubService) RequestExport(context.Context, model.CreateExportRequest, string) (*model.Export, error) {
	return nil, nil
}

func (s *stubService) GetExport(context.Context, string) (*model.Export, error) { return nil, nil }

func (s *stubService) RunExport(_ context.Context, id string) error {
	s.ranID = id
	return s.runErr
}

func (s *stubService) RunScheduledExport(_ context.Context, p model.ScheduledExportPayload) (*model.Export, error) {
	s.scheduled = p
	if s.runErr != nil {
		return nil, s.runErr
	}
	return &model.Export{ID: "e1", Type: p.Type, Status: model.StatusDone}, nil
}

func TestExportHandler(t *testing.T) {
	svc := &stubService{}
	task := asynq.NewTask(shared.TypeStatisticsExport, []byte(`{"exportId":"e1"}`))

	require.NoError(t, NewExportHandler(svc).ProcessTask(context.Background(), task))
	assert.Equal(t, "e1", svc.ranID)
}

func TestExportHandlerRetries(t *testing.T) {
	h := NewExportHandler(&stubService{runErr: model.NewFetchStatisticsError(errors.New("timeout"))})
	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeStatisticsExport, []byte(`{"exportId":"e1"}`)))

	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestExportHandlerSkipsRetry(t *testing.T) {
	h := NewExportHandler(&stubService{runErr: model.NewExportNotFound("e1")})
	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeStatisticsExport, []byte(`{"exportId":"e1"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeStatisticsExport, []byte(`not json`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestScheduledExportHandlerDefaultsType(t *testing.T) {
	svc := &stubService{}
	task := asynq.NewTask(shared.TypeScheduledStatisticsExport, []byte(`{"format":"csv"}`))

	require.NoError(t, NewScheduledExportHandler(svc).ProcessTask(context.Background(), task))
	assert.Equal(t, model.ReportMonthly, svc.scheduled.Type)
	assert.Equal(t, model.FormatCSV, svc.scheduled.Format)
}

type fakePruner struct {
	prefix string
	cutoff time.Time
}

func (p *fakePruner) DeleteOlderThan(_ context.Context, prefix string, cutoff time.Time) (int, error) {
	p.prefix, p.cutoff = prefix, cutoff
	return 3, nil
}

func TestCleanupHandler(t *testing.T) {
	pruner := &fakePruner{}
	h := NewCleanupHandler(pruner)
	now := time.Date(2024, 5, 1, 4, 30, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	require.NoError(t, h.ProcessTask(context.Background(),
		asynq.NewTask(shared.TypeCleanupExports, []byte(`{"retentionHours":48}`))))
	assert.Equal(t, ExportPrefix, pruner.prefix)
	assert.Equal(t, now.Add(-48*time.Hour), pruner.cutoff)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeCleanupExports, []byte(`{}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
