package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"idservices-admin/internal/domains/statistics/model"
)

type memRepo struct {
	mu      sync.Mutex
	exports map[string]model.Export
	history []model.Status
}

func newMemRepo() *memRepo { return &memRepo{exports: map[string]model.Export{}} }

func (r *memRepo) Save(_ context.Context, e *model.Export) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exports[e.ID] = *e
	r.history = append(r.history, e.Status)
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (*model.Export, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exports[id]
	if !ok {
		return nil, model.NewExportNotFound(id)
	}
	return &e, nil
}

type fakeQueue struct {
	payloads []model.ExportPayload
	err      error
}

func (q *fakeQueue) EnqueueExport(_ context.Context, p model.ExportPayload) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, p)
	return nil
}

type fakeSource struct {
	report *model.Report
	err    error
	last   model.ReportQuery
}

func (s *fakeSource) Fetch(_ context.Context, q model.ReportQuery) (*model.Report, error) {
	s.last = q
	return s.report, s.err
}

type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.objects[key] = data
	s.types[key] = contentType
	return "http://minio/" + key, nil
}

func (s *fakeStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://minio/" + key + "?signed", nil
}

var sampleReport = &model.Report{
	Title:   "PROGRESS_ISBN 2024-01-01 - 2024-01-31",
	Headers: []string{"publisher", "count"},
	Rows:    [][]interface{}{{"Kustannus Oy", int64(12)}, {"Musiikki Ab", int64(3)}},
}

func newTestService(repo *memRepo, q *fakeQueue, src *fakeSource, store *fakeStore) *exportService {
	svc := NewExportService(repo, q, src, store, Config{}).(*exportService)
	svc.now = func() time.Time { return time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func validRequest() model.CreateExportRequest {
	return model.CreateExportRequest{Type: model.ReportProgressISBN, BeginDate: "2024-01-01", EndDate: "2024-01-31"}
}

func TestRequestExport(t *testing.T) {
	repo, q := newMemRepo(), &fakeQueue{}
	svc := newTestService(repo, q, &fakeSource{}, newFakeStore())

	e, err := svc.RequestExport(context.Background(), validRequest(), "staff")
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, e.Status)
	assert.Equal(t, model.FormatXLSX, e.Format)
	require.Len(t, q.payloads, 1)
	assert.Equal(t, e.ID, q.payloads[0].ExportID)

	stored, err := repo.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "staff", stored.RequestedBy)
}

func TestRequestExportInvalid(t *testing.T) {
	svc := newTestService(newMemRepo(), &fakeQueue{}, &fakeSource{}, newFakeStore())
	req := validRequest()
	req.EndDate = "2023-01-01"

	_, err := svc.RequestExport(context.Background(), req, "staff")
	assert.True(t, model.IsInvalidRequest(err))
}

func TestRequestExportEnqueueFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &fakeQueue{err: errors.New("redis down")}, &fakeSource{}, newFakeStore())

	_, err := svc.RequestExport(context.Background(), validRequest(), "staff")
	assert.Equal(t, model.CodeEnqueueFailed, model.GetErrorCode(err))
	assert.Equal(t, []model.Status{model.StatusQueued, model.StatusFailed}, repo.history)
}

func TestRunExport(t *testing.T) {
	ctx := context.Background()
	repo, src, store := newMemRepo(), &fakeSource{report: sampleReport}, newFakeStore()
	svc := newTestService(repo, &fakeQueue{}, src, store)

	e, err := svc.RequestExport(ctx, validRequest(), "staff")
	require.NoError(t, err)
	require.NoError(t, svc.RunExport(ctx, e.ID))

	done, err := svc.GetExport(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, done.Status)
	assert.Equal(t, 2, done.Rows)
	assert.Equal(t, "statistics/isbn-registry/2024/progress-isbn-2024-01-01-2024-01-31_"+e.ID+".xlsx", done.ObjectKey)
	assert.Equal(t, "http://minio/"+done.ObjectKey+"?signed", done.URL)
	assert.Equal(t, model.ReportQuery{Type: model.ReportProgressISBN, Begin: "2024-01-01", End: "2024-01-31"}, src.last)

	wb, err := excelize.OpenReader(bytes.NewReader(store.objects[done.ObjectKey]))
	require.NoError(t, err)
	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"publisher", "count"}, {"Kustannus Oy", "12"}, {"Musiikki Ab", "3"}}, rows)

	// retries of a finished export do nothing
	src.err = errors.New("should not be called")
	assert.NoError(t, svc.RunExport(ctx, e.ID))
}

func TestRunExportFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo, &fakeQueue{}, &fakeSource{err: errors.New("Forbidden")}, newFakeStore())

	e, err := svc.RequestExport(ctx, validRequest(), "staff")
	require.NoError(t, err)

	err = svc.RunExport(ctx, e.ID)
	assert.Equal(t, model.CodeFetchStatistics, model.GetErrorCode(err))

	failed, err := svc.GetExport(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, failed.Status)
	assert.Equal(t, "Failed to fetch statistics from the registry: Forbidden", failed.Error)
	assert.Empty(t, failed.URL)
}

func TestGetExportInvalidID(t *testing.T) {
	svc := newTestService(newMemRepo(), &fakeQueue{}, &fakeSource{}, newFakeStore())

	_, err := svc.GetExport(context.Background(), "../etc")
	assert.True(t, model.IsInvalidRequest(err))

	_, err = svc.GetExport(context.Background(), "6f1c2a1e-8d5b-4a57-9c55-0b3f0b9f7d11")
	assert.True(t, model.IsExportNotFound(err))
}

func TestRunScheduledExport(t *testing.T) {
	ctx := context.Background()
	src, store := &fakeSource{report: sampleReport}, newFakeStore()
	svc := newTestService(newMemRepo(), &fakeQueue{}, src, store)

	e, err := svc.RunScheduledExport(ctx, model.ScheduledExportPayload{Type: model.ReportMonthly, Format: model.FormatCSV})
	require.NoError(t, err)
	assert.True(t, e.Scheduled)
	assert.Equal(t, model.StatusDone, e.Status)
	assert.Equal(t, "2024-01-01", src.last.Begin)
	assert.Equal(t, "2024-01-31", src.last.End)
	assert.Equal(t, "text/csv", store.types[e.ObjectKey])

	records, err := csv.NewReader(bytes.NewReader(store.objects[e.ObjectKey])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"publisher", "count"}, {"Kustannus Oy", "12"}, {"Musiikki Ab", "3"}}, records)
}

func TestSheetNameFor(t *testing.T) {
	assert.Equal(t, "Statistics", sheetNameFor(""))
	assert.Equal(t, "a-b-c", sheetNameFor("a/b:c"))
	assert.Len(t, []rune(sheetNameFor("PROGRESS_ISBN 2024-01-01 - 2024-01-31")), 31)
}
