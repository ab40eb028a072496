package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/domains/statistics/repository"
	"idservices-admin/internal/shared/utils"
)

// Enqueuer schedules background exports.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, payload model.ExportPayload) error
}

// ObjectStore keeps finished export files.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ExportService runs statistics exports.
type ExportService interface {
	RequestExport(ctx context.Context, req model.CreateExportRequest, requestedBy string) (*model.Export, error)
	GetExport(ctx context.Context, id string) (*model.Export, error)
	RunExport(ctx context.Context, id string) error
	RunScheduledExport(ctx context.Context, payload model.ScheduledExportPayload) (*model.Export, error)
}

type Config struct {
	URLExpiry time.Duration
}

type exportService struct {
	repo   repository.StatusRepository
	queue  Enqueuer
	source repository.StatisticsSource
	store  ObjectStore
	cfg    Config
	now    func() time.Time
}

// NewExportService wires the export service. The API side needs repo, queue
// and store (for download links); the worker side needs repo, source and store.
func NewExportService(
	repo repository.StatusRepository,
	queue Enqueuer,
	source repository.StatisticsSource,
	store ObjectStore,
	cfg Config,
) ExportService {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 24 * time.Hour
	}
	return &exportService{
		repo:   repo,
		queue:  queue,
		source: source,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
	}
}

// RequestExport validates the request, stores a queued record and enqueues
// the task.
func (s *exportService) RequestExport(ctx context.Context, req model.CreateExportRequest, requestedBy string) (*model.Export, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidRequest(err)
	}

	e := s.newExport(req, requestedBy)
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueExport(ctx, model.ExportPayload{ExportID: e.ID}); err != nil {
		s.fail(ctx, e, err)
		return nil, model.NewEnqueueError(err)
	}

	log.Info().
		Str("export_id", e.ID).
		Str("type", string(e.Type)).
		Str("requested_by", requestedBy).
		Msg("Statistics export queued")

	return e, nil
}

// GetExport returns the status record; finished exports get a fresh
// download link.
func (s *exportService) GetExport(ctx context.Context, id string) (*model.Export, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewInvalidExportID(id)
	}

	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if e.Status == model.StatusDone && e.ObjectKey != "" && s.store != nil {
		url, err := s.store.PresignedURL(ctx, e.ObjectKey, s.cfg.URLExpiry)
		if err != nil {
			log.Warn().Err(err).Str("export_id", id).Msg("Failed to sign export URL")
		} else {
			e.URL = url
		}
	}
	return e, nil
}

// RunExport fetches, renders and uploads one export. A finished export is
// left alone so task retries are harmless.
func (s *exportService) RunExport(ctx context.Context, id string) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.Status == model.StatusDone {
		log.Info().Str("export_id", id).Msg("Export already done, skipping")
		return nil
	}

	e.Status = model.StatusRunning
	e.Error = ""
	e.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, e); err != nil {
		return err
	}

	// 1. Fetch
	report, err := s.source.Fetch(ctx, model.ReportQuery{Type: e.Type, Begin: e.BeginDate, End: e.EndDate})
	if err != nil {
		err = model.NewFetchStatisticsError(err)
		s.fail(ctx, e, err)
		return err
	}

	// 2. Render
	data, err := Encode(report, e.Format)
	if err != nil {
		err = model.NewBuildFileError(err)
		s.fail(ctx, e, err)
		return err
	}

	// 3. Upload
	key := ObjectKey(e)
	if _, err := s.store.Upload(ctx, key, data, e.Format.ContentType()); err != nil {
		err = model.NewUploadFileError(err)
		s.fail(ctx, e, err)
		return err
	}

	e.Status = model.StatusDone
	e.ObjectKey = key
	e.Rows = len(report.Rows)
	e.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, e); err != nil {
		return err
	}

	log.Info().
		Str("export_id", e.ID).
		Str("object_key", key).
		Int("rows", e.Rows).
		Msg("Statistics export done")
	return nil
}

// RunScheduledExport exports the previous calendar month inline.
func (s *exportService) RunScheduledExport(ctx context.Context, payload model.ScheduledExportPayload) (*model.Export, error) {
	begin, end := model.PreviousMonth(s.now())
	req := model.CreateExportRequest{Type: payload.Type, BeginDate: begin, EndDate: end, Format: payload.Format}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidRequest(err)
	}

	e := s.newExport(req, "scheduler")
	e.Scheduled = true
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	if err := s.RunExport(ctx, e.ID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, e.ID)
}

func (s *exportService) newExport(req model.CreateExportRequest, requestedBy string) *model.Export {
	now := s.now()
	return &model.Export{
		ID:          uuid.NewString(),
		Type:        req.Type,
		BeginDate:   req.BeginDate,
		EndDate:     req.EndDate,
		Format:      req.Format,
		Status:      model.StatusQueued,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *exportService) fail(ctx context.Context, e *model.Export, cause error) {
	e.Status = model.StatusFailed
	e.Error = model.GetErrorMessage(cause)
	if inner := errors.Unwrap(cause); inner != nil {
		e.Error += ": " + inner.Error()
	}
	e.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, e); err != nil {
		log.Error().Err(err).Str("export_id", e.ID).Msg("Failed to mark export as failed")
	}
	log.Error().Err(cause).Str("export_id", e.ID).Msg("Statistics export failed")
}

// ObjectKey is where an export file is stored:
// statistics/<registry>/<year>/<type-begin-end>_<id>.<format>
func ObjectKey(e *model.Export) string {
	year := e.CreatedAt.Format("2006")
	name := utils.GenerateSlug(fmt.Sprintf("%s %s %s", e.Type, e.BeginDate, e.EndDate))
	return fmt.Sprintf("statistics/%s/%s/%s_%s.%s", e.Type.Registry(), year, name, e.ID, e.Format)
}
