package repository

import (
	"context"
	"fmt"
	"time"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/pkg/cache"
)

const statusKeyPrefix = "idservices:exports:"

// StatusRepository persists export status records.
type StatusRepository interface {
	Save(ctx context.Context, e *model.Export) error
	Get(ctx context.Context, id string) (*model.Export, error)
}

// CacheStatusRepository keeps status records in redis with a TTL.
type CacheStatusRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewCacheStatusRepository(c cache.Cache, ttl time.Duration) *CacheStatusRepository {
	return &CacheStatusRepository{cache: c, ttl: ttl}
}

func statusKey(id string) string {
	return statusKeyPrefix + id
}

func (r *CacheStatusRepository) Save(ctx context.Context, e *model.Export) error {
	if err := r.cache.Set(ctx, statusKey(e.ID), e, r.ttl); err != nil {
		return model.NewStatusStoreError(fmt.Errorf("save export %s: %w", e.ID, err))
	}
	return nil
}

func (r *CacheStatusRepository) Get(ctx context.Context, id string) (*model.Export, error) {
	var e model.Export
	found, err := r.cache.Get(ctx, statusKey(id), &e)
	if err != nil {
		return nil, model.NewStatusStoreError(fmt.Errorf("load export %s: %w", id, err))
	}
	if !found {
		return nil, model.NewExportNotFound(id)
	}
	return &e, nil
}
