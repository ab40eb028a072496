package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/infrastructure/apiclient"
)

func TestParseReport(t *testing.T) {
	raw := []byte(`[
		{"publisher": "Kustannus Oy", "isbn": 12, "ratio": 0.5},
		{"publisher": "Musiikki Ab", "isbn": 3, "ratio": 0.25, "ismn": 7, "active": true},
		{"publisher": null}
	]`)

	report, err := ParseReport(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"publisher", "isbn", "ratio", "ismn", "active"}, report.Headers)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, []interface{}{"Kustannus Oy", int64(12), 0.5, nil, nil}, report.Rows[0])
	assert.Equal(t, []interface{}{"Musiikki Ab", int64(3), 0.25, int64(7), true}, report.Rows[1])
	assert.Equal(t, []interface{}{nil, nil, nil, nil, nil}, report.Rows[2])
}

func TestParseReportEnvelope(t *testing.T) {
	report, err := ParseReport([]byte(`{"results": [{"a": "x"}], "totalDoc": 1}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, report.Headers)

	_, err = ParseReport([]byte(`{"message": "nope"}`))
	assert.Error(t, err)
}

func TestRegistrySourceFetch(t *testing.T) {
	var got statisticsRequest
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issn-registry/statistics", r.URL.Path)
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`[{"title": "Aikakauslehti", "count": 2}]`))
	}))
	defer ts.Close()

	src := NewRegistrySource(apiclient.New(apiclient.Config{BaseURL: ts.URL}), "svc")
	report, err := src.Fetch(context.Background(), model.ReportQuery{
		Type: model.ReportISSNPublications, Begin: "2024-01-01", End: "2024-01-31",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer svc", auth)
	assert.Equal(t, statisticsRequest{Type: model.ReportISSNPublications, Begin: "2024-01-01", End: "2024-01-31"}, got)
	assert.Equal(t, "ISSN_PUBLICATIONS 2024-01-01 - 2024-01-31", report.Title)
	assert.Equal(t, [][]interface{}{{"Aikakauslehti", int64(2)}}, report.Rows)
}

func TestRegistrySourceAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Forbidden"}`))
	}))
	defer ts.Close()

	src := NewRegistrySource(apiclient.New(apiclient.Config{BaseURL: ts.URL}), "svc")
	_, err := src.Fetch(context.Background(), model.ReportQuery{Type: model.ReportMonthly})
	assert.Equal(t, &apiclient.ErrorInfo{Status: 403, Message: "Forbidden"}, apiclient.AsErrorInfo(err))
}

func TestCacheStatusRepository(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	repo := NewCacheStatusRepository(c, time.Hour)

	_, err := repo.Get(ctx, "missing")
	assert.True(t, model.IsExportNotFound(err))

	e := &model.Export{ID: "e1", Type: model.ReportMonthly, Status: model.StatusQueued}
	require.NoError(t, repo.Save(ctx, e))
	assert.Equal(t, time.Hour, c.ttls["idservices:exports:e1"])

	loaded, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, e, loaded)
}

type memCache struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memCache) Ping(context.Context) error { return nil }
