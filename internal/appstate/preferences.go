package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"idservices-admin/pkg/cache"
)

// PreferenceStore persists small string preferences across console sessions.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ====================================
// MEMORY
// ====================================

type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// ====================================
// FILE
// ====================================

// FileStore keeps preferences as a flat JSON object in one file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value

	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("create preferences file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

func (f *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode preferences %s: %w", f.path, err)
	}
	return values, nil
}

// ====================================
// REDIS
// ====================================

// RedisStore shares preferences between consoles of the same profile.
type RedisStore struct {
	cache   cache.Cache
	profile string
}

func NewRedisStore(c cache.Cache, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{cache: c, profile: profile}
}

// Key returns the redis key for a preference.
func (r *RedisStore) Key(key string) string {
	return fmt.Sprintf("idservices:prefs:%s:%s", r.profile, key)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	found, err := r.cache.Get(ctx, r.Key(key), &v)
	if err != nil {
		return "", false, err
	}
	return v, found, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.cache.Set(ctx, r.Key(key), value, 0)
}
