package searchcache

import (
	"context"
	"time"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetWithTTLFn func(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	hmgetMultiFn  func(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error)
	delFn         func(ctx context.Context, key string) error
	delIfFn       func(ctx context.Context, key, field string, limit int64) (bool, error)
	existsFn      func(ctx context.Context, key string) (bool, error)
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if m.hsetWithTTLFn != nil {
		return m.hsetWithTTLFn(ctx, key, fields, ttl)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HMGetMulti(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error) {
	if m.hmgetMultiFn != nil {
		return m.hmgetMultiFn(ctx, keys, fields...)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) DelIfFieldAtMost(ctx context.Context, key, field string, limit int64) (bool, error) {
	if m.delIfFn != nil {
		return m.delIfFn(ctx, key, field, limit)
	}
	return false, nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}
