package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
)

// fakeBackend is an in-memory Backend with optional failure hooks.
type fakeBackend struct {
	mu      sync.Mutex
	entries map[string]domcache.Entry

	getErr  error
	putErr  error
	listErr error

	// beforeDelete runs inside DeleteIfExpired before the expiry re-check.
	beforeDelete func(key string)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{entries: make(map[string]domcache.Entry)}
}

func (f *fakeBackend) Get(_ context.Context, key string) (domcache.Entry, error) {
	if f.getErr != nil {
		return domcache.Entry{}, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok {
		return domcache.Entry{}, domain.ErrCacheMiss
	}
	return e, nil
}

func (f *fakeBackend) Put(_ context.Context, e *domcache.Entry) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[e.Key] = *e
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	delete(f.entries, key)
	return ok, nil
}

func (f *fakeBackend) DeleteIfExpired(_ context.Context, key string, now time.Time) (bool, error) {
	if f.beforeDelete != nil {
		f.beforeDelete(key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || !e.Expired(now) {
		return false, nil
	}
	delete(f.entries, key)
	return true, nil
}

func (f *fakeBackend) List(_ context.Context) ([]domcache.Meta, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domcache.Meta, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, domcache.Meta{Key: e.Key, QueryText: e.QueryText, CreatedAt: e.CreatedAt, ExpiresAt: e.ExpiresAt})
	}
	return out, nil
}

func (f *fakeBackend) Purge(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.entries)
	f.entries = make(map[string]domcache.Entry)
	return n, nil
}

func (f *fakeBackend) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
