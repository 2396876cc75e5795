package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Sweeper periodically removes expired entries.
type Sweeper struct {
	cache    *Service
	interval time.Duration
	removed  prometheus.Counter
	logger   *zap.Logger
}

// NewSweeper creates a sweeper running every interval.
func NewSweeper(cache *Service, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		cache:    cache,
		interval: interval,
		logger:   logger.Named("sweeper"),
	}
}

// WithMetrics sets a counter for entries removed by sweeps.
func (w *Sweeper) WithMetrics(removed prometheus.Counter) *Sweeper {
	w.removed = removed
	return w
}

// Run sweeps until ctx is done. A failed sweep is logged and retried on the next tick.
func (w *Sweeper) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.logger.Info("Cache sweeper disabled")
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Cache sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Cache sweeper stopped")
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	n, err := w.cache.CleanupExpired(ctx)
	if n > 0 && w.removed != nil {
		w.removed.Add(float64(n))
	}
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("Cache sweep failed", zap.Int("removed", n), zap.Error(err))
		}
		return
	}
	w.logger.Debug("Cache sweep finished", zap.Int("removed", n), zap.Duration("took", time.Since(start)))
}
