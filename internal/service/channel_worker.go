package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/steve2482/simspeedserver/internal/repository"
)

// CounterReconciler rewrites channel favorite counters that drifted from
// the favorite rows.
type CounterReconciler interface {
	Reconcile(ctx context.Context) ([]repository.ChannelDrift, error)
}

// FavoriteWorker is a periodic background job that keeps each channel's
// favorites counter equal to the number of users holding it.
type FavoriteWorker struct {
	store    CounterReconciler
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
}

// NewFavoriteWorker creates a worker that ticks every interval.
func NewFavoriteWorker(store CounterReconciler, interval time.Duration, logger zerolog.Logger) *FavoriteWorker {
	return &FavoriteWorker{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "favorite-worker").Logger(),
		stopCh:   make(chan struct{}),
	}
}

// Start runs one tick immediately, then every interval, until ctx is
// cancelled or Stop is called. A non-positive interval disables the worker
// and Start returns at once.
func (w *FavoriteWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Warn().Dur("interval", w.interval).Msg("disabled (non-positive interval)")
		return
	}
	w.logger.Info().Dur("interval", w.interval).Msg("starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			w.logger.Info().Msg("stopping (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *FavoriteWorker) Stop() {
	close(w.stopCh)
}

func (w *FavoriteWorker) tick(ctx context.Context) {
	start := time.Now()

	drifts, err := w.store.Reconcile(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("reconcile failed")
		return
	}
	for _, d := range drifts {
		w.logger.Warn().
			Str("channel", d.Name).
			Int("stored", d.Stored).
			Int("computed", d.Computed).
			Msg("favorite counter corrected")
	}
	w.logger.Info().
		Int("corrected", len(drifts)).
		Dur("elapsed", time.Since(start).Round(time.Millisecond)).
		Msg("tick complete")
}
