// Package watch implements the notification delivery loop: poll for the
// newest notification, keep a forward-only watermark of what has already
// been shown, and raise exactly one alert per genuinely new item.
package watch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Notification is the slice of a notification the loop cares about.
type Notification struct {
	ID      uint
	Title   string
	Message string
	Type    string
}

// Fetcher returns the user's single most recent notification, or nil when
// none exist.
type Fetcher interface {
	LatestNotification(ctx context.Context) (*Notification, error)
}

// Presenter receives each newly observed notification exactly once, in
// strictly increasing ID order.
type Presenter interface {
	Present(n Notification)
}

// DefaultInterval matches the source UI's 3-second poll cadence.
const DefaultInterval = 3 * time.Second

// Watcher owns the loop state explicitly: lastSeenID is the highest
// notification id already presented, initialized marks whether the baseline
// tick has happened. The first successful tick only records the baseline so
// a fresh session is not flooded with historical notifications.
type Watcher struct {
	fetcher   Fetcher
	presenter Presenter
	log       *zap.Logger
	interval  time.Duration

	lastSeenID  uint
	initialized bool
}

func New(fetcher Fetcher, presenter Presenter, log *zap.Logger) *Watcher {
	return &Watcher{
		fetcher:   fetcher,
		presenter: presenter,
		log:       log,
		interval:  DefaultInterval,
	}
}

// Tick performs one poll cycle. Fetch failures are transient: log, keep all
// state unchanged, and let the next tick retry.
func (w *Watcher) Tick(ctx context.Context) {
	latest, err := w.fetcher.LatestNotification(ctx)

	if err != nil {
		w.log.Warn("notification poll failed", zap.Error(err))
		return
	}

	if latest == nil {
		w.initialized = true
		return
	}

	if !w.initialized {
		// Baseline tick: record the newest id without raising an alert.
		w.lastSeenID = latest.ID
		w.initialized = true
		return
	}

	if latest.ID > w.lastSeenID {
		w.lastSeenID = latest.ID
		w.presenter.Present(*latest)
	}
}

// Run ticks once immediately, then on a fixed interval until ctx is
// canceled.
func (w *Watcher) Run(ctx context.Context) {
	w.Tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("notification watcher stopping")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}
