package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Reloader is the part of Console the Refresher drives.
type Reloader interface {
	ReloadDashboard(ctx context.Context)
}

// Refresher reloads the dashboard on a fixed interval. Reloads go through
// the console, so their writes are serialized by the console's lock.
type Refresher struct {
	console  Reloader
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	// onReload, when set, runs after every reload; the CLI uses it to redraw.
	onReload func(ctx context.Context)
}

// NewRefresher creates a Refresher. A nil clock means the real clock.
func NewRefresher(console Reloader, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		console:  console,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// OnReload registers fn to run after each reload.
func (r *Refresher) OnReload(fn func(ctx context.Context)) {
	r.onReload = fn
}

// Start reloads once per interval until ctx is canceled. It does not reload
// immediately; the caller has already loaded the dashboard.
func (r *Refresher) Start(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.DebugContext(ctx, "dashboard refresher started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.DebugContext(ctx, "dashboard refresher stopped")
			return
		case <-ticker.Chan():
			r.console.ReloadDashboard(ctx)
			if r.onReload != nil {
				r.onReload(ctx)
			}
		}
	}
}
