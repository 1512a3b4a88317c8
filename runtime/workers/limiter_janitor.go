package workers

import (
	"chat-core/contract"
	"context"
	"log/slog"
	"time"
)

// LimiterJanitor periodically drops the rate limiter keys that went idle,
// bounding the limiter memory to the clients active in the last window.
type LimiterJanitor struct {
	log      *slog.Logger
	sweeper  contract.Sweeper
	interval time.Duration
	now      func() time.Time
}

func NewLimiterJanitor(log *slog.Logger, sweeper contract.Sweeper, interval time.Duration) *LimiterJanitor {
	return &LimiterJanitor{log: log, sweeper: sweeper, interval: interval, now: time.Now}
}

func (w *LimiterJanitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping limiter janitor")
			return nil
		case <-ticker.C:
			if removed := w.sweeper.Sweep(w.now().UTC()); removed > 0 {
				w.log.Debug("idle rate limit keys dropped", "count", removed)
			}
		}
	}
}
