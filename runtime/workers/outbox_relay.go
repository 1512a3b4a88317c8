package workers

import (
	"chat-core/contract"
	"chat-core/observability"
	"context"
	"log/slog"
	"time"
)

// OutboxRelay periodically hands the pending outbox events back to the bus:
// those a writer could not queue, and those a sink failed to consume.
// Events younger than grace are left alone, their writer may still be
// publishing them.
type OutboxRelay struct {
	log       *slog.Logger
	outbox    contract.Outbox
	publisher contract.EventPublisher
	interval  time.Duration
	grace     time.Duration
	timeout   time.Duration
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewOutboxRelay(log *slog.Logger, outbox contract.Outbox, publisher contract.EventPublisher,
	interval, grace time.Duration) *OutboxRelay {
	return &OutboxRelay{
		log:       log,
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		grace:     grace,
		timeout:   interval,
		now:       time.Now,
	}
}

func (w *OutboxRelay) WithMetrics(m *observability.Metrics) *OutboxRelay {
	w.metrics = m
	return w
}

func (w *OutboxRelay) WithClock(now func() time.Time) *OutboxRelay {
	w.now = now
	return w
}

func (w *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping outbox relay")
			return nil
		case <-ticker.C:
			if n := w.Relay(ctx); n > 0 {
				w.log.Info("pending events relayed", "count", n)
			}
		}
	}
}

// Relay publishes the pending events older than grace, oldest first, and
// returns how many were handed over. A pass stops at the first event the
// bus cannot take within the timeout; the next tick resumes from there.
func (w *OutboxRelay) Relay(ctx context.Context) int {
	pending, err := w.outbox.Pending(ctx)
	if err != nil {
		w.log.Error("unable to read the outbox", "error", err)
		return 0
	}
	cutoff := w.now().UTC().Add(-w.grace)
	relayed := 0
	for _, evt := range pending {
		if evt.CreatedAt.After(cutoff) {
			continue
		}
		publishCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err = w.publisher.Publish(publishCtx, evt)
		cancel()
		if err != nil {
			w.log.Debug("bus busy, relay pass interrupted", "event", evt.ID, "error", err)
			return relayed
		}
		w.metrics.Relayed(string(evt.Type))
		relayed++
	}
	return relayed
}
