package workers

import (
	"chat-core/domain/event"
	"chat-core/observability"
	"context"
	"log/slog"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel chan event.Event
}

// ChannelCapacityWorker periodically samples the length and capacity of the
// delivery queues. Reading len and cap of a channel never blocks, so the
// sampling does not interfere with the fanout workers.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	metrics        *observability.Metrics
	metricInterval time.Duration
	lowCapacity    int
}

// NewChannelCapacityWorker warns when a queue has fewer than lowCapacity
// free slots left. A zero lowCapacity disables the warning.
func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metrics *observability.Metrics, metricInterval time.Duration, lowCapacity int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log,
		channels:       channels,
		metrics:        metrics,
		metricInterval: metricInterval,
		lowCapacity:    lowCapacity,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			w.Sample()
		}
	}
}

// Sample records one reading per channel.
func (w *ChannelCapacityWorker) Sample() {
	for _, nc := range w.channels {
		capacity, length := cap(nc.Channel), len(nc.Channel)
		w.metrics.QueueSampled(nc.Name, length, capacity)
		if w.lowCapacity > 0 && capacity-length < w.lowCapacity {
			w.log.Warn("Delivery queue almost full", "queue", nc.Name, "length", length, "capacity", capacity)
		}
	}
}
