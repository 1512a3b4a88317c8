package workers

import (
	"chat-core/contract"
	"chat-core/domain/event"
	"chat-core/observability"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// EventFanout delivers the committed events of one shard to every sink,
// one event at a time, so events sharing a shard keep their emission order.
// An event is acknowledged in the outbox only when every sink consumed it;
// otherwise it stays pending until the outbox relay hands it back.
type EventFanout struct {
	log         *slog.Logger
	shard       int
	in          <-chan event.Event
	sinks       []contract.EventSink
	outbox      contract.Outbox
	sinkTimeout time.Duration
	metrics     *observability.Metrics
	onDone      func(event.Event)
}

func NewEventFanout(log *slog.Logger, shard int, in <-chan event.Event,
	sinks []contract.EventSink, outbox contract.Outbox,
	sinkTimeout time.Duration, metrics *observability.Metrics) *EventFanout {
	return &EventFanout{
		log:         log.With("shard", shard),
		shard:       shard,
		in:          in,
		sinks:       sinks,
		outbox:      outbox,
		sinkTimeout: sinkTimeout,
		metrics:     metrics,
		onDone:      func(event.Event) {},
	}
}

// WithOnDone registers fn, called once an event left the worker, acknowledged or not.
func (w *EventFanout) WithOnDone(fn func(event.Event)) *EventFanout {
	w.onDone = fn
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.in:
			w.Fanout(ctx, evt)
			w.onDone(evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event delivery")
			return nil
		}
	}
}

// Fanout hands evt to each sink with its own timeout and reports whether
// the event was acknowledged.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) bool {
	failed := false
	for _, sink := range w.sinks {
		if err := w.consume(ctx, sink, evt); err != nil {
			failed = true
			w.metrics.SinkFailed(string(evt.Type))
			w.log.Warn("sink failed, event kept in outbox",
				"sink", fmt.Sprintf("%T", sink), "event", evt.ID, "type", evt.Type, "error", err)
		}
	}
	if failed {
		return false
	}
	if err := w.outbox.Ack(ctx, evt); err != nil {
		w.log.Error("unable to acknowledge event", "event", evt.ID, "error", err)
		return false
	}
	w.metrics.Delivered(string(evt.Type))
	return true
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.Event) error {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	return sink.Consume(sinkCtx, evt)
}
