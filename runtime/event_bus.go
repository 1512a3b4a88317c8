package runtime

import (
	"chat-core/contract"
	"chat-core/domain/event"
	"chat-core/observability"
	"chat-core/runtime/workers"
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// EventBus carries domain events from the writers to their subscribers.
//
// Transactional subscribers run inside the writer's Badger transaction
// (PublishTx): their failure aborts the write. The same call stages the
// event in the outbox, so a committed write always leaves a record of its
// event behind.
//
// Post-commit subscribers receive events through Publish. Events are routed
// to a shard by aggregate id, and every shard is drained by a single
// EventFanout worker: two events about the same message are delivered in
// the order they were published.
//
// An event is in flight from the moment Publish queues it until its shard
// worker is done with it. Publishing an event already in flight is a no-op,
// so the outbox relay can hand back pending events without doubling them.
type EventBus struct {
	log         *slog.Logger
	outbox      contract.Outbox
	metrics     *observability.Metrics
	sinkTimeout time.Duration

	mu      sync.RWMutex
	txSinks map[event.Type][]contract.TxSink
	sinks   []contract.EventSink
	shards  []chan event.Event

	flightMu sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewEventBus(log *slog.Logger, outbox contract.Outbox, shards, buffer int, sinkTimeout time.Duration) *EventBus {
	if shards < 1 {
		shards = 1
	}
	b := &EventBus{
		log:         log,
		outbox:      outbox,
		sinkTimeout: sinkTimeout,
		txSinks:     make(map[event.Type][]contract.TxSink),
		shards:      make([]chan event.Event, shards),
		inFlight:    make(map[uuid.UUID]struct{}),
	}
	for i := range b.shards {
		b.shards[i] = make(chan event.Event, buffer)
	}
	return b
}

func (b *EventBus) WithMetrics(m *observability.Metrics) *EventBus {
	b.metrics = m
	return b
}

// SubscribeTx registers sinks run inside the transaction publishing t.
func (b *EventBus) SubscribeTx(t event.Type, sinks ...contract.TxSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txSinks[t] = append(b.txSinks[t], sinks...)
}

// Subscribe registers post-commit sinks. It must be called before Workers.
func (b *EventBus) Subscribe(sinks ...contract.EventSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sinks...)
}

// PublishTx runs the transactional sinks of e and stages it in the outbox,
// all within txn.
func (b *EventBus) PublishTx(ctx context.Context, txn *badger.Txn, e event.Event) error {
	b.mu.RLock()
	sinks := b.txSinks[e.Type]
	b.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.ConsumeTx(ctx, txn, e); err != nil {
			return fmt.Errorf("%s subscriber %T: %w", e.Type, sink, err)
		}
	}
	return b.outbox.Stage(txn, e)
}

// Publish queues a committed event on its shard. It only blocks while the
// shard buffer is full, and gives up when ctx is done: the event then stays
// in the outbox until the relay or the next Replay hands it back.
func (b *EventBus) Publish(ctx context.Context, e event.Event) error {
	if !b.claim(e.ID) {
		return nil
	}
	select {
	case b.shards[b.shardFor(e.AggregateID())] <- e:
		b.metrics.Published(string(e.Type))
		return nil
	case <-ctx.Done():
		b.release(e)
		return ctx.Err()
	}
}

// InFlight reports how many events are queued or being delivered.
func (b *EventBus) InFlight() int {
	b.flightMu.Lock()
	defer b.flightMu.Unlock()
	return len(b.inFlight)
}

func (b *EventBus) claim(id uuid.UUID) bool {
	b.flightMu.Lock()
	defer b.flightMu.Unlock()
	if _, ok := b.inFlight[id]; ok {
		return false
	}
	b.inFlight[id] = struct{}{}
	return true
}

func (b *EventBus) release(e event.Event) {
	b.flightMu.Lock()
	defer b.flightMu.Unlock()
	delete(b.inFlight, e.ID)
}

// Replay publishes every event left unacknowledged by a previous run.
func (b *EventBus) Replay(ctx context.Context) (int, error) {
	pending, err := b.outbox.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for i, e := range pending {
		if err = b.Publish(ctx, e); err != nil {
			return i, err
		}
	}
	if len(pending) > 0 {
		b.log.Info("outbox replayed", "events", len(pending))
	}
	return len(pending), nil
}

// Workers returns one delivery worker per shard, to be run by a supervisor.
func (b *EventBus) Workers() []contract.Worker {
	b.mu.RLock()
	sinks := append([]contract.EventSink(nil), b.sinks...)
	b.mu.RUnlock()

	res := make([]contract.Worker, 0, len(b.shards))
	for i, ch := range b.shards {
		res = append(res, workers.NewEventFanout(b.log, i, ch, sinks, b.outbox, b.sinkTimeout, b.metrics).
			WithOnDone(b.release))
	}
	return res
}

// Channels exposes the shard queues for sampling.
func (b *EventBus) Channels() []workers.NamedChannel {
	res := make([]workers.NamedChannel, 0, len(b.shards))
	for i, ch := range b.shards {
		res = append(res, workers.NamedChannel{Name: fmt.Sprintf("shard-%d", i), Channel: ch})
	}
	return res
}

func (b *EventBus) shardFor(aggregateID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(aggregateID))
	return int(h.Sum32() % uint32(len(b.shards)))
}
