package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/repositories"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/sink"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// flakySink fails its first failures calls, then hands over to next.
type flakySink struct {
	mu       sync.Mutex
	failures int
	next     contract.EventSink
}

func (s *flakySink) Consume(ctx context.Context, e event.Event) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return errors.New("notification store unavailable")
	}
	s.mu.Unlock()
	return s.next.Consume(ctx, e)
}

type deliveryFixture struct {
	repo    *repositories.Repository
	bus     *runtime.EventBus
	service *MessageService
	log     *slog.Logger
}

func newDeliveryFixture(t *testing.T, shards, buffer int, wrap func(contract.EventSink) contract.EventSink) deliveryFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repositories.NewRepository(db, log)
	bus := runtime.NewEventBus(log, repo, shards, buffer, time.Second)
	bus.Subscribe(wrap(sink.NewNotificationDispatcher(log, repo, nil)))
	return deliveryFixture{
		repo:    repo,
		bus:     bus,
		service: NewMessageService(log, repo, bus).WithPublishTimeout(20 * time.Millisecond),
		log:     log,
	}
}

// start runs the shard workers and the outbox relay until the test ends.
func (f deliveryFixture) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	sup := workers.NewSupervisor(f.log)
	sup.Add(f.bus.Workers()...)
	sup.Add(workers.NewOutboxRelay(f.log, f.repo, f.bus, 10*time.Millisecond, 0))
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func (f deliveryFixture) notified(user string, want int) func() bool {
	return func() bool {
		n, err := f.service.Notifications(context.Background(), user, false)
		return err == nil && len(n) == want
	}
}

func TestMessageService_CreateReturnsWhenQueueIsFull(t *testing.T) {
	req := require.New(t)
	f := newDeliveryFixture(t, 1, 1, func(s contract.EventSink) contract.EventSink { return s })
	conv, err := f.service.CreateConversation(context.Background(), domain.CreateConversationCommand{Participants: []string{"alice", "bob"}})
	req.NoError(err)

	// Given no worker draining the single one-slot shard
	m1, err := f.service.Create(context.Background(), domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "alice", Content: "one"})
	req.NoError(err)

	// When a second message is written with a context that never ends
	created := make(chan error, 1)
	go func() {
		_, err := f.service.Create(context.Background(), domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "alice", Content: "two"})
		created <- err
	}()

	// Then the write commits and returns once the publish timeout elapsed
	select {
	case err = <-created:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("create blocked on the full queue")
	}
	pending, err := f.repo.Pending(context.Background())
	req.NoError(err)
	req.Len(pending, 2)
	req.Equal(1, f.bus.InFlight())

	// And the relay delivers the left-over event once workers run
	f.start(t)
	req.Eventually(f.notified("bob", 2), time.Second, 5*time.Millisecond)
	req.Eventually(func() bool {
		pending, err := f.repo.Pending(context.Background())
		return err == nil && len(pending) == 0
	}, time.Second, 5*time.Millisecond)
	n, err := f.service.Notifications(context.Background(), "bob", false)
	req.NoError(err)
	req.Contains([]string{n[0].MessageID, n[1].MessageID}, m1.ID)
}

func TestMessageService_RelayRetriesFailedSink(t *testing.T) {
	req := require.New(t)
	flaky := &flakySink{failures: 2}
	f := newDeliveryFixture(t, 2, 8, func(s contract.EventSink) contract.EventSink {
		flaky.next = s
		return flaky
	})
	f.start(t)
	conv, err := f.service.CreateConversation(context.Background(), domain.CreateConversationCommand{Participants: []string{"alice", "bob"}})
	req.NoError(err)

	// When the notification sink fails the first deliveries
	m, err := f.service.Create(context.Background(), domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "alice", Content: "hello"})
	req.NoError(err)

	// Then the relay keeps handing the event back until bob is notified once
	req.Eventually(f.notified("bob", 1), 2*time.Second, 5*time.Millisecond)
	n, err := f.service.Notifications(context.Background(), "bob", false)
	req.NoError(err)
	req.Equal(m.ID, n[0].MessageID)
	req.Eventually(func() bool {
		pending, err := f.repo.Pending(context.Background())
		return err == nil && len(pending) == 0
	}, time.Second, 5*time.Millisecond)
}
