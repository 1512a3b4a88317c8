package workers

import (
	"chat-core/domain/event"
	"chat-core/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOutboxRelay_PublishesEventsOlderThanGrace(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given one stale and one fresh pending event
	stale := event.New(event.MessageEditedType, event.MessageEdited{MessageID: "m1"}, now.Add(-time.Minute))
	fresh := event.New(event.MessageEditedType, event.MessageEdited{MessageID: "m2"}, now.Add(-time.Millisecond))
	outbox.EXPECT().Pending(gomock.Any()).Return([]event.Event{stale, fresh}, nil)

	// Then only the stale one goes back to the bus
	publisher.EXPECT().Publish(gomock.Any(), stale).Return(nil)

	relay := NewOutboxRelay(logs.GetLoggerFromLevel(slog.LevelDebug), outbox, publisher, time.Second, time.Second).
		WithClock(func() time.Time { return now })
	req.Equal(1, relay.Relay(context.Background()))
}

func TestOutboxRelay_StopsWhenBusIsBusy(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := event.New(event.MessageEditedType, event.MessageEdited{MessageID: "m1"}, now.Add(-2*time.Minute))
	second := event.New(event.MessageEditedType, event.MessageEdited{MessageID: "m2"}, now.Add(-time.Minute))
	outbox.EXPECT().Pending(gomock.Any()).Return([]event.Event{first, second}, nil)

	// When the bus cannot take the first event
	publisher.EXPECT().Publish(gomock.Any(), first).Return(context.DeadlineExceeded)

	// Then the pass ends without trying the second one
	relay := NewOutboxRelay(slog.Default(), outbox, publisher, time.Second, 0).
		WithClock(func() time.Time { return now })
	req.Zero(relay.Relay(context.Background()))
}

func TestOutboxRelay_RunTicks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)

	ticked := make(chan struct{}, 1)
	outbox.EXPECT().Pending(gomock.Any()).DoAndReturn(func(context.Context) ([]event.Event, error) {
		select {
		case ticked <- struct{}{}:
		default:
		}
		return nil, nil
	}).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewOutboxRelay(slog.Default(), outbox, publisher, 5*time.Millisecond, 0).Run(ctx) }()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		req.Fail("relay never read the outbox")
	}
	cancel()
	req.NoError(<-done)
}
