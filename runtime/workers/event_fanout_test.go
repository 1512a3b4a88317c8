package workers

import (
	"chat-core/contract"
	"chat-core/domain/event"
	"chat-core/mocks"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func editedEvent(id string) event.Event {
	return event.New(event.MessageEditedType, event.MessageEdited{MessageID: id}, time.Now().UTC())
}

func TestEventFanout_AcksWhenEverySinkSucceeds(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink1 := mocks.NewMockEventSink(ctrl)
	sink2 := mocks.NewMockEventSink(ctrl)
	outbox := mocks.NewMockOutbox(ctrl)
	evt := editedEvent("m1")

	// Given two sinks consuming the event
	sink1.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	sink2.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	// Then the event is acknowledged once
	outbox.EXPECT().Ack(gomock.Any(), evt).Return(nil).Times(1)

	w := NewEventFanout(logs.GetLoggerFromLevel(slog.LevelDebug), 0, nil,
		[]contract.EventSink{sink1, sink2}, outbox, time.Second, nil)

	req.True(w.Fanout(context.Background(), evt))
}

func TestEventFanout_SinkFailureKeepsEventPending(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)
	outbox := mocks.NewMockOutbox(ctrl)
	evt := editedEvent("m1")

	// Given a failing sink followed by a healthy one
	failing.EXPECT().Consume(gomock.Any(), evt).Return(errors.New("disk full"))
	healthy.EXPECT().Consume(gomock.Any(), evt).Return(nil)
	// Then the healthy sink still runs but nothing is acknowledged
	outbox.EXPECT().Ack(gomock.Any(), gomock.Any()).Times(0)

	w := NewEventFanout(slog.Default(), 0, nil,
		[]contract.EventSink{failing, healthy}, outbox, time.Second, nil)

	req.False(w.Fanout(context.Background(), evt))
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	slow := mocks.NewMockEventSink(ctrl)
	outbox := mocks.NewMockOutbox(ctrl)
	evt := editedEvent("m1")

	// Given a sink waiting for its context
	slow.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(
		func(ctx context.Context, _ event.Event) error {
			<-ctx.Done()
			return ctx.Err()
		})
	outbox.EXPECT().Ack(gomock.Any(), gomock.Any()).Times(0)

	w := NewEventFanout(slog.Default(), 0, nil,
		[]contract.EventSink{slow}, outbox, 20*time.Millisecond, nil)

	// When delivering, then the sink is cut off by the timeout
	start := time.Now()
	req.False(w.Fanout(context.Background(), evt))
	req.Less(time.Since(start), time.Second)
}

func TestEventFanout_RunDeliversInOrder(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)
	outbox := mocks.NewMockOutbox(ctrl)
	in := make(chan event.Event, 3)
	events := []event.Event{editedEvent("m1"), editedEvent("m1"), editedEvent("m1")}

	var seen []event.Event
	done := make(chan struct{})
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e event.Event) error {
			seen = append(seen, e)
			if len(seen) == len(events) {
				close(done)
			}
			return nil
		}).Times(3)
	outbox.EXPECT().Ack(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewEventFanout(slog.Default(), 0, in, []contract.EventSink{sink}, outbox, time.Second, nil)
	go func() { _ = w.Run(ctx) }()

	for _, e := range events {
		in <- e
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("events were not delivered in time")
	}
	req.Equal(events, seen)
}

func TestLimiterJanitor_Sweeps(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sweeper := mocks.NewMockSweeper(ctrl)

	swept := make(chan struct{}, 1)
	sweeper.EXPECT().Sweep(gomock.Any()).DoAndReturn(func(time.Time) int {
		select {
		case swept <- struct{}{}:
		default:
		}
		return 1
	}).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- NewLimiterJanitor(slog.Default(), sweeper, 5*time.Millisecond).Run(ctx) }()

	select {
	case <-swept:
	case <-time.After(time.Second):
		req.Fail("janitor never swept")
	}
	cancel()
	req.NoError(<-done)
}
