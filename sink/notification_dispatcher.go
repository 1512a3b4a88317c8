package sink

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	cerrors "chat-core/errors"
	"chat-core/observability"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var _ contract.EventSink = (*NotificationDispatcher)(nil)

// NotificationDispatcher fans a created message out to its recipients.
// Consuming the same event twice is harmless: the store keeps a single
// notification per (message, recipient).
type NotificationDispatcher struct {
	log     *slog.Logger
	store   contract.NotificationWriter
	metrics *observability.Metrics
	now     func() time.Time
}

func NewNotificationDispatcher(log *slog.Logger, store contract.NotificationWriter, metrics *observability.Metrics) *NotificationDispatcher {
	return &NotificationDispatcher{log: log, store: store, metrics: metrics, now: time.Now}
}

func (d *NotificationDispatcher) WithClock(now func() time.Time) *NotificationDispatcher {
	d.now = now
	return d
}

func (d *NotificationDispatcher) Consume(ctx context.Context, e event.Event) error {
	created, ok := e.Payload.(event.MessageCreated)
	if !ok {
		return nil
	}
	if len(created.Recipients) == 0 {
		return nil
	}

	var count int
	err := d.store.WithTx(ctx, func(txn *badger.Txn) error {
		count = 0
		// The message may have been deleted before its creation was delivered
		if _, err := d.store.GetMessage(txn, created.Message.ID); err != nil {
			if errors.Is(err, cerrors.ErrNotFound) {
				return nil
			}
			return err
		}
		now := d.now().UTC()
		for _, recipient := range created.Recipients {
			inserted, err := d.store.InsertNotification(txn, domain.Notification{
				ID:          uuid.NewString(),
				RecipientID: recipient,
				MessageID:   created.Message.ID,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			if inserted {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for range count {
		d.metrics.NotificationCreated()
	}
	d.log.Debug("notifications dispatched",
		"message", created.Message.ID, "created", count, "recipients", len(created.Recipients))
	return nil
}
