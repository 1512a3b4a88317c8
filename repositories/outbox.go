package repositories

import (
	"chat-core/contract"
	"chat-core/domain/event"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Ensure *Repository can back the event bus outbox at compile time.
var _ contract.Outbox = (*Repository)(nil)

func outboxKey(e event.Event) string {
	return fmt.Sprintf("outbox:%s:%s", tsKey(e.CreatedAt), e.ID)
}

// Stage records e in the writer's transaction: it becomes visible to Pending
// only if that transaction commits.
func (r *Repository) Stage(txn *badger.Txn, e event.Event) error {
	bytes, err := marshalEvent(e)
	if err != nil {
		return err
	}
	return txn.Set([]byte(outboxKey(e)), bytes)
}

func (r *Repository) Ack(ctx context.Context, e event.Event) error {
	return r.WithTx(ctx, func(txn *badger.Txn) error {
		return txn.Delete([]byte(outboxKey(e)))
	})
}

// Pending returns the staged events that were never acknowledged, oldest first.
func (r *Repository) Pending(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	err := r.View(ctx, func(txn *badger.Txn) error {
		return scanValues(txn, "outbox:", func(key string, val []byte) error {
			e, err := unmarshalEvent(val)
			if err != nil {
				r.log.Warn("skipping unreadable outbox entry", "key", key, "error", err)
				return nil
			}
			events = append(events, e)
			return nil
		})
	})
	return events, err
}
