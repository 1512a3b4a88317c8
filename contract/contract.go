//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"reflect"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes committed events.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// TxSink consumes an event inside the transaction that produced it.
// Returning an error aborts that transaction.
type TxSink interface {
	ConsumeTx(ctx context.Context, txn *badger.Txn, e event.Event) error
}

// EventPublisher is the writer side of the event bus.
type EventPublisher interface {
	PublishTx(ctx context.Context, txn *badger.Txn, e event.Event) error
	Publish(ctx context.Context, e event.Event) error
}

// Outbox keeps committed events until every sink has seen them.
type Outbox interface {
	Stage(txn *badger.Txn, e event.Event) error
	Ack(ctx context.Context, e event.Event) error
	Pending(ctx context.Context) ([]event.Event, error)
}

type RateLimiter interface {
	TryAdmit(key string, now time.Time) bool
}

// Sweeper drops state that went idle before now.
type Sweeper interface {
	Sweep(now time.Time) int
}

// IdentityResolver turns a caller token into a stable principal.
type IdentityResolver interface {
	Resolve(token string) (domain.Principal, error)
}

// ThreadReader reads committed messages for thread assembly.
type ThreadReader interface {
	FindMessage(ctx context.Context, id string) (domain.Message, error)
	// ChildrenOf returns the direct replies of every parent in one round-trip.
	ChildrenOf(ctx context.Context, parentIDs []string) ([]domain.Message, error)
}

type ProfileDirectory interface {
	Profiles(ctx context.Context, userIDs []string) (map[string]domain.Profile, error)
}

// EditRecordWriter appends audit records inside the caller's transaction.
type EditRecordWriter interface {
	InsertEditRecord(txn *badger.Txn, rec domain.EditRecord) (domain.EditRecord, error)
}

// NotificationWriter stores notifications, at most one per (message, recipient).
type NotificationWriter interface {
	WithTx(ctx context.Context, fn func(txn *badger.Txn) error) error
	GetMessage(txn *badger.Txn, id string) (domain.Message, error)
	InsertNotification(txn *badger.Txn, n domain.Notification) (bool, error)
}
