// Package repositories persists the chat entities in BadgerDB.
//
// Key layout (all ids are colon free):
//
//	conv:{conversation}                       conversation
//	member:{user}:{conversation}              membership index
//	msg:{message}                             message
//	child:{parent}:{created_ts}:{message}     reply index, ordered by (created, id)
//	convmsg:{conversation}:{created_ts}:{id}  conversation timeline
//	sent:{user}:{message}                     sender index
//	recv:{user}:{message}                     receiver index, direct messages only
//	activity:{user}                           last message by or to user, conflict marker
//	edit:{message}:{logged_ts}:{record}       edit history, ordered by logged-at
//	notif:{message}:{recipient}               notification, unique per pair
//	inbox:{recipient}:{message}               recipient index
//	outbox:{created_ts}:{event}               undelivered events
//	profile:{user}                            profile
//
// Timestamps are UnixNano zero padded to 19 digits so that lexicographic
// order is chronological order.
package repositories

import (
	cerrors "chat-core/errors"
	"chat-core/observability"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const defaultMaxRetries = 5

type Repository struct {
	db         *badger.DB
	log        *slog.Logger
	metrics    *observability.Metrics
	maxRetries int
}

func NewRepository(db *badger.DB, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log, maxRetries: defaultMaxRetries}
}

func (r *Repository) WithMetrics(m *observability.Metrics) *Repository {
	r.metrics = m
	return r
}

// WithTx runs fn in a read-write transaction and commits it.
// Optimistic conflicts detected by Badger at commit time are retried with a
// fresh transaction; fn must therefore be safe to run more than once.
func (r *Repository) WithTx(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			r.log.Debug("transaction conflict, retrying", "attempt", attempt)
			r.metrics.TransactionRetried()
			continue
		}
		return err
	}
	return fmt.Errorf("%w: retries exhausted", cerrors.ErrConcurrentConflict)
}

// View runs fn against a consistent read-only snapshot.
func (r *Repository) View(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(fn)
}

func tsKey(t time.Time) string {
	return fmt.Sprintf("%019d", t.UnixNano())
}

func parseTsKey(s string) (time.Time, error) {
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos).UTC(), nil
}

// notFound translates a missing key into the domain error.
func notFound(err error, what, id string) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s %s", cerrors.ErrNotFound, what, id)
	}
	return err
}

// scanKeys collects every key under prefix, in key order.
// The iterator is closed before returning, so callers may write afterwards:
// a read-write transaction only supports one live iterator.
func scanKeys(txn *badger.Txn, prefix string) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys []string
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		keys = append(keys, string(it.Item().KeyCopy(nil)))
	}
	return keys, nil
}

// scanValues calls fn with the value of every key under prefix.
func scanValues(txn *badger.Txn, prefix string, fn func(key string, val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}

func deleteKeys(txn *badger.Txn, keys []string) error {
	for _, k := range keys {
		if err := txn.Delete([]byte(k)); err != nil {
			return err
		}
	}
	return nil
}

func deletePrefix(txn *badger.Txn, prefix string) error {
	keys, err := scanKeys(txn, prefix)
	if err != nil {
		return err
	}
	return deleteKeys(txn, keys)
}

// lastSegment returns what follows the last colon of a key.
func lastSegment(key string) string {
	return key[strings.LastIndex(key, ":")+1:]
}
