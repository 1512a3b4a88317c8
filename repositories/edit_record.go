package repositories

import (
	"chat-core/domain"
	pb "chat-core/proto/storage"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
)

func editRecordKey(rec domain.EditRecord) string {
	return fmt.Sprintf("edit:%s:%s:%s", rec.MessageID, tsKey(rec.LoggedAt), rec.ID)
}

// InsertEditRecord appends rec to the history of its message.
// LoggedAt is bumped past the latest existing record when the clock did not
// move forward, keeping the history strictly increasing per message.
// The stored record is returned.
func (r *Repository) InsertEditRecord(txn *badger.Txn, rec domain.EditRecord) (domain.EditRecord, error) {
	last, found, err := r.lastEditTime(txn, rec.MessageID)
	if err != nil {
		return domain.EditRecord{}, err
	}
	if found && !rec.LoggedAt.After(last) {
		rec.LoggedAt = last.Add(time.Nanosecond)
	}
	if err = setProto(txn, editRecordKey(rec), toPbEditRecord(rec)); err != nil {
		return domain.EditRecord{}, err
	}
	return rec, nil
}

// lastEditTime seeks backwards from the end of the message's history.
func (r *Repository) lastEditTime(txn *badger.Txn, messageID string) (time.Time, bool, error) {
	prefix := fmt.Sprintf("edit:%s:", messageID)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = true
	it := txn.NewIterator(opts)
	defer it.Close()

	// '~' sorts after every digit, so the seek lands on the newest record
	it.Seek([]byte(prefix + "~"))
	if !it.ValidForPrefix([]byte(prefix)) {
		return time.Time{}, false, nil
	}
	rest := strings.TrimPrefix(string(it.Item().Key()), prefix)
	ts, _, _ := strings.Cut(rest, ":")
	t, err := parseTsKey(ts)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// EditRecords returns the history of a message ordered by logged-at ascending.
func (r *Repository) EditRecords(txn *badger.Txn, messageID string) ([]domain.EditRecord, error) {
	var records []domain.EditRecord
	err := scanValues(txn, fmt.Sprintf("edit:%s:", messageID), func(_ string, val []byte) error {
		var p pb.EditRecord
		if err := proto.Unmarshal(val, &p); err != nil {
			return err
		}
		records = append(records, fromPbEditRecord(&p))
		return nil
	})
	return records, err
}

func (r *Repository) FindEditRecords(ctx context.Context, messageID string) ([]domain.EditRecord, error) {
	var records []domain.EditRecord
	err := r.View(ctx, func(txn *badger.Txn) error {
		var err error
		records, err = r.EditRecords(txn, messageID)
		return err
	})
	return records, err
}

func (r *Repository) DeleteEditRecords(txn *badger.Txn, messageID string) error {
	return deletePrefix(txn, fmt.Sprintf("edit:%s:", messageID))
}
