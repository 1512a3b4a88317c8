package repositories

import (
	"chat-core/domain"
	pb "chat-core/proto/storage"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
)

func notificationKey(messageID, recipientID string) string {
	return fmt.Sprintf("notif:%s:%s", messageID, recipientID)
}

func inboxKey(recipientID, messageID string) string {
	return fmt.Sprintf("inbox:%s:%s", recipientID, messageID)
}

// InsertNotification stores n unless the (message, recipient) pair already
// has one. It reports whether a new notification was written.
func (r *Repository) InsertNotification(txn *badger.Txn, n domain.Notification) (bool, error) {
	key := notificationKey(n.MessageID, n.RecipientID)
	_, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, badger.ErrKeyNotFound):
		return false, err
	}
	if err = setProto(txn, key, toPbNotification(n)); err != nil {
		return false, err
	}
	return true, txn.Set([]byte(inboxKey(n.RecipientID, n.MessageID)), nil)
}

// Notifications lists the notifications of a recipient, oldest first.
func (r *Repository) Notifications(ctx context.Context, recipientID string, unreadOnly bool) ([]domain.Notification, error) {
	var res []domain.Notification
	err := r.View(ctx, func(txn *badger.Txn) error {
		keys, err := scanKeys(txn, fmt.Sprintf("inbox:%s:", recipientID))
		if err != nil {
			return err
		}
		for _, k := range keys {
			var p pb.Notification
			if err = getProto(txn, notificationKey(lastSegment(k), recipientID), &p); err != nil {
				return err
			}
			n := fromPbNotification(&p)
			if unreadOnly && n.Read {
				continue
			}
			res = append(res, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (r *Repository) DeleteNotificationsForMessage(txn *badger.Txn, messageID string) error {
	var recipients []string
	err := scanValues(txn, fmt.Sprintf("notif:%s:", messageID), func(_ string, val []byte) error {
		var p pb.Notification
		if err := proto.Unmarshal(val, &p); err != nil {
			return err
		}
		recipients = append(recipients, p.GetRecipientId())
		return nil
	})
	if err != nil {
		return err
	}
	for _, recipientID := range recipients {
		if err = deleteKeys(txn, []string{
			notificationKey(messageID, recipientID),
			inboxKey(recipientID, messageID),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) DeleteNotificationsForRecipient(txn *badger.Txn, recipientID string) error {
	keys, err := scanKeys(txn, fmt.Sprintf("inbox:%s:", recipientID))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err = deleteKeys(txn, []string{k, notificationKey(lastSegment(k), recipientID)}); err != nil {
			return err
		}
	}
	return nil
}
