package repositories

import (
	"chat-core/domain"
	pb "chat-core/proto/storage"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

func messageKey(id string) string { return "msg:" + id }

// childKey indexes a reply under its parent.
// Keys are formatted as "child:{parent}:{created_ts}:{id}" so a prefix scan
// yields replies ordered by creation time, ties broken by id.
func childKey(m domain.Message) string {
	return fmt.Sprintf("child:%s:%s:%s", *m.ParentID, tsKey(m.CreatedAt), m.ID)
}

func conversationMessageKey(m domain.Message) string {
	return fmt.Sprintf("convmsg:%s:%s:%s", m.ConversationID, tsKey(m.CreatedAt), m.ID)
}

func sentKey(userID, messageID string) string {
	return fmt.Sprintf("sent:%s:%s", userID, messageID)
}

func receivedKey(userID, messageID string) string {
	return fmt.Sprintf("recv:%s:%s", userID, messageID)
}

// activityKey is set blindly by every message written by or to user.
// A transaction reading it conflicts with any such write committed after
// it started, which a prefix scan of sent: or recv: would miss.
func activityKey(userID string) string { return "activity:" + userID }

// InsertMessage stores a new message together with its indexes.
func (r *Repository) InsertMessage(txn *badger.Txn, m domain.Message) error {
	if err := setProto(txn, messageKey(m.ID), toPbMessage(m)); err != nil {
		return err
	}
	if err := txn.Set([]byte(conversationMessageKey(m)), []byte(m.ID)); err != nil {
		return err
	}
	if err := txn.Set([]byte(sentKey(m.SenderID, m.ID)), nil); err != nil {
		return err
	}
	if err := txn.Set([]byte(activityKey(m.SenderID)), []byte(m.ID)); err != nil {
		return err
	}
	if m.ReceiverID != "" {
		if err := txn.Set([]byte(receivedKey(m.ReceiverID, m.ID)), nil); err != nil {
			return err
		}
		if err := txn.Set([]byte(activityKey(m.ReceiverID)), []byte(m.ID)); err != nil {
			return err
		}
	}
	if m.ParentID != nil {
		return txn.Set([]byte(childKey(m)), []byte(m.ID))
	}
	return nil
}

func (r *Repository) GetMessage(txn *badger.Txn, id string) (domain.Message, error) {
	var p pb.Message
	if err := getProto(txn, messageKey(id), &p); err != nil {
		return domain.Message{}, notFound(err, "message", id)
	}
	return fromPbMessage(&p), nil
}

// FindMessage reads a message outside any write transaction.
func (r *Repository) FindMessage(ctx context.Context, id string) (domain.Message, error) {
	var m domain.Message
	err := r.View(ctx, func(txn *badger.Txn) error {
		var err error
		m, err = r.GetMessage(txn, id)
		return err
	})
	return m, err
}

// UpdateMessage rewrites the mutable fields of a message.
// Indexed fields (conversation, sender, receiver, parent, creation time) never change here.
func (r *Repository) UpdateMessage(txn *badger.Txn, m domain.Message) error {
	return setProto(txn, messageKey(m.ID), toPbMessage(m))
}

// DetachMessage turns a reply into a thread root.
func (r *Repository) DetachMessage(txn *badger.Txn, m domain.Message) (domain.Message, error) {
	if m.ParentID == nil {
		return m, nil
	}
	if err := txn.Delete([]byte(childKey(m))); err != nil {
		return m, err
	}
	m.ParentID = nil
	return m, setProto(txn, messageKey(m.ID), toPbMessage(m))
}

// DeleteMessage removes a message, its indexes, its edit history and its
// notifications. Replies are left untouched: the caller applies the orphan policy.
func (r *Repository) DeleteMessage(txn *badger.Txn, m domain.Message) error {
	keys := []string{messageKey(m.ID), conversationMessageKey(m), sentKey(m.SenderID, m.ID)}
	if m.ReceiverID != "" {
		keys = append(keys, receivedKey(m.ReceiverID, m.ID))
	}
	if m.ParentID != nil {
		keys = append(keys, childKey(m))
	}
	if err := deleteKeys(txn, keys); err != nil {
		return err
	}
	if err := r.DeleteEditRecords(txn, m.ID); err != nil {
		return err
	}
	return r.DeleteNotificationsForMessage(txn, m.ID)
}

// ChildIDs lists the direct replies of parentID ordered by (created, id).
func (r *Repository) ChildIDs(txn *badger.Txn, parentID string) ([]string, error) {
	keys, err := scanKeys(txn, fmt.Sprintf("child:%s:", parentID))
	if err != nil {
		return nil, err
	}
	return lo.Map(keys, func(k string, _ int) string { return lastSegment(k) }), nil
}

// ChildrenOf returns every direct reply of the given parents in a single
// read snapshot. Replies of one parent are ordered by (created, id); parents
// keep the order they were given in.
func (r *Repository) ChildrenOf(ctx context.Context, parentIDs []string) ([]domain.Message, error) {
	var children []domain.Message
	err := r.View(ctx, func(txn *badger.Txn) error {
		for _, parentID := range parentIDs {
			ids, err := r.ChildIDs(txn, parentID)
			if err != nil {
				return err
			}
			for _, id := range ids {
				m, err := r.GetMessage(txn, id)
				if err != nil {
					return err
				}
				children = append(children, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// SentBy lists the ids of every message userID has sent.
func (r *Repository) SentBy(txn *badger.Txn, userID string) ([]string, error) {
	keys, err := scanKeys(txn, fmt.Sprintf("sent:%s:", userID))
	if err != nil {
		return nil, err
	}
	return lo.Map(keys, func(k string, _ int) string { return lastSegment(k) }), nil
}

// ReceivedBy lists the ids of every direct message addressed to userID.
func (r *Repository) ReceivedBy(txn *badger.Txn, userID string) ([]string, error) {
	keys, err := scanKeys(txn, fmt.Sprintf("recv:%s:", userID))
	if err != nil {
		return nil, err
	}
	return lo.Map(keys, func(k string, _ int) string { return lastSegment(k) }), nil
}

// ClearActivity drops the activity key of userID after reading it, so txn
// aborts on commit if a message by or to userID was written meanwhile.
func (r *Repository) ClearActivity(txn *badger.Txn, userID string) error {
	_, err := txn.Get([]byte(activityKey(userID)))
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return txn.Delete([]byte(activityKey(userID)))
}

// ListMessages returns the messages of a conversation matching filter,
// oldest first.
func (r *Repository) ListMessages(ctx context.Context, conversationID string, filter domain.MessageFilter) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.View(ctx, func(txn *badger.Txn) error {
		var ids []string
		err := scanValues(txn, fmt.Sprintf("convmsg:%s:", conversationID), func(_ string, val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
		if err != nil {
			return err
		}
		for _, id := range ids {
			m, err := r.GetMessage(txn, id)
			if err != nil {
				return err
			}
			if filter.Match(m) {
				messages = append(messages, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].Before(messages[j]) })
	return messages, nil
}
