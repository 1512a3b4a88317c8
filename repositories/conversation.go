package repositories

import (
	"chat-core/domain"
	pb "chat-core/proto/storage"
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

func conversationKey(id string) string { return "conv:" + id }

func memberKey(userID, conversationID string) string {
	return fmt.Sprintf("member:%s:%s", userID, conversationID)
}

func (r *Repository) InsertConversation(txn *badger.Txn, c domain.Conversation) error {
	if err := setProto(txn, conversationKey(c.ID), toPbConversation(c)); err != nil {
		return err
	}
	for _, p := range c.Participants {
		if err := txn.Set([]byte(memberKey(p, c.ID)), nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetConversation(txn *badger.Txn, id string) (domain.Conversation, error) {
	var p pb.Conversation
	if err := getProto(txn, conversationKey(id), &p); err != nil {
		return domain.Conversation{}, notFound(err, "conversation", id)
	}
	return fromPbConversation(&p), nil
}

// FindConversation reads a conversation outside any write transaction.
func (r *Repository) FindConversation(ctx context.Context, id string) (domain.Conversation, error) {
	var c domain.Conversation
	err := r.View(ctx, func(txn *badger.Txn) error {
		var err error
		c, err = r.GetConversation(txn, id)
		return err
	})
	return c, err
}

// RemoveParticipant drops userID from the conversation and its membership index.
func (r *Repository) RemoveParticipant(txn *badger.Txn, conversationID, userID string) error {
	c, err := r.GetConversation(txn, conversationID)
	if err != nil {
		return err
	}
	if err = setProto(txn, conversationKey(c.ID), toPbConversation(c.Without(userID))); err != nil {
		return err
	}
	return txn.Delete([]byte(memberKey(userID, conversationID)))
}

// ConversationsOf lists the conversation ids userID belongs to.
func (r *Repository) ConversationsOf(txn *badger.Txn, userID string) ([]string, error) {
	keys, err := scanKeys(txn, fmt.Sprintf("member:%s:", userID))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, lastSegment(k))
	}
	return ids, nil
}

// FindConversationsOf returns the conversations userID takes part in,
// oldest first, from a single read snapshot.
func (r *Repository) FindConversationsOf(ctx context.Context, userID string) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := r.View(ctx, func(txn *badger.Txn) error {
		ids, err := r.ConversationsOf(txn, userID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			c, err := r.GetConversation(txn, id)
			if err != nil {
				return err
			}
			conversations = append(conversations, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return conversations, nil
}
