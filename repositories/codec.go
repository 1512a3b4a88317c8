package repositories

import (
	"chat-core/domain"
	"chat-core/domain/event"
	cerrors "chat-core/errors"
	pb "chat-core/proto/storage"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
)

func getProto(txn *badger.Txn, key string, m proto.Message) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return proto.Unmarshal(val, m)
	})
}

func setProto(txn *badger.Txn, key string, m proto.Message) error {
	bytes, err := proto.Marshal(m)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), bytes)
}

// Times are stored as UnixNano, 0 standing for the zero time.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func toPbMessage(m domain.Message) *pb.Message {
	res := &pb.Message{
		Id:             m.ID,
		ConversationId: m.ConversationID,
		SenderId:       m.SenderID,
		ReceiverId:     m.ReceiverID,
		Content:        m.Content,
		CreatedAt:      toNanos(m.CreatedAt),
		Edited:         m.Edited,
		EditedBy:       m.EditedBy,
	}
	if m.ParentID != nil {
		res.ParentId = *m.ParentID
	}
	if m.EditedAt != nil {
		res.EditedAt = toNanos(*m.EditedAt)
	}
	return res
}

func fromPbMessage(p *pb.Message) domain.Message {
	m := domain.Message{
		ID:             p.GetId(),
		ConversationID: p.GetConversationId(),
		SenderID:       p.GetSenderId(),
		ReceiverID:     p.GetReceiverId(),
		Content:        p.GetContent(),
		CreatedAt:      fromNanos(p.GetCreatedAt()),
		Edited:         p.GetEdited(),
		EditedBy:       p.GetEditedBy(),
	}
	if p.GetParentId() != "" {
		parentID := p.GetParentId()
		m.ParentID = &parentID
	}
	if p.GetEditedAt() != 0 {
		editedAt := fromNanos(p.GetEditedAt())
		m.EditedAt = &editedAt
	}
	return m
}

func toPbConversation(c domain.Conversation) *pb.Conversation {
	return &pb.Conversation{
		Id:           c.ID,
		Participants: c.Participants,
		CreatedAt:    toNanos(c.CreatedAt),
	}
}

func fromPbConversation(p *pb.Conversation) domain.Conversation {
	return domain.Conversation{
		ID:           p.GetId(),
		Participants: p.GetParticipants(),
		CreatedAt:    fromNanos(p.GetCreatedAt()),
	}
}

func toPbEditRecord(rec domain.EditRecord) *pb.EditRecord {
	return &pb.EditRecord{
		Id:              rec.ID,
		MessageId:       rec.MessageID,
		PreviousContent: rec.PreviousContent,
		NewContent:      rec.NewContent,
		EditorId:        rec.EditorID,
		LoggedAt:        toNanos(rec.LoggedAt),
	}
}

func fromPbEditRecord(p *pb.EditRecord) domain.EditRecord {
	return domain.EditRecord{
		ID:              p.GetId(),
		MessageID:       p.GetMessageId(),
		PreviousContent: p.GetPreviousContent(),
		NewContent:      p.GetNewContent(),
		EditorID:        p.GetEditorId(),
		LoggedAt:        fromNanos(p.GetLoggedAt()),
	}
}

func toPbNotification(n domain.Notification) *pb.Notification {
	return &pb.Notification{
		Id:          n.ID,
		RecipientId: n.RecipientID,
		MessageId:   n.MessageID,
		Read:        n.Read,
		CreatedAt:   toNanos(n.CreatedAt),
	}
}

func fromPbNotification(p *pb.Notification) domain.Notification {
	return domain.Notification{
		ID:          p.GetId(),
		RecipientID: p.GetRecipientId(),
		MessageID:   p.GetMessageId(),
		Read:        p.GetRead(),
		CreatedAt:   fromNanos(p.GetCreatedAt()),
	}
}

func toPbProfile(p domain.Profile) *pb.Profile {
	return &pb.Profile{UserId: p.UserID, DisplayName: p.DisplayName}
}

func fromPbProfile(p *pb.Profile) domain.Profile {
	return domain.Profile{UserID: p.GetUserId(), DisplayName: p.GetDisplayName()}
}

// marshalEvent encodes an event for the outbox: the payload is marshalled
// on its own and wrapped in an OutboxEvent carrying the type.
func marshalEvent(e event.Event) ([]byte, error) {
	var payload proto.Message
	switch p := e.Payload.(type) {
	case event.MessageCreated:
		payload = &pb.MessageCreatedEvent{
			Message:    toPbMessage(p.Message),
			Recipients: p.Recipients,
		}
	case event.MessageEdited:
		payload = &pb.MessageEditedEvent{
			MessageId:      p.MessageID,
			ConversationId: p.ConversationID,
			Previous:       p.Previous,
			New:            p.New,
			EditorId:       p.EditorID,
			EditedAt:       toNanos(p.EditedAt),
		}
	case event.MessageDeleted:
		payload = &pb.MessageDeletedEvent{
			MessageId:      p.MessageID,
			ConversationId: p.ConversationID,
			RequesterId:    p.RequesterID,
			DeletedIds:     p.DeletedIDs,
			DetachedIds:    p.DetachedIDs,
		}
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", cerrors.ErrInvalidPayload, e.Payload)
	}
	bytes, err := proto.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}
	return proto.Marshal(&pb.OutboxEvent{
		Id:        e.ID.String(),
		Type:      string(e.Type),
		CreatedAt: toNanos(e.CreatedAt),
		Payload:   bytes,
	})
}

// unmarshalEvent decodes an outbox entry back into a typed event.
func unmarshalEvent(data []byte) (event.Event, error) {
	var env pb.OutboxEvent
	if err := proto.Unmarshal(data, &env); err != nil {
		return event.Event{}, err
	}
	id, err := uuid.Parse(env.GetId())
	if err != nil {
		return event.Event{}, fmt.Errorf("%w: event id: %v", cerrors.ErrInvalidPayload, err)
	}

	var payload event.DomainEvent
	switch event.Type(env.GetType()) {
	case event.MessageCreatedType:
		var p pb.MessageCreatedEvent
		if err = proto.Unmarshal(env.GetPayload(), &p); err != nil {
			return event.Event{}, err
		}
		payload = event.MessageCreated{
			Message:    fromPbMessage(p.GetMessage()),
			Recipients: p.GetRecipients(),
		}
	case event.MessageEditedType:
		var p pb.MessageEditedEvent
		if err = proto.Unmarshal(env.GetPayload(), &p); err != nil {
			return event.Event{}, err
		}
		payload = event.MessageEdited{
			MessageID:      p.GetMessageId(),
			ConversationID: p.GetConversationId(),
			Previous:       p.GetPrevious(),
			New:            p.GetNew(),
			EditorID:       p.GetEditorId(),
			EditedAt:       fromNanos(p.GetEditedAt()),
		}
	case event.MessageDeletedType:
		var p pb.MessageDeletedEvent
		if err = proto.Unmarshal(env.GetPayload(), &p); err != nil {
			return event.Event{}, err
		}
		payload = event.MessageDeleted{
			MessageID:      p.GetMessageId(),
			ConversationID: p.GetConversationId(),
			RequesterID:    p.GetRequesterId(),
			DeletedIDs:     p.GetDeletedIds(),
			DetachedIDs:    p.GetDetachedIds(),
		}
	default:
		return event.Event{}, fmt.Errorf("%w: unknown type %q", cerrors.ErrInvalidPayload, env.GetType())
	}

	return event.Event{
		ID:        id,
		Type:      event.Type(env.GetType()),
		CreatedAt: fromNanos(env.GetCreatedAt()),
		Payload:   payload,
	}, nil
}
