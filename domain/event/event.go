package event

import (
	"chat-core/domain"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	MessageCreatedType Type = "MESSAGE_CREATED"
	MessageEditedType  Type = "MESSAGE_EDITED"
	MessageDeletedType Type = "MESSAGE_DELETED"
)

// DomainEvent is the payload of an Event.
// AggregateID is the message the event is about; events sharing it are
// delivered in emission order.
type DomainEvent interface {
	AggregateID() string
}

// Event is the envelope travelling through the bus and the outbox.
type Event struct {
	ID        uuid.UUID
	Type      Type
	CreatedAt time.Time
	Payload   DomainEvent
}

func New(t Type, payload DomainEvent, now time.Time) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		CreatedAt: now,
		Payload:   payload,
	}
}

func (e Event) AggregateID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.AggregateID()
}

type MessageCreated struct {
	Message    domain.Message `json:"message"`
	Recipients []string       `json:"recipients"`
}

func (m MessageCreated) AggregateID() string { return m.Message.ID }

// MessageEdited carries the content snapshot taken inside the edit transaction.
type MessageEdited struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	Previous       string    `json:"previous"`
	New            string    `json:"new"`
	EditorID       string    `json:"editor_id"`
	EditedAt       time.Time `json:"edited_at"`
}

func (m MessageEdited) AggregateID() string { return m.MessageID }

type MessageDeleted struct {
	MessageID      string   `json:"message_id"`
	ConversationID string   `json:"conversation_id"`
	RequesterID    string   `json:"requester_id"`
	DeletedIDs     []string `json:"deleted_ids"`
	DetachedIDs    []string `json:"detached_ids,omitempty"`
}

func (m MessageDeleted) AggregateID() string { return m.MessageID }
