package domain

import (
	"time"
)

type CreateConversationCommand struct {
	Participants []string `validate:"required,min=2,dive,required,excludes=:"`
}

type CreateMessageCommand struct {
	ConversationID string  `validate:"required,excludes=:"`
	SenderID       string  `validate:"required,excludes=:"`
	Content        string  `validate:"required"`
	ParentID       *string `validate:"omitempty,min=1,excludes=:"`
}

type EditMessageCommand struct {
	MessageID string `validate:"required,excludes=:"`
	EditorID  string `validate:"required,excludes=:"`
	Content   string `validate:"required"`
}

type DeleteMessageCommand struct {
	MessageID   string `validate:"required,excludes=:"`
	RequesterID string `validate:"required,excludes=:"`
}

// MessageFilter narrows a conversation listing. Zero values are ignored.
type MessageFilter struct {
	After       time.Time
	Before      time.Time
	SenderID    string
	RecipientID string
	// UserID keeps messages sent by or addressed to the user.
	UserID string
}

func (f MessageFilter) Match(m Message) bool {
	if !f.After.IsZero() && m.CreatedAt.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && m.CreatedAt.After(f.Before) {
		return false
	}
	if f.SenderID != "" && m.SenderID != f.SenderID {
		return false
	}
	if f.RecipientID != "" && m.ReceiverID != f.RecipientID {
		return false
	}
	if f.UserID != "" && m.SenderID != f.UserID && m.ReceiverID != f.UserID {
		return false
	}
	return true
}
